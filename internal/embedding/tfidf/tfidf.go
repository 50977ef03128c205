package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrEmptyCorpus is returned by Fit when no texts are given.
	ErrEmptyCorpus = errors.New("empty corpus for TF-IDF fit")
	// ErrEmptyVocabulary is returned by Fit when the corpus has no indexable tokens.
	ErrEmptyVocabulary = errors.New("no tokens found in corpus")
	// ErrNotFitted is returned by Transform before a successful Fit.
	ErrNotFitted = errors.New("tfidf vectorizer not fitted")
)

// Vector is a sparse, L2-normalised TF-IDF row keyed by vocabulary index.
type Vector map[int]float64

// Dot returns the inner product of two sparse vectors. For rows produced by
// the same Vectorizer this is their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	sum := 0.0
	for idx, x := range v {
		sum += x * o[idx]
	}
	return sum
}

// Vectorizer builds a vocabulary from a corpus and maps texts into that term
// space. Term frequencies are raw counts, IDF is smoothed and rows are
// L2-normalised.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	fitted       bool
	tokenPattern *regexp.Regexp
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		vocabulary: make(map[string]int),
		// tokens of two or more word characters
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
	}
}

// Fit builds the vocabulary and IDF weights from the corpus, discarding any
// previous state.
func (e *Vectorizer) Fit(corpus []string) error {
	e.fitted = false
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}
	// Stable ordering for vocabulary indices
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.fitted = true
	return nil
}

// FitTransform fits the corpus and returns one row per text.
func (e *Vectorizer) FitTransform(corpus []string) ([]Vector, error) {
	if err := e.Fit(corpus); err != nil {
		return nil, err
	}
	rows := make([]Vector, len(corpus))
	for i, text := range corpus {
		rows[i] = e.transform(text)
	}
	return rows, nil
}

// Transform maps text into the fitted term space. Unknown terms are ignored,
// so text sharing nothing with the corpus yields an empty vector.
func (e *Vectorizer) Transform(text string) (Vector, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	return e.transform(text), nil
}

// Dimension returns the vocabulary size.
func (e *Vectorizer) Dimension() int { return len(e.idf) }

func (e *Vectorizer) transform(text string) Vector {
	vec := make(Vector)
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for idx, count := range vec {
		w := count * e.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (e *Vectorizer) tokenize(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}
