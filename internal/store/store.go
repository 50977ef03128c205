package store

import (
	"sort"
	"strings"

	"github.com/apex/log"

	"cag/internal/domain"
	"cag/internal/embedding/tfidf"
)

// DefaultTopK is the number of documents Search returns when topK <= 0.
const DefaultTopK = 3

// ScoredDocument is a search hit with its cosine similarity.
type ScoredDocument struct {
	Document domain.Document
	Score    float64
}

// Store holds the document set and a TF-IDF row per document. It does no
// locking; callers serialise access.
type Store struct {
	documents  []domain.Document
	vectorizer *tfidf.Vectorizer
	vectors    []tfidf.Vector
}

// New returns a store loaded with docs.
func New(docs []domain.Document) *Store {
	s := &Store{}
	s.Load(docs)
	return s
}

// Load replaces the documents and rebuilds the TF-IDF matrix. An empty input
// leaves the store empty. A corpus with no indexable tokens keeps the
// documents but builds no vectors, so searches come back empty.
func (s *Store) Load(docs []domain.Document) {
	s.documents = append([]domain.Document(nil), docs...)
	s.vectorizer = nil
	s.vectors = nil
	if len(s.documents) == 0 {
		log.Debug("document store loaded empty")
		return
	}
	contents := make([]string, len(s.documents))
	for i, d := range s.documents {
		contents[i] = d.Content
	}
	vz := tfidf.NewVectorizer()
	rows, err := vz.FitTransform(contents)
	if err != nil {
		log.WithError(err).Warn("document vectors not built")
		return
	}
	s.vectorizer = vz
	s.vectors = rows
	log.WithFields(log.Fields{
		"documents": len(s.documents),
		"terms":     vz.Dimension(),
	}).Info("document store loaded")
}

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.documents) }

// Documents returns a copy of the documents in load order.
func (s *Store) Documents() []domain.Document {
	return append([]domain.Document(nil), s.documents...)
}

// GetByTopic returns the documents whose topic equals topic, ignoring case,
// in load order.
func (s *Store) GetByTopic(topic string) []domain.Document {
	var out []domain.Document
	for _, d := range s.documents {
		if strings.EqualFold(d.Topic, topic) {
			out = append(out, d)
		}
	}
	return out
}

// AllTopics returns the distinct topics in order of first appearance.
// Callers should treat the order as unspecified.
func (s *Store) AllTopics() []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, d := range s.documents {
		if _, ok := seen[d.Topic]; ok {
			continue
		}
		seen[d.Topic] = struct{}{}
		topics = append(topics, d.Topic)
	}
	return topics
}

// Search returns the topK documents most similar to query.
func (s *Store) Search(query string, topK int) []domain.Document {
	hits := s.SearchScored(query, topK)
	out := make([]domain.Document, len(hits))
	for i, h := range hits {
		out[i] = h.Document
	}
	return out
}

// SearchScored ranks every document by cosine similarity to query and returns
// the best min(topK, N). Equal scores are ordered by descending load index;
// that order is an implementation detail. A store whose documents hold no
// indexable tokens has no vectors, so it returns nothing even when N > 0.
func (s *Store) SearchScored(query string, topK int) []ScoredDocument {
	if len(s.vectors) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	q, err := s.vectorizer.Transform(query)
	if err != nil {
		return nil
	}
	scores := make([]float64, len(s.vectors))
	for i, row := range s.vectors {
		scores[i] = q.Dot(row)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]ScoredDocument, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, ScoredDocument{Document: s.documents[j], Score: scores[j]})
	}
	return results
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		if vals[idxs[a]] != vals[idxs[b]] {
			return vals[idxs[a]] > vals[idxs[b]]
		}
		return idxs[a] > idxs[b]
	})
	return idxs
}
