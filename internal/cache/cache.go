package cache

import (
	"errors"
	"strings"
	"unicode"

	"github.com/apex/log"

	"cag/internal/domain"
)

// Separator joins the documents of one topic into a cached blob.
const Separator = "\n\n---\n\n"

// ErrEmptyTopic is returned by NewTopic for blank names.
var ErrEmptyTopic = errors.New("topic name is empty")

// Topic is a validated, case-folded topic identifier.
type Topic string

// NewTopic trims and lower-cases name.
func NewTopic(name string) (Topic, error) {
	t := strings.ToLower(strings.TrimSpace(name))
	if t == "" {
		return "", ErrEmptyTopic
	}
	return Topic(t), nil
}

// Source supplies topic documents for preloading.
type Source interface {
	AllTopics() []string
	GetByTopic(topic string) []domain.Document
}

type entry struct {
	name  string
	topic Topic
	blob  string
	words []string
	acro  string
}

// Table maps topics to their aggregated document text. It is built once by
// Preload and never mutated afterwards.
type Table struct {
	entries       []entry
	index         map[Topic]int
	matchAcronyms bool
}

// Option configures a Table.
type Option func(*Table)

// WithAcronyms makes Relevant also match a multi-word topic by its acronym
// appearing as a whole word in the query.
func WithAcronyms(enabled bool) Option {
	return func(t *Table) { t.matchAcronyms = enabled }
}

// Preload builds a table holding the joined content of each topic. With no
// topics given, every topic of src is loaded. Topics without documents, blank
// names and case-insensitive duplicates are skipped. The returned names are
// the cached topics in insertion order.
func Preload(src Source, topics []string, opts ...Option) (*Table, []string) {
	t := &Table{index: make(map[Topic]int)}
	for _, opt := range opts {
		opt(t)
	}
	if len(topics) == 0 {
		topics = src.AllTopics()
	}
	for _, name := range topics {
		key, err := NewTopic(name)
		if err != nil {
			log.WithError(err).Debug("skipping topic")
			continue
		}
		if _, dup := t.index[key]; dup {
			continue
		}
		docs := src.GetByTopic(name)
		if len(docs) == 0 {
			log.WithField("topic", name).Debug("no documents for topic")
			continue
		}
		contents := make([]string, len(docs))
		for i, d := range docs {
			contents[i] = d.Content
		}
		words := strings.Fields(string(key))
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, entry{
			name:  name,
			topic: key,
			blob:  strings.Join(contents, Separator),
			words: words,
			acro:  acronym(words),
		})
	}
	log.WithField("topics", len(t.entries)).Info("cache preloaded")
	return t, t.Topics()
}

// Len returns the number of cached topics.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Topics returns the display names of the cached topics in insertion order.
func (t *Table) Topics() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.name
	}
	return out
}

// Get returns the cached blob for topic, ignoring case.
func (t *Table) Get(topic string) (string, bool) {
	if t == nil {
		return "", false
	}
	key, err := NewTopic(topic)
	if err != nil {
		return "", false
	}
	i, ok := t.index[key]
	if !ok {
		return "", false
	}
	return t.entries[i].blob, true
}

// Relevant returns the cached topics the query refers to, in insertion
// order. A topic matches when any word of its name occurs as a substring of
// the lower-cased query.
func (t *Table) Relevant(query string) []string {
	if t == nil {
		return nil
	}
	q := strings.ToLower(query)
	var qwords map[string]struct{}
	if t.matchAcronyms {
		qwords = wordSet(q)
	}
	var out []string
	for _, e := range t.entries {
		if e.matches(q, qwords) {
			out = append(out, e.name)
		}
	}
	return out
}

func (e entry) matches(q string, qwords map[string]struct{}) bool {
	for _, w := range e.words {
		if strings.Contains(q, w) {
			return true
		}
	}
	if qwords != nil && e.acro != "" {
		_, ok := qwords[e.acro]
		return ok
	}
	return false
}

func acronym(words []string) string {
	if len(words) < 2 {
		return ""
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteRune(r[0])
	}
	return b.String()
}

func wordSet(q string) map[string]struct{} {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	m := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}
