package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cag/internal/domain"
	"cag/internal/store"
)

func TestNewTopic(t *testing.T) {
	tests := []struct {
		in      string
		want    Topic
		wantErr bool
	}{
		{in: "Python", want: "python"},
		{in: "  Machine Learning ", want: "machine learning"},
		{in: "", wantErr: true},
		{in: " \t", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NewTopic(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrEmptyTopic)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPreloadAllTopics(t *testing.T) {
	s := store.New(store.SampleDocuments())

	table, cached := Preload(s, nil)
	assert.ElementsMatch(t, s.AllTopics(), cached)
	assert.Equal(t, 5, table.Len())

	blob, ok := table.Get("PYTHON")
	require.True(t, ok)
	docs := s.GetByTopic("python")
	assert.Equal(t, docs[0].Content+Separator+docs[1].Content, blob)
}

func TestPreloadSelectedTopics(t *testing.T) {
	s := store.New(store.SampleDocuments())

	table, cached := Preload(s, []string{"Databases", "rust", "", "databases"})
	assert.Equal(t, []string{"Databases"}, cached)
	_, ok := table.Get("databases")
	assert.True(t, ok)
	_, ok = table.Get("rust")
	assert.False(t, ok)
}

func TestPreloadEmptySource(t *testing.T) {
	table, cached := Preload(store.New(nil), nil)
	assert.Empty(t, cached)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Relevant("python"))
}

func TestRelevant(t *testing.T) {
	s := store.New(store.SampleDocuments())
	literal, _ := Preload(s, s.AllTopics())
	acronyms, _ := Preload(s, s.AllTopics(), WithAcronyms(true))

	tests := []struct {
		name     string
		query    string
		literal  []string
		acronyms []string
	}{
		{
			name:     "single word",
			query:    "How do I install Python?",
			literal:  []string{"python"},
			acronyms: []string{"python"},
		},
		{
			name:     "one word of a multi-word topic",
			query:    "what is deep LEARNING",
			literal:  []string{"machine learning"},
			acronyms: []string{"machine learning"},
		},
		{
			name:     "substring inside a longer word",
			query:    "generational garbage collection",
			literal:  []string{"cache augmented generation"},
			acronyms: []string{"cache augmented generation"},
		},
		{
			name:     "several topics in insertion order",
			query:    "databases for python",
			literal:  []string{"python", "databases"},
			acronyms: []string{"python", "databases"},
		},
		{
			name:     "acronym",
			query:    "What is CAG?",
			literal:  nil,
			acronyms: []string{"cache augmented generation"},
		},
		{
			name:     "acronym must be a whole word",
			query:    "a cagey answer",
			literal:  nil,
			acronyms: nil,
		},
		{
			name:  "no match",
			query: "Tell me about dinosaurs",
		},
		{
			name:  "empty query",
			query: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.literal, literal.Relevant(tt.query))
			assert.Equal(t, tt.acronyms, acronyms.Relevant(tt.query))
		})
	}
}

func TestRelevantIncludesEveryTopicWord(t *testing.T) {
	docs := []domain.Document{
		{ID: "1", Topic: "Distributed Systems", Content: "consensus"},
		{ID: "2", Topic: "go", Content: "goroutines"},
	}
	table, _ := Preload(store.New(docs), nil)

	for _, name := range table.Topics() {
		for _, w := range strings.Fields(name) {
			q := "xx" + strings.ToUpper(w) + "yy"
			assert.Contains(t, table.Relevant(q), name, "query %q", q)
		}
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Topics())
	assert.Nil(t, table.Relevant("python"))
	_, ok := table.Get("python")
	assert.False(t, ok)
}
