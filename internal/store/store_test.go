package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cag/internal/domain"
)

func ids(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestEmptyStoreDegrades(t *testing.T) {
	s := New(nil)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Search("python", 3))
	assert.Empty(t, s.GetByTopic("python"))
	assert.Empty(t, s.AllTopics())
}

func TestSearchResultCount(t *testing.T) {
	docs := SampleDocuments()
	tests := []struct {
		name string
		n    int
		topK int
		want int
	}{
		{name: "fewer docs than k", n: 2, topK: 3, want: 2},
		{name: "exact", n: 3, topK: 3, want: 3},
		{name: "more docs than k", n: 10, topK: 3, want: 3},
		{name: "large k", n: 10, topK: 50, want: 10},
		{name: "default k", n: 10, topK: 0, want: DefaultTopK},
		{name: "single", n: 1, topK: 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(docs[:tt.n])
			for _, q := range []string{"python language", "", "dinosaurs", "data"} {
				assert.Len(t, s.Search(q, tt.topK), tt.want, "query %q", q)
			}
		})
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := New(SampleDocuments())

	hits := s.SearchScored("NoSQL databases like Redis", 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "8", hits[0].Document.ID)
	assert.Equal(t, "7", hits[1].Document.ID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchUnmatchedQueryTies(t *testing.T) {
	s := New(SampleDocuments())

	hits := s.SearchScored("Tell me about dinosaurs", 3)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Zero(t, h.Score)
	}
	// all-zero scores fall back to descending load order
	assert.Equal(t, []string{"10", "9", "8"}, ids(s.Search("Tell me about dinosaurs", 3)))
}

func TestGetByTopic(t *testing.T) {
	s := New(append(SampleDocuments(), domain.Document{ID: "11", Topic: "Python", Content: "Guido"}))

	assert.Equal(t, []string{"1", "2", "11"}, ids(s.GetByTopic("PYTHON")))
	assert.Equal(t, []string{"9", "10"}, ids(s.GetByTopic("Cache Augmented Generation")))
	assert.Empty(t, s.GetByTopic("python "))
	assert.Empty(t, s.GetByTopic("rust"))
}

func TestAllTopics(t *testing.T) {
	s := New(SampleDocuments())
	assert.ElementsMatch(t,
		[]string{"python", "javascript", "machine learning", "databases", "cache augmented generation"},
		s.AllTopics())
}

func TestLoadReplaces(t *testing.T) {
	s := New(SampleDocuments())
	s.Load([]domain.Document{{ID: "x", Topic: "rust", Content: "Rust has a borrow checker"}})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"rust"}, s.AllTopics())
	assert.Equal(t, []string{"x"}, ids(s.Search("borrow", 3)))

	s.Load(nil)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Search("borrow", 3))
}

func TestLoadWithoutTokens(t *testing.T) {
	s := New([]domain.Document{{ID: "0", Topic: "general"}, {ID: "1", Topic: "general", Content: "?"}})

	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.GetByTopic("general"), 2)
	assert.Empty(t, s.Search("anything", 3))
	assert.Empty(t, s.SearchScored("anything", 3))
}

func TestParseDocuments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []domain.Document
		wantErr error
	}{
		{
			name:  "full records",
			input: `[{"id":"a","topic":"python","content":"snake"}]`,
			want:  []domain.Document{{ID: "a", Topic: "python", Content: "snake"}},
		},
		{
			name:  "defaults",
			input: `[{"content":"first"},{"id":7,"topic":null},{}]`,
			want: []domain.Document{
				{ID: "0", Topic: "general", Content: "first"},
				{ID: "7", Topic: "general", Content: ""},
				{ID: "2", Topic: "general", Content: ""},
			},
		},
		{name: "empty array", input: `[]`, want: nil},
		{name: "object", input: `{"id":"a"}`, wantErr: ErrNotArray},
		{name: "garbage", input: `[{"id":`, wantErr: ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadDocuments(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureSampleFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "documents.json")

	wrote, err := EnsureSampleFile(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	docs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SampleDocuments(), docs)

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	wrote, err = EnsureSampleFile(path)
	require.NoError(t, err)
	assert.False(t, wrote)

	docs, err = LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
