package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"cag/internal/cache"
	"cag/internal/domain"
	"cag/internal/metrics"
	"cag/internal/store"
)

// topicSeparator joins the cached blobs of several matched topics.
const topicSeparator = "\n\n"

// Options tunes the query router.
type Options struct {
	// TopK is the number of documents retrieved on a cache miss.
	TopK int
	// MatchAcronyms lets a query hit a multi-word topic by its acronym.
	MatchAcronyms bool
}

// CAGService routes queries to the preloaded topic cache or to similarity
// search and owns the cache table and metrics for one session. It is not
// safe for concurrent use.
type CAGService struct {
	store     *store.Store
	generator domain.Generator
	metrics   *metrics.Collector
	table     *cache.Table
	opts      Options
	now       func() time.Time
}

// NewCAGService wires a router over st. The cache starts empty until Preload.
func NewCAGService(st *store.Store, gen domain.Generator, opts Options) *CAGService {
	if opts.TopK <= 0 {
		opts.TopK = store.DefaultTopK
	}
	return &CAGService{
		store:     st,
		generator: gen,
		metrics:   metrics.NewCollector(),
		opts:      opts,
		now:       time.Now,
	}
}

// Preload builds a fresh cache table for topics, or for every topic in the
// store when none are given, and returns the cached topic names.
func (s *CAGService) Preload(topics ...string) []string {
	table, cached := cache.Preload(s.store, topics, cache.WithAcronyms(s.opts.MatchAcronyms))
	s.table = table
	return cached
}

// CachedTopics returns the topics currently held in the cache.
func (s *CAGService) CachedTopics() []string { return s.table.Topics() }

// PredictRelevantTopics returns the cached topics mentioned by query.
func (s *CAGService) PredictRelevantTopics(query string) []string {
	return s.table.Relevant(query)
}

// Answer generates a response for query. With useCache set and at least one
// relevant cached topic, the cached topic text is the context; otherwise the
// top documents from similarity search are. Generation errors are returned
// unchanged in meaning and leave the metrics untouched.
func (s *CAGService) Answer(ctx context.Context, query string, useCache bool) (domain.QueryResult, error) {
	start := s.now()
	result := domain.QueryResult{Query: query, TopicsUsed: []string{}}

	var topics []string
	if useCache {
		topics = s.PredictRelevantTopics(query)
	}

	var knowledge string
	if len(topics) > 0 {
		blobs := make([]string, 0, len(topics))
		for _, t := range topics {
			blob, _ := s.table.Get(t)
			blobs = append(blobs, blob)
		}
		knowledge = strings.Join(blobs, topicSeparator)
		result.UsedCache = true
		result.TopicsUsed = topics
	} else {
		docs := s.store.Search(query, s.opts.TopK)
		contents := make([]string, len(docs))
		for i, d := range docs {
			contents[i] = d.Content
		}
		knowledge = strings.Join(contents, cache.Separator)
	}

	response, err := s.generator.Generate(ctx, domain.BuildPrompt(knowledge, query))
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("generate with %s: %w", s.generator.Name(), err)
	}

	result.Response = response
	result.ResponseTime = s.now().Sub(start)
	s.metrics.Record(result.UsedCache, result.ResponseTime)

	log.WithFields(log.Fields{
		"used_cache": result.UsedCache,
		"topics":     strings.Join(result.TopicsUsed, ","),
		"elapsed":    result.ResponseTime,
	}).Debug("answered query")
	return result, nil
}

// Metrics returns a snapshot of the session counters.
func (s *CAGService) Metrics() metrics.Snapshot { return s.metrics.Snapshot() }
