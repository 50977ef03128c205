package metrics

import "time"

// Snapshot is a read-only copy of the collector state. Times are in seconds.
type Snapshot struct {
	CacheHits                     int     `json:"cache_hits"`
	CacheMisses                   int     `json:"cache_misses"`
	QueriesWithCache              int     `json:"queries_with_cache"`
	QueriesWithoutCache           int     `json:"queries_without_cache"`
	TotalResponseTimeWithCache    float64 `json:"total_response_time_with_cache"`
	TotalResponseTimeWithoutCache float64 `json:"total_response_time_without_cache"`
	AvgResponseTimeWithCache      float64 `json:"avg_response_time_with_cache"`
	AvgResponseTimeWithoutCache   float64 `json:"avg_response_time_without_cache"`
}

type track struct {
	count int
	total time.Duration
}

func (t *track) add(d time.Duration) {
	t.count++
	t.total += d
}

func (t track) average() float64 {
	if t.count == 0 {
		return 0
	}
	return t.total.Seconds() / float64(t.count)
}

// Collector accumulates response times split by cache use for the lifetime
// of the process. It is not safe for concurrent use.
type Collector struct {
	hits, misses int
	withCache    track
	withoutCache track
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Record adds one answered query to the hit or miss track.
func (c *Collector) Record(usedCache bool, elapsed time.Duration) {
	if usedCache {
		c.hits++
		c.withCache.add(elapsed)
		return
	}
	c.misses++
	c.withoutCache.add(elapsed)
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		CacheHits:                     c.hits,
		CacheMisses:                   c.misses,
		QueriesWithCache:              c.withCache.count,
		QueriesWithoutCache:           c.withoutCache.count,
		TotalResponseTimeWithCache:    c.withCache.total.Seconds(),
		TotalResponseTimeWithoutCache: c.withoutCache.total.Seconds(),
		AvgResponseTimeWithCache:      c.withCache.average(),
		AvgResponseTimeWithoutCache:   c.withoutCache.average(),
	}
}

// HitRate returns hits over all recorded queries, or 0 before any query.
func (s Snapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
