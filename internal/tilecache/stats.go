package tilecache

import "sync/atomic"

// providerStats holds per-provider counters. All fields are updated with
// atomic operations so concurrent workers never tear a single counter,
// though a Snapshot taken while writers are active may observe the
// fields mid-update relative to each other (spec's "eventually
// consistent" guarantee, not a single atomic transaction).
type providerStats struct {
	requests atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// Stat is an immutable copy-out of a provider's counters.
type Stat struct {
	Requests int64
	Hits     int64
	Misses   int64
	Failures int64
}

func (s *providerStats) snapshot() Stat {
	return Stat{
		Requests: s.requests.Load(),
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Failures: s.failures.Load(),
	}
}
