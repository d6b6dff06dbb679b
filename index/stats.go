package index

import "sync/atomic"

// Statistics holds the visit counters of one index. Counters are updated
// atomically, so an index remains safe under concurrent queries.
//
// LastQueryVisitCount has a benign race when queries on the same index run
// concurrently: each query overwrites it with its own count. Callers that
// need an exact per-query figure must not interleave queries on a shared
// index.
type Statistics struct {
	lastQueryVisitCount atomic.Uint64
	totalVisitCount     atomic.Uint64
}

// RecordQuery publishes the node-visit count of one finished query.
func (s *Statistics) RecordQuery(visits uint64) {
	s.lastQueryVisitCount.Store(visits)
	s.totalVisitCount.Add(visits)
}

// Snapshot returns a read-only copy of the counters.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	return StatisticsSnapshot{
		LastQueryVisitCount: s.lastQueryVisitCount.Load(),
		TotalVisitCount:     s.totalVisitCount.Load(),
	}
}

// StatisticsSnapshot is a point-in-time view of an index's visit counters.
type StatisticsSnapshot struct {
	// LastQueryVisitCount is the number of nodes visited by the most
	// recently finished query.
	LastQueryVisitCount uint64

	// TotalVisitCount is the number of nodes visited by all queries since
	// the index was built.
	TotalVisitCount uint64
}
