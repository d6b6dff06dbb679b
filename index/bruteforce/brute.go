// Package bruteforce provides a linear-scan nearest-neighbor baseline.
//
// It answers every query exactly by scanning the full cloud. That makes it
// slow at scale but trivially correct, which is why the kd-tree tests use it
// as their oracle.
package bruteforce

import (
	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
)

// Compile-time check to ensure BruteForce satisfies the Index interface.
var _ index.Index = (*BruteForce)(nil)

// BruteForce is a linear-scan index over an immutable cloud.
type BruteForce struct {
	cloud *cloud.Cloud
	stats index.Statistics
}

// New creates a brute-force index over the given cloud.
func New(c *cloud.Cloud) *BruteForce {
	return &BruteForce{cloud: c}
}

// KNN scans every point and keeps the k nearest. Epsilon is accepted for
// interface parity but ignored: a full scan is always exact.
func (b *BruteForce) KNN(query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.SearchResult, error) {
	opts := index.NewSearchOptions(optFns...)
	if err := index.Validate(b.cloud.Dimension(), query, k, opts); err != nil {
		return nil, err
	}

	h := heap.NewBounded(k)
	n := b.cloud.Size()
	for i := 0; i < n; i++ {
		d := math32.SquaredL2(query, b.cloud.Point(i))
		if d < h.HeadValue() && (opts.AllowSelfMatch || d > 0) {
			h.ReplaceHead(i, d)
		}
	}
	b.stats.RecordQuery(uint64(n))

	return toResults(h.Results(opts.SortResults)), nil
}

// Dimension returns the dimensionality of the indexed cloud.
func (b *BruteForce) Dimension() int { return b.cloud.Dimension() }

// Size returns the number of indexed points.
func (b *BruteForce) Size() int { return b.cloud.Size() }

// Statistics returns the visit counters of this index.
func (b *BruteForce) Statistics() *index.Statistics { return &b.stats }

func toResults(entries []heap.Entry) []index.SearchResult {
	out := make([]index.SearchResult, len(entries))
	for i, e := range entries {
		out[i] = index.SearchResult{Index: e.Index, Distance: e.Distance}
	}
	return out
}
