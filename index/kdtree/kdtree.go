package kdtree

import (
	"fmt"
	"sort"

	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
)

// Node sentinels shared by all layouts.
const (
	leafNode    int32 = -1 // marks a leaf in the split-dimension slot
	invalidNode int32 = -2 // marks an unused slot in implicit-tree arrays
)

// Variant selects the tree layout and traversal built by New.
type Variant int

const (
	// BalancedPointsInNodes stores one point per node in an implicit
	// complete binary tree and searches depth-first with incremental
	// bound pruning.
	BalancedPointsInNodes Variant = iota

	// BalancedPointsInNodesQueue uses the same layout as
	// BalancedPointsInNodes but searches best-first through a priority
	// queue of unexplored subtrees.
	BalancedPointsInNodesQueue

	// BalancedPointsInLeaves stores bucketed point indices in the leaves of
	// an implicit complete binary tree, splitting at the point-count median.
	BalancedPointsInLeaves

	// UnbalancedImplicitBounds splits at the sliding box midpoint and stores
	// no per-node bounds; the search reconstructs them from the root
	// bounding box while descending.
	UnbalancedImplicitBounds

	// UnbalancedExplicitBounds is UnbalancedImplicitBounds with each node's
	// split-dimension extent precomputed, trading memory for a simpler
	// descent.
	UnbalancedExplicitBounds
)

// String returns a string representation of the Variant.
func (v Variant) String() string {
	switch v {
	case BalancedPointsInNodes:
		return "BalancedPointsInNodes"
	case BalancedPointsInNodesQueue:
		return "BalancedPointsInNodesQueue"
	case BalancedPointsInLeaves:
		return "BalancedPointsInLeaves"
	case UnbalancedImplicitBounds:
		return "UnbalancedImplicitBounds"
	case UnbalancedExplicitBounds:
		return "UnbalancedExplicitBounds"
	default:
		return fmt.Sprintf("Unknown(%d)", int(v))
	}
}

// Options contains configuration options for building a kd-tree.
type Options struct {
	// Variant selects the tree layout and traversal.
	Variant Variant

	// BucketSize is the maximum number of points per leaf for the
	// BalancedPointsInLeaves variant. Other variants store one point per
	// node or leaf and ignore it.
	BucketSize int

	// BalanceVariance selects the split dimension by maximum coordinate
	// variance instead of maximum spread (BalancedPointsInLeaves only).
	BalanceVariance bool
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	Variant:    UnbalancedImplicitBounds,
	BucketSize: 8,
}

// New builds the selected kd-tree variant over the given cloud. The build
// runs single-threaded and completes before New returns; the resulting index
// is immutable and safe for unbounded concurrent queries.
func New(c *cloud.Cloud, optFns ...func(*Options)) (index.Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BucketSize < 1 {
		opts.BucketSize = 1
	}

	switch opts.Variant {
	case BalancedPointsInNodes:
		return newPtInNodesTree(c, false), nil
	case BalancedPointsInNodesQueue:
		return newPtInNodesTree(c, true), nil
	case BalancedPointsInLeaves:
		return newPtInLeavesTree(c, opts.BucketSize, opts.BalanceVariance), nil
	case UnbalancedImplicitBounds:
		return newSlidingTree(c), nil
	case UnbalancedExplicitBounds:
		return newBoundedTree(c), nil
	default:
		return nil, fmt.Errorf("unknown kd-tree variant: %d", int(opts.Variant))
	}
}

// permutation returns the identity permutation of [0, n).
func permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// subsetBounds computes per-dimension min/max over the subset points.
func subsetBounds(c *cloud.Cloud, subset []int) (lo, hi []float32) {
	lo = append([]float32(nil), c.Point(subset[0])...)
	hi = append([]float32(nil), lo...)
	for _, i := range subset[1:] {
		for d, v := range c.Point(i) {
			if v < lo[d] {
				lo[d] = v
			}
			if v > hi[d] {
				hi[d] = v
			}
		}
	}
	return lo, hi
}

// maxSpreadDim returns the dimension with the largest spread, ties broken by
// the lowest dimension index.
func maxSpreadDim(lo, hi []float32) int {
	dim := 0
	spread := hi[0] - lo[0]
	for d := 1; d < len(lo); d++ {
		if s := hi[d] - lo[d]; s > spread {
			spread = s
			dim = d
		}
	}
	return dim
}

// maxVarianceDim returns the dimension with the largest coordinate variance
// over the subset, ties broken by the lowest dimension index.
func maxVarianceDim(c *cloud.Cloud, subset []int) int {
	dims := c.Dimension()
	sum := make([]float64, dims)
	sumSq := make([]float64, dims)
	for _, i := range subset {
		for d, v := range c.Point(i) {
			sum[d] += float64(v)
			sumSq[d] += float64(v) * float64(v)
		}
	}

	n := float64(len(subset))
	dim := 0
	best := -1.0
	for d := 0; d < dims; d++ {
		mean := sum[d] / n
		if variance := sumSq[d]/n - mean*mean; variance > best {
			best = variance
			dim = d
		}
	}
	return dim
}

// sortSubsetByDim orders the subset indices by their coordinate on the given
// dimension.
func sortSubsetByDim(c *cloud.Cloud, subset []int, d int) {
	sort.Slice(subset, func(i, j int) bool {
		return c.Coord(subset[i], d) < c.Coord(subset[j], d)
	})
}

// prepareQuery validates arguments and sets up the per-query working state.
func prepareQuery(c *cloud.Cloud, query []float32, k int, optFns ...func(*index.SearchOptions)) (index.SearchOptions, *heap.Bounded, float32, error) {
	opts := index.NewSearchOptions(optFns...)
	if err := index.Validate(c.Dimension(), query, k, opts); err != nil {
		return opts, nil, 0, err
	}

	// Pruning uses rd*maxError2 < headValue: epsilon > 0 prunes subtrees
	// whose bound is within a (1+epsilon)^2 factor of the current worst,
	// keeping every returned distance within that factor of optimal.
	maxError2 := (1 + opts.Epsilon) * (1 + opts.Epsilon)

	return opts, heap.NewBounded(k), maxError2, nil
}

// boxOffsets fills the per-dimension offset vector between the query and the
// root bounding box and returns rd, the sum of squared offsets. rd is a
// lower bound on the squared distance from the query to any point in the
// cloud.
func boxOffsets(c *cloud.Cloud, query []float32) ([]float32, float32) {
	minBound, maxBound := c.MinBound(), c.MaxBound()

	off := make([]float32, c.Dimension())
	var rd float32
	for d := range off {
		if v := minBound[d] - query[d]; v > 0 {
			off[d] = v
		} else if v := query[d] - maxBound[d]; v > 0 {
			off[d] = v
		}
		rd += off[d] * off[d]
	}
	return off, rd
}

func toResults(entries []heap.Entry) []index.SearchResult {
	out := make([]index.SearchResult, len(entries))
	for i, e := range entries {
		out[i] = index.SearchResult{Index: e.Index, Distance: e.Distance}
	}
	return out
}
