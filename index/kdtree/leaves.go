package kdtree

import (
	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
)

// Compile-time check to ensure ptInLeavesTree satisfies the Index interface.
var _ index.Index = (*ptInLeavesTree)(nil)

// bucketNode is one slot of the balanced points-in-leaves layout. Internal
// nodes carry only the splitting hyperplane; leaves reference a contiguous
// bucket of the permutation array.
type bucketNode struct {
	dim    int32 // split dimension; leafNode marks a leaf, invalidNode an unused slot
	cutVal float32

	// Leaf bucket: perm[start : start+count].
	start uint32
	count uint32
}

// ptInLeavesTree is the balanced points-in-leaves layout: an implicit binary
// tree (children at 2p+1 and 2p+2) whose internal nodes split at the
// point-count median, with the points themselves gathered into leaf buckets
// of a shared permutation array.
type ptInLeavesTree struct {
	cloud *cloud.Cloud
	nodes []bucketNode
	perm  []int
	stats index.Statistics
}

func newPtInLeavesTree(c *cloud.Cloud, bucketSize int, balanceVariance bool) *ptInLeavesTree {
	n := c.Size()
	t := &ptInLeavesTree{
		cloud: c,
		nodes: make([]bucketNode, treeSlots(n, bucketSize)),
		perm:  permutation(n),
	}
	for i := range t.nodes {
		t.nodes[i].dim = invalidNode
	}
	t.build(0, 0, n, bucketSize, balanceVariance)

	return t
}

// treeSlots returns the implicit-array size needed for n points with the
// given bucket size: median splits halve the subset at every level, so the
// depth is bounded by the smallest power of two covering the leaf count.
func treeSlots(n, bucketSize int) int {
	leaves := (n + bucketSize - 1) / bucketSize
	width := 1
	for width < leaves {
		width <<= 1
	}
	return 2*width - 1
}

func (t *ptInLeavesTree) ensure(p int) {
	for p >= len(t.nodes) {
		t.nodes = append(t.nodes, bucketNode{dim: invalidNode})
	}
}

// build partitions perm[start:end) into the implicit subtree rooted at slot
// p. Exactly count/2 points go left, guaranteeing minimum tree height.
func (t *ptInLeavesTree) build(p, start, end, bucketSize int, balanceVariance bool) {
	t.ensure(p)

	count := end - start
	if count <= bucketSize {
		t.nodes[p] = bucketNode{dim: leafNode, start: uint32(start), count: uint32(count)}
		return
	}

	subset := t.perm[start:end]
	var d int
	if balanceVariance {
		d = maxVarianceDim(t.cloud, subset)
	} else {
		lo, hi := subsetBounds(t.cloud, subset)
		d = maxSpreadDim(lo, hi)
	}
	sortSubsetByDim(t.cloud, subset, d)

	mid := start + count/2
	t.nodes[p] = bucketNode{dim: int32(d), cutVal: t.cloud.Coord(t.perm[mid], d)}

	t.build(2*p+1, start, mid, bucketSize, balanceVariance)
	t.build(2*p+2, mid, end, bucketSize, balanceVariance)
}

// KNN searches for the k nearest neighbors of query.
func (t *ptInLeavesTree) KNN(query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.SearchResult, error) {
	opts, h, maxError2, err := prepareQuery(t.cloud, query, k, optFns...)
	if err != nil {
		return nil, err
	}

	off, rd := boxOffsets(t.cloud, query)
	var visits uint64
	t.recurseKNN(query, 0, rd, h, off, maxError2, opts.AllowSelfMatch, &visits)
	t.stats.RecordQuery(visits)

	return toResults(h.Results(opts.SortResults)), nil
}

func (t *ptInLeavesTree) recurseKNN(query []float32, p int, rd float32, h *heap.Bounded, off []float32, maxError2 float32, allowSelfMatch bool, visits *uint64) {
	*visits++
	node := t.nodes[p]

	if node.dim == leafNode {
		for _, i := range t.perm[node.start : node.start+node.count] {
			d := math32.SquaredL2(query, t.cloud.Point(i))
			if d < h.HeadValue() && (allowSelfMatch || d > 0) {
				h.ReplaceHead(i, d)
			}
		}
		return
	}

	cd := int(node.dim)
	offDelta := query[cd] - node.cutVal
	near, far := 2*p+1, 2*p+2
	if offDelta > 0 {
		near, far = far, near
	}

	t.recurseKNN(query, near, rd, h, off, maxError2, allowSelfMatch, visits)

	oldOff := off[cd]
	rd += offDelta*offDelta - oldOff*oldOff
	if rd*maxError2 < h.HeadValue() {
		off[cd] = offDelta
		t.recurseKNN(query, far, rd, h, off, maxError2, allowSelfMatch, visits)
		off[cd] = oldOff
	}
}

// Dimension returns the dimensionality of the indexed cloud.
func (t *ptInLeavesTree) Dimension() int { return t.cloud.Dimension() }

// Size returns the number of indexed points.
func (t *ptInLeavesTree) Size() int { return t.cloud.Size() }

// Statistics returns the visit counters of this index.
func (t *ptInLeavesTree) Statistics() *index.Statistics { return &t.stats }
