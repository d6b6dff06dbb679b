package kdtree

import (
	"math/bits"

	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
)

// Compile-time check to ensure ptInNodesTree satisfies the Index interface.
var _ index.Index = (*ptInNodesTree)(nil)

// ptNode is one slot of the points-in-nodes layout. Every node, internal or
// leaf, carries exactly one cloud point.
type ptNode struct {
	index int32 // cloud index of the point stored at this node
	dim   int32 // split dimension; leafNode marks a leaf
}

// ptInNodesTree is the balanced points-in-nodes layout: a complete binary
// tree stored flat, node p's children at 2p+1 and 2p+2. Because the tree is
// complete, the n nodes occupy slots 0..n-1 exactly and a child exists iff
// its slot index is below n.
type ptInNodesTree struct {
	cloud     *cloud.Cloud
	nodes     []ptNode
	bestFirst bool
	stats     index.Statistics
}

func newPtInNodesTree(c *cloud.Cloud, bestFirst bool) *ptInNodesTree {
	t := &ptInNodesTree{
		cloud:     c,
		nodes:     make([]ptNode, c.Size()),
		bestFirst: bestFirst,
	}
	for i := range t.nodes {
		t.nodes[i] = ptNode{index: -1, dim: invalidNode}
	}
	t.build(permutation(c.Size()), 0)

	return t
}

// leftSubtreeSize returns the node count of the left subtree when n nodes
// form a complete binary tree: all levels full except the last, which fills
// left to right. Splitting at this rank is what keeps every recursive slot
// assignment inside 0..n-1.
func leftSubtreeSize(n int) int {
	if n <= 1 {
		return 0
	}

	h := bits.Len(uint(n)) - 1 // floor(log2 n)
	bottom := 1 << h           // capacity of the bottom level
	rest := n - (bottom - 1)   // nodes actually on the bottom level
	if half := bottom / 2; rest > half {
		rest = half
	}
	return bottom/2 - 1 + rest
}

// build stores the subset into the implicit subtree rooted at slot p. The
// element at the complete-tree median rank becomes the node's own point; the
// smaller elements form the left subtree, the larger the right.
func (t *ptInNodesTree) build(subset []int, p int) {
	if len(subset) == 1 {
		t.nodes[p] = ptNode{index: int32(subset[0]), dim: leafNode}
		return
	}

	lo, hi := subsetBounds(t.cloud, subset)
	d := maxSpreadDim(lo, hi)
	sortSubsetByDim(t.cloud, subset, d)

	l := leftSubtreeSize(len(subset))
	t.nodes[p] = ptNode{index: int32(subset[l]), dim: int32(d)}

	t.build(subset[:l], 2*p+1)
	if l+1 < len(subset) {
		t.build(subset[l+1:], 2*p+2)
	}
}

// KNN searches for the k nearest neighbors of query.
func (t *ptInNodesTree) KNN(query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.SearchResult, error) {
	opts, h, maxError2, err := prepareQuery(t.cloud, query, k, optFns...)
	if err != nil {
		return nil, err
	}

	var visits uint64
	if t.bestFirst {
		visits = t.bestFirstKNN(query, h, maxError2, opts.AllowSelfMatch)
	} else {
		off, rd := boxOffsets(t.cloud, query)
		t.recurseKNN(query, 0, rd, h, off, maxError2, opts.AllowSelfMatch, &visits)
	}
	t.stats.RecordQuery(visits)

	return toResults(h.Results(opts.SortResults)), nil
}

// recurseKNN is the depth-first pruning descent. rd carries the sum of the
// squared per-dimension offsets in off, a lower bound on the squared
// distance from the query to anything in the current subtree's region.
func (t *ptInNodesTree) recurseKNN(query []float32, p int, rd float32, h *heap.Bounded, off []float32, maxError2 float32, allowSelfMatch bool, visits *uint64) {
	*visits++
	node := t.nodes[p]
	pos := t.cloud.Point(int(node.index))

	d := math32.SquaredL2(query, pos)
	if d < h.HeadValue() && (allowSelfMatch || d > 0) {
		h.ReplaceHead(int(node.index), d)
	}
	if node.dim == leafNode {
		return
	}

	cd := int(node.dim)
	offDelta := query[cd] - pos[cd]
	near, far := 2*p+1, 2*p+2
	if offDelta > 0 {
		near, far = far, near
	}

	if near < len(t.nodes) {
		t.recurseKNN(query, near, rd, h, off, maxError2, allowSelfMatch, visits)
	}
	if far < len(t.nodes) {
		oldOff := off[cd]
		rd += offDelta*offDelta - oldOff*oldOff
		if rd*maxError2 < h.HeadValue() {
			// The offset must be reverted exactly when backtracking to the
			// sibling, or the bound drifts and pruning turns unsound.
			off[cd] = offDelta
			t.recurseKNN(query, far, rd, h, off, maxError2, allowSelfMatch, visits)
			off[cd] = oldOff
		}
	}
}

// Dimension returns the dimensionality of the indexed cloud.
func (t *ptInNodesTree) Dimension() int { return t.cloud.Dimension() }

// Size returns the number of indexed points.
func (t *ptInNodesTree) Size() int { return t.cloud.Size() }

// Statistics returns the visit counters of this index.
func (t *ptInNodesTree) Statistics() *index.Statistics { return &t.stats }
