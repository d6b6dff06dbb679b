package kdtree

import (
	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
)

// Compile-time check to ensure boundedTree satisfies the Index interface.
var _ index.Index = (*boundedTree)(nil)

// boundedNode extends the sliding-midpoint layout with the node's descent
// box extent on its own split dimension.
type boundedNode struct {
	dim        int32 // split dimension; leafNode marks a leaf
	rightChild int32
	cutVal     float32
	lowBound   float32 // descent box minimum on dim
	highBound  float32 // descent box maximum on dim
	ptIndex    int32   // leaf only
}

// boundedTree is the unbalanced points-in-leaves layout with explicit
// per-node bounds. Storing each split's box extent lets the search replace
// the offset a dimension currently contributes without carrying an offset
// vector: the old contribution is recomputed from the stored bounds.
type boundedTree struct {
	cloud *cloud.Cloud
	nodes []boundedNode
	stats index.Statistics
}

func newBoundedTree(c *cloud.Cloud) *boundedTree {
	n := c.Size()
	t := &boundedTree{
		cloud: c,
		nodes: make([]boundedNode, 0, 2*n-1),
	}

	minBox := append([]float32(nil), c.MinBound()...)
	maxBox := append([]float32(nil), c.MaxBound()...)
	t.build(permutation(n), minBox, maxBox)

	return t
}

func (t *boundedTree) build(subset []int, minBox, maxBox []float32) int32 {
	pos := int32(len(t.nodes))
	t.nodes = append(t.nodes, boundedNode{})

	if len(subset) == 1 {
		t.nodes[pos] = boundedNode{dim: leafNode, rightChild: -1, ptIndex: int32(subset[0])}
		return pos
	}

	lo, hi := subsetBounds(t.cloud, subset)
	d := maxSpreadDim(lo, hi)
	cut, mid := slidingMidpoint(t.cloud, subset, d, minBox[d], maxBox[d], lo[d], hi[d])

	lowBound, highBound := minBox[d], maxBox[d]

	maxBox[d] = cut
	t.build(subset[:mid], minBox, maxBox)
	maxBox[d] = highBound

	minBox[d] = cut
	right := t.build(subset[mid:], minBox, maxBox)
	minBox[d] = lowBound

	t.nodes[pos] = boundedNode{
		dim:        int32(d),
		rightChild: right,
		cutVal:     cut,
		lowBound:   lowBound,
		highBound:  highBound,
	}
	return pos
}

// KNN searches for the k nearest neighbors of query.
func (t *boundedTree) KNN(query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.SearchResult, error) {
	opts, h, maxError2, err := prepareQuery(t.cloud, query, k, optFns...)
	if err != nil {
		return nil, err
	}

	_, rd := boxOffsets(t.cloud, query)
	var visits uint64
	t.recurseKNN(query, 0, rd, h, maxError2, opts.AllowSelfMatch, &visits)
	t.stats.RecordQuery(visits)

	return toResults(h.Results(opts.SortResults)), nil
}

func (t *boundedTree) recurseKNN(query []float32, p int32, rd float32, h *heap.Bounded, maxError2 float32, allowSelfMatch bool, visits *uint64) {
	*visits++
	node := t.nodes[p]

	if node.dim == leafNode {
		d := math32.SquaredL2(query, t.cloud.Point(int(node.ptIndex)))
		if d < h.HeadValue() && (allowSelfMatch || d > 0) {
			h.ReplaceHead(int(node.ptIndex), d)
		}
		return
	}

	cd := int(node.dim)
	qv := query[cd]

	// Offset this dimension currently contributes to rd, recomputed from the
	// stored box instead of an offset vector.
	var oldOff float32
	if qv < node.lowBound {
		oldOff = node.lowBound - qv
	} else if qv > node.highBound {
		oldOff = qv - node.highBound
	}

	offDelta := qv - node.cutVal
	near, far := p+1, node.rightChild
	if offDelta > 0 {
		near, far = far, near
	}

	t.recurseKNN(query, near, rd, h, maxError2, allowSelfMatch, visits)

	rd += offDelta*offDelta - oldOff*oldOff
	if rd*maxError2 < h.HeadValue() {
		t.recurseKNN(query, far, rd, h, maxError2, allowSelfMatch, visits)
	}
}

// Dimension returns the dimensionality of the indexed cloud.
func (t *boundedTree) Dimension() int { return t.cloud.Dimension() }

// Size returns the number of indexed points.
func (t *boundedTree) Size() int { return t.cloud.Size() }

// Statistics returns the visit counters of this index.
func (t *boundedTree) Statistics() *index.Statistics { return &t.stats }
