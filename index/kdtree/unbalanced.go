package kdtree

import (
	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
)

// Compile-time check to ensure slidingTree satisfies the Index interface.
var _ index.Index = (*slidingTree)(nil)

// slNode is one slot of the unbalanced implicit-bounds layout. Nodes are
// stored pre-order: a split node's left child sits at the next slot and only
// the right child's position is recorded. Leaves hold a single point.
type slNode struct {
	dim        int32 // split dimension; leafNode marks a leaf
	rightChild int32
	cutVal     float32
	ptIndex    int32 // leaf only
}

// slidingTree is the unbalanced points-in-leaves layout built with
// sliding-midpoint splits. No bounds are stored: the search reconstructs
// them exactly from the root bounding box, which works because each build
// step tightens the descent box only on its split dimension.
type slidingTree struct {
	cloud *cloud.Cloud
	nodes []slNode
	stats index.Statistics
}

func newSlidingTree(c *cloud.Cloud) *slidingTree {
	n := c.Size()
	t := &slidingTree{
		cloud: c,
		nodes: make([]slNode, 0, 2*n-1),
	}

	minBox := append([]float32(nil), c.MinBound()...)
	maxBox := append([]float32(nil), c.MaxBound()...)
	t.build(permutation(n), minBox, maxBox)

	return t
}

// build appends the subtree for the subset bounded by [minBox, maxBox] and
// returns its root slot.
func (t *slidingTree) build(subset []int, minBox, maxBox []float32) int32 {
	pos := int32(len(t.nodes))
	t.nodes = append(t.nodes, slNode{})

	if len(subset) == 1 {
		t.nodes[pos] = slNode{dim: leafNode, rightChild: -1, ptIndex: int32(subset[0])}
		return pos
	}

	lo, hi := subsetBounds(t.cloud, subset)
	d := maxSpreadDim(lo, hi)
	cut, mid := slidingMidpoint(t.cloud, subset, d, minBox[d], maxBox[d], lo[d], hi[d])

	oldMax := maxBox[d]
	maxBox[d] = cut
	t.build(subset[:mid], minBox, maxBox) // left child lands at pos+1
	maxBox[d] = oldMax

	oldMin := minBox[d]
	minBox[d] = cut
	right := t.build(subset[mid:], minBox, maxBox)
	minBox[d] = oldMin

	t.nodes[pos] = slNode{dim: int32(d), rightChild: right, cutVal: cut}
	return pos
}

// slidingMidpoint cuts the subset at the geometric midpoint of the descent
// box on dimension d, sliding the cut to the nearest point when the midpoint
// would leave one side empty. It partitions subset in place (coordinates
// < cut on the left) and returns the cut value and the partition rank; both
// sides are guaranteed non-empty.
//
// When every point shares the same coordinate on d (which, d being the
// maximum-spread dimension, means the points are identical) no hyperplane
// separates them: the subset is halved positionally so the recursion still
// terminates.
func slidingMidpoint(c *cloud.Cloud, subset []int, d int, boxLo, boxHi, lo, hi float32) (float32, int) {
	if lo == hi {
		return lo, len(subset) / 2
	}

	cut := 0.5 * (boxLo + boxHi)
	if cut <= lo {
		cut = smallestAbove(c, subset, d, lo)
	} else if cut > hi {
		cut = hi
	}

	return cut, partitionByCut(c, subset, d, cut)
}

// smallestAbove returns the smallest coordinate on d strictly greater than
// floor. The caller guarantees one exists.
func smallestAbove(c *cloud.Cloud, subset []int, d int, floor float32) float32 {
	best := math32.Inf()
	for _, i := range subset {
		if v := c.Coord(i, d); v > floor && v < best {
			best = v
		}
	}
	return best
}

// partitionByCut reorders subset so coordinates < cut precede coordinates
// >= cut, returning the boundary rank.
func partitionByCut(c *cloud.Cloud, subset []int, d int, cut float32) int {
	i, j := 0, len(subset)-1
	for i <= j {
		for i <= j && c.Coord(subset[i], d) < cut {
			i++
		}
		for i <= j && c.Coord(subset[j], d) >= cut {
			j--
		}
		if i < j {
			subset[i], subset[j] = subset[j], subset[i]
			i++
			j--
		}
	}
	return i
}

// KNN searches for the k nearest neighbors of query.
func (t *slidingTree) KNN(query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.SearchResult, error) {
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

func (t *slidingTree) recurseKNN(query []float32, p int32, rd float32, h *heap.Bounded, off []float32, maxError2 float32, allowSelfMatch bool, visits *uint64) {
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
	offDelta := query[cd] - node.cutVal
	near, far := p+1, node.rightChild
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
func (t *slidingTree) Dimension() int { return t.cloud.Dimension() }

// Size returns the number of indexed points.
func (t *slidingTree) Size() int { return t.cloud.Size() }

// Statistics returns the visit counters of this index.
func (t *slidingTree) Statistics() *index.Statistics { return &t.stats }
