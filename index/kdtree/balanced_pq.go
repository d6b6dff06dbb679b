package kdtree

import (
	"github.com/hupe1980/nabo/internal/heap"
	"github.com/hupe1980/nabo/internal/math32"
	"github.com/hupe1980/nabo/internal/queue"
)

// bestFirstKNN explores the points-in-nodes tree in globally best-first
// order: a min priority queue hands out the unexplored subtree with the
// smallest lower bound. Once the best bound is no better than the current
// k-th distance, nothing left can improve the result and the search stops.
//
// The result set equals the depth-first traversal's up to tie order; only
// the visit count differs.
func (t *ptInNodesTree) bestFirstKNN(query []float32, h *heap.Bounded, maxError2 float32, allowSelfMatch bool) uint64 {
	var visits uint64

	pq := queue.New(64)
	pq.Push(queue.Item{Node: 0, MinDist: 0})

	for {
		it, ok := pq.Pop()
		if !ok || it.MinDist*maxError2 >= h.HeadValue() {
			break
		}
		visits++

		p := int(it.Node)
		node := t.nodes[p]
		pos := t.cloud.Point(int(node.index))

		d := math32.SquaredL2(query, pos)
		if d < h.HeadValue() && (allowSelfMatch || d > 0) {
			h.ReplaceHead(int(node.index), d)
		}
		if node.dim == leafNode {
			continue
		}

		cd := int(node.dim)
		offDelta := query[cd] - pos[cd]

		// The near child inherits the node's bound; the far child's bound is
		// at least the squared distance from the query to the splitting
		// hyperplane.
		nearBound := it.MinDist
		farBound := it.MinDist
		if off2 := offDelta * offDelta; off2 > farBound {
			farBound = off2
		}

		near, far := 2*p+1, 2*p+2
		if offDelta > 0 {
			near, far = far, near
		}
		if near < len(t.nodes) {
			pq.Push(queue.Item{Node: uint32(near), MinDist: nearBound})
		}
		if far < len(t.nodes) {
			pq.Push(queue.Item{Node: uint32(far), MinDist: farBound})
		}
	}

	return visits
}
