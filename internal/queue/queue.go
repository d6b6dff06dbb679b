// Package queue provides the priority queue driving the best-first
// traversal. This is an internal package - external users should not depend
// on it.
package queue

// Item is an unexplored tree node together with a lower bound on the
// distance from the query to anything stored beneath it.
type Item struct {
	Node    uint32  // flat-array node position
	MinDist float32 // admissible lower bound (squared distance)
}

// PriorityQueue is a min-heap of Items ordered by MinDist, so the most
// promising unexplored subtree is always on top.
//
// Value-based storage for cache locality and zero per-push allocations.
type PriorityQueue struct {
	items []Item
}

// New initializes a priority queue with the given capacity hint.
func New(capacity int) *PriorityQueue {
	return &PriorityQueue{items: make([]Item, 0, capacity)}
}

// Len returns the number of queued items.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// Push inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) Push(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the item with the smallest MinDist.
func (pq *PriorityQueue) Pop() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if pq.items[i].MinDist >= pq.items[p].MinDist {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && pq.items[r].MinDist < pq.items[l].MinDist {
			best = r
		}
		if pq.items[best].MinDist >= pq.items[i].MinDist {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
