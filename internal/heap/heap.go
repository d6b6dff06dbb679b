// Package heap provides the bounded candidate heap used by the search
// traversals. This is an internal package - external users should not depend
// on it.
package heap

import (
	"sort"

	"github.com/hupe1980/nabo/internal/math32"
)

// Entry is a candidate neighbor: a cloud index and its squared distance to
// the query.
type Entry struct {
	Index    int
	Distance float32
}

// Bounded is a fixed-capacity max-heap holding the k smallest distances seen
// so far. All slots start at +Inf, so HeadValue is the live pruning bound:
// any candidate not strictly below it cannot enter the result set.
//
// Value-based storage, no pointer indirection.
type Bounded struct {
	entries []Entry
}

// NewBounded initializes a heap with capacity k. All slots are set to
// distance +Inf and an invalid index.
func NewBounded(k int) *Bounded {
	entries := make([]Entry, k)
	for i := range entries {
		entries[i] = Entry{Index: -1, Distance: math32.Inf()}
	}

	return &Bounded{entries: entries}
}

// HeadValue returns the current worst retained distance, the k-th best seen
// so far (+Inf while fewer than k candidates have been accepted).
func (h *Bounded) HeadValue() float32 {
	return h.entries[0].Distance
}

// ReplaceHead evicts the current worst entry, inserts the new pair and
// restores heap order. Valid only when distance < HeadValue; ties in
// distance keep the earlier insertion.
func (h *Bounded) ReplaceHead(index int, distance float32) {
	h.entries[0] = Entry{Index: index, Distance: distance}
	h.siftDown(0)
}

// Results returns the retained entries, excluding slots still at +Inf
// (fewer candidates than k were available). When sorted is true the entries
// are ordered ascending by distance; otherwise they are returned in heap
// order.
func (h *Bounded) Results(sorted bool) []Entry {
	out := make([]Entry, 0, len(h.entries))
	for _, e := range h.entries {
		if e.Distance < math32.Inf() {
			out = append(out, e)
		}
	}

	if sorted {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Distance < out[j].Distance
		})
	}

	return out
}

func (h *Bounded) siftDown(i int) {
	n := len(h.entries)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		largest := l
		if r := l + 1; r < n && h.entries[r].Distance > h.entries[l].Distance {
			largest = r
		}
		if h.entries[largest].Distance <= h.entries[i].Distance {
			return
		}
		h.entries[i], h.entries[largest] = h.entries[largest], h.entries[i]
		i = largest
	}
}
