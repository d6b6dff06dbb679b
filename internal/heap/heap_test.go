package heap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nabo/internal/math32"
)

func TestBounded(t *testing.T) {
	t.Run("InitialState", func(t *testing.T) {
		h := NewBounded(3)

		assert.Equal(t, math32.Inf(), h.HeadValue())
		assert.Empty(t, h.Results(true))
	})

	t.Run("PartiallyFilled", func(t *testing.T) {
		h := NewBounded(4)
		h.ReplaceHead(7, 2.5)
		h.ReplaceHead(3, 1.0)

		// Two slots are still at +Inf and must be excluded.
		results := h.Results(true)
		require.Len(t, results, 2)
		assert.Equal(t, Entry{Index: 3, Distance: 1.0}, results[0])
		assert.Equal(t, Entry{Index: 7, Distance: 2.5}, results[1])

		// Worst retained value is still +Inf until the heap fills up.
		assert.Equal(t, math32.Inf(), h.HeadValue())
	})

	t.Run("EvictsWorst", func(t *testing.T) {
		h := NewBounded(2)
		h.ReplaceHead(0, 9)
		h.ReplaceHead(1, 5)
		assert.Equal(t, float32(9), h.HeadValue())

		// 7 beats the current worst (9) and evicts it.
		h.ReplaceHead(2, 7)
		assert.Equal(t, float32(7), h.HeadValue())

		results := h.Results(true)
		require.Len(t, results, 2)
		assert.Equal(t, []Entry{{Index: 1, Distance: 5}, {Index: 2, Distance: 7}}, results)
	})

	t.Run("KeepsKSmallest", func(t *testing.T) {
		const k = 8
		rng := rand.New(rand.NewSource(42))

		h := NewBounded(k)
		dists := make([]float64, 0, 100)
		for i := 0; i < 100; i++ {
			d := rng.Float64() * 1000
			dists = append(dists, d)
			if f := float32(d); f < h.HeadValue() {
				h.ReplaceHead(i, f)
			}
		}

		sort.Float64s(dists)
		results := h.Results(true)
		require.Len(t, results, k)
		for i, e := range results {
			assert.Equal(t, float32(dists[i]), e.Distance)
		}
	})

	t.Run("UnsortedOrder", func(t *testing.T) {
		h := NewBounded(3)
		h.ReplaceHead(0, 3)
		h.ReplaceHead(1, 2)
		h.ReplaceHead(2, 1)

		// Same set regardless of ordering.
		sorted := h.Results(true)
		unsorted := h.Results(false)
		assert.ElementsMatch(t, sorted, unsorted)
	})
}
