package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatistics(t *testing.T) {
	t.Run("Sequential", func(t *testing.T) {
		var s Statistics

		s.RecordQuery(3)
		s.RecordQuery(5)

		snap := s.Snapshot()
		assert.Equal(t, uint64(5), snap.LastQueryVisitCount)
		assert.Equal(t, uint64(8), snap.TotalVisitCount)
	})

	t.Run("ConcurrentTotal", func(t *testing.T) {
		var s Statistics

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					s.RecordQuery(2)
				}
			}()
		}
		wg.Wait()

		// The total is exact even though LastQueryVisitCount races benignly.
		assert.Equal(t, uint64(16*100*2), s.Snapshot().TotalVisitCount)
	})
}
