package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		c, err := New([]float32{0, 0, 10, 0, 0, 10, 10, 10}, 2)
		require.NoError(t, err)

		assert.Equal(t, 2, c.Dimension())
		assert.Equal(t, 4, c.Size())
		assert.Equal(t, []float32{10, 0}, c.Point(1))
		assert.Equal(t, float32(10), c.Coord(3, 1))
	})

	t.Run("Bounds", func(t *testing.T) {
		c, err := New([]float32{1, -2, 3, 4, -5, 6}, 3)
		require.NoError(t, err)

		assert.Equal(t, []float32{1, -5, 3}, c.MinBound())
		assert.Equal(t, []float32{4, -2, 6}, c.MaxBound())
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := New(nil, 3)
		assert.ErrorIs(t, err, ErrEmptyCloud)
	})

	t.Run("ZeroDimension", func(t *testing.T) {
		_, err := New([]float32{1, 2}, 0)
		assert.ErrorIs(t, err, ErrZeroDimension)
	})

	t.Run("RaggedData", func(t *testing.T) {
		_, err := New([]float32{1, 2, 3}, 2)

		var ragged *ErrRaggedData
		require.ErrorAs(t, err, &ragged)
		assert.Equal(t, 3, ragged.Len)
		assert.Equal(t, 2, ragged.Dimension)
	})

	t.Run("CopiesData", func(t *testing.T) {
		data := []float32{1, 2}
		c, err := New(data, 2)
		require.NoError(t, err)

		data[0] = 99
		assert.Equal(t, float32(1), c.Coord(0, 0))
	})
}

func TestFromPoints(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		c, err := FromPoints([][]float32{{1, 2}, {3, 4}, {5, 6}})
		require.NoError(t, err)

		assert.Equal(t, 3, c.Size())
		assert.Equal(t, []float32{3, 4}, c.Point(1))
	})

	t.Run("MismatchedDimensions", func(t *testing.T) {
		_, err := FromPoints([][]float32{{1, 2}, {3}})
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := FromPoints(nil)
		assert.ErrorIs(t, err, ErrEmptyCloud)
	})
}
