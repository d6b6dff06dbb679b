package cloud

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCloud is returned when a cloud is constructed without points.
	ErrEmptyCloud = errors.New("cloud must contain at least one point")

	// ErrZeroDimension is returned when the declared dimension is not positive.
	ErrZeroDimension = errors.New("dimension must be positive")
)

// ErrRaggedData indicates that the flat data length is not a multiple of the
// declared dimension.
type ErrRaggedData struct {
	Len       int
	Dimension int
}

func (e *ErrRaggedData) Error() string {
	return fmt.Sprintf("data length %d is not a multiple of dimension %d", e.Len, e.Dimension)
}

// Cloud is an immutable set of D-dimensional points indexed 0..N-1.
//
// Points are stored in a single flat column-major slice: point i occupies
// data[i*dim : (i+1)*dim]. The per-dimension extrema over all points are
// computed once at construction. A Cloud is never mutated after New returns
// and is safe for unbounded concurrent reads.
type Cloud struct {
	data     []float32
	dim      int
	size     int
	minBound []float32
	maxBound []float32
}

// New creates a Cloud from flat point data with the given dimension. The
// data is copied, so the caller may reuse its slice. New fails if dim is not
// positive, data is empty, or len(data) is not a multiple of dim.
func New(data []float32, dim int) (*Cloud, error) {
	if dim <= 0 {
		return nil, ErrZeroDimension
	}
	if len(data) == 0 {
		return nil, ErrEmptyCloud
	}
	if len(data)%dim != 0 {
		return nil, &ErrRaggedData{Len: len(data), Dimension: dim}
	}

	c := &Cloud{
		data: append([]float32(nil), data...),
		dim:  dim,
		size: len(data) / dim,
	}
	c.computeBounds()

	return c, nil
}

// FromPoints creates a Cloud from a slice of points, all of which must share
// the same dimension.
func FromPoints(points [][]float32) (*Cloud, error) {
	if len(points) == 0 {
		return nil, ErrEmptyCloud
	}

	dim := len(points[0])
	if dim == 0 {
		return nil, ErrZeroDimension
	}

	data := make([]float32, 0, len(points)*dim)
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim)
		}
		data = append(data, p...)
	}

	c := &Cloud{data: data, dim: dim, size: len(points)}
	c.computeBounds()

	return c, nil
}

// computeBounds derives the axis-aligned bounding box in a single pass.
func (c *Cloud) computeBounds() {
	c.minBound = append([]float32(nil), c.data[:c.dim]...)
	c.maxBound = append([]float32(nil), c.data[:c.dim]...)

	for i := 1; i < c.size; i++ {
		p := c.Point(i)
		for d, v := range p {
			if v < c.minBound[d] {
				c.minBound[d] = v
			}
			if v > c.maxBound[d] {
				c.maxBound[d] = v
			}
		}
	}
}

// Dimension returns D, the number of rows.
func (c *Cloud) Dimension() int { return c.dim }

// Size returns N, the number of points.
func (c *Cloud) Size() int { return c.size }

// Point returns point i as a slice view into the cloud. Callers must treat
// it as read-only.
func (c *Cloud) Point(i int) []float32 {
	return c.data[i*c.dim : (i+1)*c.dim]
}

// Coord returns coordinate d of point i.
func (c *Cloud) Coord(i, d int) float32 {
	return c.data[i*c.dim+d]
}

// MinBound returns the per-dimension minima over all points. Callers must
// treat the slice as read-only.
func (c *Cloud) MinBound() []float32 { return c.minBound }

// MaxBound returns the per-dimension maxima over all points. Callers must
// treat the slice as read-only.
func (c *Cloud) MaxBound() []float32 { return c.maxBound }
