// Package index provides the interfaces and types shared by the
// nearest-neighbor index implementations.
package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidEpsilon is returned when the approximation slack is negative.
	ErrInvalidEpsilon = errors.New("epsilon must be non-negative")
)

// ErrDimensionMismatch is a named error type for query/cloud dimension
// mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SearchResult represents a single neighbor found by a query.
type SearchResult struct {
	// Index is the position of the neighbor in the original cloud.
	Index int

	// Distance is the squared Euclidean distance between the query and the
	// neighbor.
	Distance float32
}

// SearchOptions controls the execution of a single query.
type SearchOptions struct {
	// Epsilon is the approximation slack: a returned neighbor may be up to
	// (1+Epsilon) times farther than the true one. 0 means exact search.
	Epsilon float32

	// AllowSelfMatch includes candidates at squared distance exactly 0,
	// i.e. cloud points identical to the query.
	AllowSelfMatch bool

	// SortResults orders results ascending by distance. When false, results
	// come back in heap-internal order.
	SortResults bool
}

// DefaultSearchOptions contains the default query configuration.
var DefaultSearchOptions = SearchOptions{
	Epsilon:        0,
	AllowSelfMatch: false,
	SortResults:    true,
}

// NewSearchOptions applies option functions on top of the defaults.
func NewSearchOptions(optFns ...func(*SearchOptions)) SearchOptions {
	opts := DefaultSearchOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Index is a built, immutable nearest-neighbor index over a point cloud.
// Implementations are safe for unbounded concurrent queries.
type Index interface {
	// KNN returns up to k neighbors of query, fewer if the cloud holds
	// fewer eligible points. This is never an error.
	KNN(query []float32, k int, optFns ...func(*SearchOptions)) ([]SearchResult, error)

	// Dimension returns the dimensionality of the indexed cloud.
	Dimension() int

	// Size returns the number of indexed points.
	Size() int

	// Statistics returns the visit counters of this index.
	Statistics() *Statistics
}

// Validate checks the per-query arguments shared by all implementations.
// It fails fast, before any node is visited.
func Validate(dim int, query []float32, k int, opts SearchOptions) error {
	if k <= 0 {
		return ErrInvalidK
	}
	if opts.Epsilon < 0 {
		return ErrInvalidEpsilon
	}
	if len(query) != dim {
		return &ErrDimensionMismatch{Expected: dim, Actual: len(query)}
	}
	return nil
}
