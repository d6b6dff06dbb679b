package nabo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nabo/index"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidEpsilon is returned when epsilon is negative.
	ErrInvalidEpsilon = errors.New("epsilon must be non-negative")

	// ErrNotFound is returned when a search yields no matching neighbor.
	ErrNotFound = errors.New("no matching neighbor found")
)

// ErrDimensionMismatch indicates a query/cloud dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, index.ErrInvalidEpsilon) {
		return fmt.Errorf("%w: %w", ErrInvalidEpsilon, err)
	}

	return err
}
