// Package nabo provides exact and approximate k-nearest-neighbor search.
//
// This file implements a fluent search API for querying Nabo instances.
package nabo

// Search creates a new fluent search builder for the given query vector.
//
// Example:
//
//	results, err := db.Search(query).
//	    KNN(10).
//	    Epsilon(0.1).
//	    Execute()
func (n *Nabo) Search(query []float32) *SearchBuilder {
	return &SearchBuilder{
		n:     n,
		query: query,
		k:     10, // Default k
		opts:  []func(*SearchOptions){},
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	n     *Nabo
	query []float32
	k     int
	opts  []func(*SearchOptions)
}

// KNN sets the number of nearest neighbors to return.
func (sb *SearchBuilder) KNN(k int) *SearchBuilder {
	sb.k = k
	return sb
}

// Epsilon enables approximate search: each returned distance is within a
// (1+epsilon) factor of the true nearest distance. Zero means exact.
func (sb *SearchBuilder) Epsilon(epsilon float32) *SearchBuilder {
	sb.opts = append(sb.opts, func(o *SearchOptions) {
		o.Epsilon = epsilon
	})
	return sb
}

// AllowSelfMatch includes indexed points at exactly zero distance from the
// query. By default such points are excluded, so querying with an indexed
// point returns its neighbors rather than the point itself.
func (sb *SearchBuilder) AllowSelfMatch() *SearchBuilder {
	sb.opts = append(sb.opts, func(o *SearchOptions) {
		o.AllowSelfMatch = true
	})
	return sb
}

// Unsorted skips the final ascending sort of the result set. Useful when
// only membership matters.
func (sb *SearchBuilder) Unsorted() *SearchBuilder {
	sb.opts = append(sb.opts, func(o *SearchOptions) {
		o.SortResults = false
	})
	return sb
}

// Execute runs the search and returns the results.
func (sb *SearchBuilder) Execute() ([]SearchResult, error) {
	return sb.n.KNN(sb.query, sb.k, sb.opts...)
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute() []SearchResult {
	results, err := sb.Execute()
	if err != nil {
		panic(err)
	}
	return results
}

// First returns only the nearest result, or ErrNotFound if none.
func (sb *SearchBuilder) First() (SearchResult, error) {
	sb.k = 1
	results, err := sb.Execute()
	if err != nil {
		return SearchResult{}, err
	}
	if len(results) == 0 {
		return SearchResult{}, ErrNotFound
	}
	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder) Count() (int, error) {
	results, err := sb.Execute()
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists checks if at least one result matches the search.
func (sb *SearchBuilder) Exists() (bool, error) {
	sb.k = 1
	results, err := sb.Execute()
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
