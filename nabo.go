package nabo

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nabo/index"
)

// SearchResult is a single neighbor: the point's cloud index and its squared
// Euclidean distance from the query.
type SearchResult = index.SearchResult

// SearchOptions are the per-query knobs shared by all index kinds.
type SearchOptions = index.SearchOptions

// Options contains configuration options for a Nabo instance.
type Options struct {
	// Logger receives structured logs for builds and searches.
	Logger *Logger

	// Metrics receives operational metrics.
	Metrics MetricsCollector
}

// Nabo wraps a nearest-neighbor index with logging and metrics. Instances
// are created through the KDTree and BruteForce builders, or through New for
// custom index implementations.
type Nabo struct {
	idx     index.Index
	logger  *Logger
	metrics MetricsCollector
}

// New wraps an existing index. Most callers should use the KDTree or
// BruteForce builders instead.
func New(idx index.Index, optFns ...func(*Options)) *Nabo {
	opts := Options{
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Nabo{
		idx:     idx,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// KNN returns the k nearest neighbors of query, nearest first.
func (n *Nabo) KNN(query []float32, k int, optFns ...func(*SearchOptions)) ([]SearchResult, error) {
	start := time.Now()

	results, err := n.idx.KNN(query, k, optFns...)
	err = translateError(err)

	n.metrics.RecordSearch(k, time.Since(start), err)
	n.logger.LogSearch(k, len(results), err)

	return results, err
}

// KNNBatch answers many queries against the same index, fanned out over all
// cores. Results are returned in query order. The first failing query aborts
// the batch; ctx cancellation does the same.
func (n *Nabo) KNNBatch(ctx context.Context, queries [][]float32, k int, optFns ...func(*SearchOptions)) ([][]SearchResult, error) {
	start := time.Now()

	out := make([][]SearchResult, len(queries))
	var failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results, err := n.idx.KNN(q, k, optFns...)
			if err != nil {
				failed.Add(1)
				return translateError(err)
			}

			out[i] = results
			return nil
		})
	}

	err := g.Wait()
	n.metrics.RecordBatchSearch(len(queries), int(failed.Load()), time.Since(start))
	n.logger.LogBatchSearch(len(queries), int(failed.Load()), time.Since(start))

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dimension returns the dimensionality of the indexed cloud.
func (n *Nabo) Dimension() int { return n.idx.Dimension() }

// Size returns the number of indexed points.
func (n *Nabo) Size() int { return n.idx.Size() }

// Statistics returns the index's visit counters.
func (n *Nabo) Statistics() *index.Statistics { return n.idx.Statistics() }

// Index exposes the underlying index.
func (n *Nabo) Index() index.Index { return n.idx }
