// Package nabo provides exact and approximate k-nearest-neighbor search.
//
// This file implements index-specific fluent builder APIs for creating Nabo instances.
// Builders are immutable - each method returns a new builder with the updated configuration.
package nabo

import (
	"time"

	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index/bruteforce"
	"github.com/hupe1980/nabo/index/kdtree"
)

// =============================================================================
// KDTree Builder (Immutable)
// =============================================================================

// KDTree creates a new kd-tree builder over the given cloud.
//
// The builder is immutable - each method returns a new builder with the updated
// configuration. This ensures thread-safety and prevents accidental state sharing.
//
// Example:
//
//	db, err := nabo.KDTree(c).
//	    BalancedPointsInLeaves().
//	    BucketSize(16).
//	    Build()
func KDTree(c *cloud.Cloud) KDTreeBuilder {
	return KDTreeBuilder{
		cloud:      c,
		variant:    kdtree.DefaultOptions.Variant,
		bucketSize: kdtree.DefaultOptions.BucketSize,
	}
}

// KDTreeBuilder is an immutable fluent builder for creating kd-tree-based
// Nabo instances. Each method returns a new builder with the updated
// configuration.
type KDTreeBuilder struct {
	cloud           *cloud.Cloud
	variant         kdtree.Variant
	bucketSize      int
	balanceVariance bool
	logger          *Logger
	metrics         MetricsCollector
}

// Variant selects the tree layout and traversal.
func (b KDTreeBuilder) Variant(v kdtree.Variant) KDTreeBuilder {
	b.variant = v
	return b
}

// BalancedPointsInNodes selects the one-point-per-node layout with
// depth-first search.
func (b KDTreeBuilder) BalancedPointsInNodes() KDTreeBuilder {
	b.variant = kdtree.BalancedPointsInNodes
	return b
}

// BalancedPointsInNodesQueue selects the one-point-per-node layout with
// best-first search through a priority queue.
func (b KDTreeBuilder) BalancedPointsInNodesQueue() KDTreeBuilder {
	b.variant = kdtree.BalancedPointsInNodesQueue
	return b
}

// BalancedPointsInLeaves selects the median-split layout with bucketed
// leaves. Tune the leaf size with BucketSize.
func (b KDTreeBuilder) BalancedPointsInLeaves() KDTreeBuilder {
	b.variant = kdtree.BalancedPointsInLeaves
	return b
}

// UnbalancedImplicitBounds selects the sliding-midpoint layout without
// stored bounds. This is the default.
func (b KDTreeBuilder) UnbalancedImplicitBounds() KDTreeBuilder {
	b.variant = kdtree.UnbalancedImplicitBounds
	return b
}

// UnbalancedExplicitBounds selects the sliding-midpoint layout with per-node
// bounds stored at build time.
func (b KDTreeBuilder) UnbalancedExplicitBounds() KDTreeBuilder {
	b.variant = kdtree.UnbalancedExplicitBounds
	return b
}

// BucketSize sets the maximum number of points per leaf for the
// BalancedPointsInLeaves variant. Default: 8.
func (b KDTreeBuilder) BucketSize(size int) KDTreeBuilder {
	b.bucketSize = size
	return b
}

// BalanceVariance selects split dimensions by maximum coordinate variance
// instead of maximum spread (BalancedPointsInLeaves only).
func (b KDTreeBuilder) BalanceVariance(enabled bool) KDTreeBuilder {
	b.balanceVariance = enabled
	return b
}

// Logger sets the logger for the resulting instance.
func (b KDTreeBuilder) Logger(logger *Logger) KDTreeBuilder {
	b.logger = logger
	return b
}

// Metrics sets the metrics collector for the resulting instance.
func (b KDTreeBuilder) Metrics(metrics MetricsCollector) KDTreeBuilder {
	b.metrics = metrics
	return b
}

// Build constructs the tree and returns the ready-to-query instance.
func (b KDTreeBuilder) Build() (*Nabo, error) {
	n := New(nil, func(o *Options) {
		if b.logger != nil {
			o.Logger = b.logger
		}
		if b.metrics != nil {
			o.Metrics = b.metrics
		}
	})

	start := time.Now()
	idx, err := kdtree.New(b.cloud, func(o *kdtree.Options) {
		o.Variant = b.variant
		o.BucketSize = b.bucketSize
		o.BalanceVariance = b.balanceVariance
	})

	n.metrics.RecordBuild(time.Since(start), err)
	if err != nil {
		n.logger.LogBuild(b.variant.String(), 0, 0, time.Since(start), err)
		return nil, err
	}
	n.logger.LogBuild(b.variant.String(), idx.Size(), idx.Dimension(), time.Since(start), nil)

	n.idx = idx
	return n, nil
}

// =============================================================================
// BruteForce Builder (Immutable)
// =============================================================================

// BruteForce creates a builder for the exact linear-scan index over the
// given cloud. Useful as a ground-truth oracle and for small clouds.
func BruteForce(c *cloud.Cloud) BruteForceBuilder {
	return BruteForceBuilder{cloud: c}
}

// BruteForceBuilder is an immutable fluent builder for creating brute-force
// Nabo instances.
type BruteForceBuilder struct {
	cloud   *cloud.Cloud
	logger  *Logger
	metrics MetricsCollector
}

// Logger sets the logger for the resulting instance.
func (b BruteForceBuilder) Logger(logger *Logger) BruteForceBuilder {
	b.logger = logger
	return b
}

// Metrics sets the metrics collector for the resulting instance.
func (b BruteForceBuilder) Metrics(metrics MetricsCollector) BruteForceBuilder {
	b.metrics = metrics
	return b
}

// Build returns the ready-to-query instance.
func (b BruteForceBuilder) Build() (*Nabo, error) {
	n := New(nil, func(o *Options) {
		if b.logger != nil {
			o.Logger = b.logger
		}
		if b.metrics != nil {
			o.Metrics = b.metrics
		}
	})

	start := time.Now()
	idx := bruteforce.New(b.cloud)

	n.metrics.RecordBuild(time.Since(start), nil)
	n.logger.LogBuild("BruteForce", idx.Size(), idx.Dimension(), time.Since(start), nil)

	n.idx = idx
	return n, nil
}
