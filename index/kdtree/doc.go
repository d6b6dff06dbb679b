// Package kdtree implements exact and epsilon-approximate k-nearest-neighbor
// search over static point clouds using kd-trees.
//
// Five tree layouts are available, selected through Options.Variant. They
// return the same neighbors (up to tie order) and differ only in memory
// layout, build strategy, and traversal order:
//
//   - BalancedPointsInNodes: one point per node, implicit complete tree,
//     depth-first search.
//   - BalancedPointsInNodesQueue: same layout, best-first search through a
//     priority queue.
//   - BalancedPointsInLeaves: median splits with bucketed leaves over a
//     shared permutation array.
//   - UnbalancedImplicitBounds: sliding-midpoint splits, bounds reconstructed
//     during descent.
//   - UnbalancedExplicitBounds: sliding-midpoint splits with per-node bounds
//     stored at build time.
//
// Trees are immutable after construction and safe for concurrent queries.
//
// Example:
//
//	c, err := cloud.New(data, 3)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	idx, err := kdtree.New(c, func(o *kdtree.Options) {
//		o.Variant = kdtree.BalancedPointsInLeaves
//		o.BucketSize = 16
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := idx.KNN(query, 5)
package kdtree
