// Package nabo provides exact and approximate k-nearest-neighbor search for
// low-dimensional point clouds.
//
// Nabo builds a static index over a point cloud once and then answers
// k-nearest-neighbor queries against it. Five kd-tree layouts and a
// brute-force baseline are available; all of them return squared Euclidean
// distances and support epsilon-approximate search, where each returned
// distance is within a (1+epsilon) factor of the true nearest distance.
//
// # Quick Start
//
//	c, _ := cloud.FromPoints(points)
//
//	db, _ := nabo.KDTree(c).Build()
//	results, _ := db.KNN(query, 5)
//	for _, r := range results {
//	    fmt.Println(r.Index, r.Distance)
//	}
//
// # Choosing an Index
//
//	// Default: sliding-midpoint kd-tree, the fastest on most data.
//	db, _ := nabo.KDTree(c).Build()
//
//	// Bucketed median-split tree, tunable leaf size.
//	db, _ := nabo.KDTree(c).BalancedPointsInLeaves().BucketSize(16).Build()
//
//	// Exact linear scan, useful as a ground-truth oracle.
//	db, _ := nabo.BruteForce(c).Build()
//
// # Approximate Search
//
//	// Trade accuracy for speed: distances within (1+0.1) of optimal.
//	results, _ := db.Search(query).KNN(5).Epsilon(0.1).Execute()
//
// # Batch Queries
//
//	// Many queries against one immutable index, fanned out over all cores.
//	all, _ := db.KNNBatch(ctx, queries, 5)
//
// Indexes are immutable after Build and safe for unbounded concurrent
// queries.
package nabo
