// Package testutil provides testing utilities for Nabo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating seeded random point clouds and
// query vectors.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 3) // uniform [0, 1)
//
//	buf := make([]float32, 3)
//	rng.FillUniformRange(buf, -1, 1)
package testutil
