package kdtree

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nabo/cloud"
	"github.com/hupe1980/nabo/index"
	"github.com/hupe1980/nabo/index/bruteforce"
	"github.com/hupe1980/nabo/internal/math32"
	"github.com/hupe1980/nabo/testutil"
)

var allVariants = []Variant{
	BalancedPointsInNodes,
	BalancedPointsInNodesQueue,
	BalancedPointsInLeaves,
	UnbalancedImplicitBounds,
	UnbalancedExplicitBounds,
}

func buildVariant(t *testing.T, c *cloud.Cloud, v Variant, optFns ...func(*Options)) index.Index {
	t.Helper()

	idx, err := New(c, append([]func(*Options){func(o *Options) {
		o.Variant = v
	}}, optFns...)...)
	require.NoError(t, err)
	return idx
}

func randomCloud(t *testing.T, rng *testutil.RNG, n, dims int) *cloud.Cloud {
	t.Helper()

	c, err := cloud.FromPoints(rng.UniformVectors(n, dims))
	require.NoError(t, err)
	return c
}

func squareCloud(t *testing.T) *cloud.Cloud {
	t.Helper()

	c, err := cloud.FromPoints([][]float32{{0, 0}, {10, 0}, {0, 10}, {10, 10}})
	require.NoError(t, err)
	return c
}

func TestKNNFixedScenarios(t *testing.T) {
	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, squareCloud(t), v)

			results, err := idx.KNN([]float32{1, 1}, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, 0, results[0].Index)
			assert.Equal(t, float32(2), results[0].Distance)

			results, err = idx.KNN([]float32{9, 9}, 2)
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, 3, results[0].Index)
			assert.Equal(t, float32(2), results[0].Distance)
			assert.Equal(t, float32(82), results[1].Distance)

			// All four corners are equidistant from the center; order among
			// ties is unspecified.
			results, err = idx.KNN([]float32{5, 5}, 4)
			require.NoError(t, err)
			require.Len(t, results, 4)

			got := make([]int, 0, 4)
			for _, r := range results {
				assert.Equal(t, float32(50), r.Distance)
				got = append(got, r.Index)
			}
			assert.ElementsMatch(t, []int{0, 1, 2, 3}, got)
		})
	}
}

func TestKNNMatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for _, tt := range []struct {
		n, dims, k int
	}{
		{n: 100, dims: 2, k: 5},
		{n: 500, dims: 3, k: 10},
		{n: 200, dims: 8, k: 7},
		{n: 50, dims: 1, k: 3},
	} {
		c := randomCloud(t, rng, tt.n, tt.dims)
		oracle := bruteforce.New(c)
		queries := rng.UniformVectors(20, tt.dims)

		for _, v := range allVariants {
			t.Run(fmt.Sprintf("%s/n=%d/d=%d", v, tt.n, tt.dims), func(t *testing.T) {
				idx := buildVariant(t, c, v)

				for _, q := range queries {
					want, err := oracle.KNN(q, tt.k, func(o *index.SearchOptions) {
						o.AllowSelfMatch = true
					})
					require.NoError(t, err)

					got, err := idx.KNN(q, tt.k, func(o *index.SearchOptions) {
						o.AllowSelfMatch = true
					})
					require.NoError(t, err)

					require.Len(t, got, len(want))
					for i := range got {
						// Distances must agree exactly; indices may differ
						// under ties, but the returned point must realize the
						// reported distance.
						assert.Equal(t, want[i].Distance, got[i].Distance)
						assert.Equal(t, got[i].Distance, math32.SquaredL2(q, c.Point(got[i].Index)))
					}
				}
			})
		}
	}
}

func TestKNNEpsilonBound(t *testing.T) {
	rng := testutil.NewRNG(42)

	c := randomCloud(t, rng, 400, 3)
	oracle := bruteforce.New(c)
	queries := rng.UniformVectors(20, 3)

	const k = 5

	for _, eps := range []float32{0, 0.1, 0.5, 1.0} {
		maxError2 := (1 + eps) * (1 + eps)

		for _, v := range allVariants {
			t.Run(fmt.Sprintf("%s/eps=%v", v, eps), func(t *testing.T) {
				idx := buildVariant(t, c, v)

				for _, q := range queries {
					want, err := oracle.KNN(q, k, func(o *index.SearchOptions) {
						o.AllowSelfMatch = true
					})
					require.NoError(t, err)

					got, err := idx.KNN(q, k, func(o *index.SearchOptions) {
						o.Epsilon = eps
						o.AllowSelfMatch = true
					})
					require.NoError(t, err)

					require.Len(t, got, k)
					for i := range got {
						assert.LessOrEqual(t, got[i].Distance, want[i].Distance*maxError2*(1+1e-5))
					}
				}
			})
		}
	}
}

func TestKNNSelfMatch(t *testing.T) {
	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, squareCloud(t), v)

			// Excluded by default.
			results, err := idx.KNN([]float32{10, 0}, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.NotEqual(t, 1, results[0].Index)
			assert.Greater(t, results[0].Distance, float32(0))

			// Included on request, at distance 0.
			results, err = idx.KNN([]float32{10, 0}, 1, func(o *index.SearchOptions) {
				o.AllowSelfMatch = true
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, 1, results[0].Index)
			assert.Equal(t, float32(0), results[0].Distance)
		})
	}
}

func TestKNNKGreaterThanSize(t *testing.T) {
	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, squareCloud(t), v)

			results, err := idx.KNN([]float32{0, 0}, 10, func(o *index.SearchOptions) {
				o.AllowSelfMatch = true
			})
			require.NoError(t, err)
			assert.Len(t, results, 4)
		})
	}
}

func TestKNNDuplicatePoints(t *testing.T) {
	points := [][]float32{
		{1, 1}, {1, 1}, {1, 1}, {1, 1},
		{5, 5}, {5, 5},
		{9, 9},
	}
	c, err := cloud.FromPoints(points)
	require.NoError(t, err)

	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, c, v)

			results, err := idx.KNN([]float32{1, 1}, 4, func(o *index.SearchOptions) {
				o.AllowSelfMatch = true
			})
			require.NoError(t, err)
			require.Len(t, results, 4)

			got := make([]int, 0, 4)
			for _, r := range results {
				assert.Equal(t, float32(0), r.Distance)
				got = append(got, r.Index)
			}
			assert.ElementsMatch(t, []int{0, 1, 2, 3}, got)
		})
	}
}

func TestKNNAllIdenticalPoints(t *testing.T) {
	points := make([][]float32, 16)
	for i := range points {
		points[i] = []float32{3, 3, 3}
	}
	c, err := cloud.FromPoints(points)
	require.NoError(t, err)

	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, c, v)

			results, err := idx.KNN([]float32{0, 0, 0}, 3)
			require.NoError(t, err)
			require.Len(t, results, 3)
			for _, r := range results {
				assert.Equal(t, float32(27), r.Distance)
			}
		})
	}
}

func TestKNNInvalidArguments(t *testing.T) {
	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, squareCloud(t), v)

			_, err := idx.KNN([]float32{1, 1}, 0)
			assert.ErrorIs(t, err, index.ErrInvalidK)

			_, err = idx.KNN([]float32{1, 1}, 1, func(o *index.SearchOptions) {
				o.Epsilon = -0.5
			})
			assert.ErrorIs(t, err, index.ErrInvalidEpsilon)

			_, err = idx.KNN([]float32{1, 1, 1}, 1)
			var dm *index.ErrDimensionMismatch
			require.ErrorAs(t, err, &dm)
			assert.Equal(t, 2, dm.Expected)
			assert.Equal(t, 3, dm.Actual)
		})
	}
}

func TestKNNStatistics(t *testing.T) {
	rng := testutil.NewRNG(7)
	c := randomCloud(t, rng, 200, 3)
	queries := rng.UniformVectors(10, 3)

	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, c, v)

			var sum uint64
			for _, q := range queries {
				_, err := idx.KNN(q, 3)
				require.NoError(t, err)

				snap := idx.Statistics().Snapshot()
				assert.Greater(t, snap.LastQueryVisitCount, uint64(0))
				sum += snap.LastQueryVisitCount
			}

			assert.Equal(t, sum, idx.Statistics().Snapshot().TotalVisitCount)
		})
	}
}

func TestKNNConcurrent(t *testing.T) {
	rng := testutil.NewRNG(1234)
	c := randomCloud(t, rng, 500, 4)
	oracle := bruteforce.New(c)

	const workers = 8

	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, c, v)

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				q := rng.UniformVectors(1, 4)[0]

				want, err := oracle.KNN(q, 5, func(o *index.SearchOptions) {
					o.AllowSelfMatch = true
				})
				require.NoError(t, err)

				wg.Add(1)
				go func() {
					defer wg.Done()

					for i := 0; i < 50; i++ {
						got, err := idx.KNN(q, 5, func(o *index.SearchOptions) {
							o.AllowSelfMatch = true
						})
						if !assert.NoError(t, err) || !assert.Len(t, got, len(want)) {
							return
						}
						for j := range got {
							assert.Equal(t, want[j].Distance, got[j].Distance)
						}
					}
				}()
			}
			wg.Wait()
		})
	}
}

// Every layout must index each cloud point exactly once.
func TestTreeCoversAllPoints(t *testing.T) {
	rng := testutil.NewRNG(99)
	c := randomCloud(t, rng, 137, 3)

	collect := func(t *testing.T, idx index.Index) []int {
		t.Helper()

		var got []int
		switch tr := idx.(type) {
		case *ptInNodesTree:
			for _, n := range tr.nodes {
				require.NotEqual(t, invalidNode, n.dim)
				got = append(got, int(n.index))
			}
		case *ptInLeavesTree:
			for _, n := range tr.nodes {
				if n.dim == leafNode {
					for _, i := range tr.perm[n.start : n.start+n.count] {
						got = append(got, i)
					}
				}
			}
		case *slidingTree:
			for _, n := range tr.nodes {
				if n.dim == leafNode {
					got = append(got, int(n.ptIndex))
				}
			}
		case *boundedTree:
			for _, n := range tr.nodes {
				if n.dim == leafNode {
					got = append(got, int(n.ptIndex))
				}
			}
		default:
			t.Fatalf("unexpected index type %T", idx)
		}
		return got
	}

	want := make([]int, c.Size())
	for i := range want {
		want[i] = i
	}

	for _, v := range allVariants {
		t.Run(v.String(), func(t *testing.T) {
			idx := buildVariant(t, c, v)
			assert.ElementsMatch(t, want, collect(t, idx))
		})
	}
}

func TestNewUnknownVariant(t *testing.T) {
	_, err := New(squareCloud(t), func(o *Options) {
		o.Variant = Variant(42)
	})
	assert.Error(t, err)
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "BalancedPointsInNodes", BalancedPointsInNodes.String())
	assert.Equal(t, "UnbalancedExplicitBounds", UnbalancedExplicitBounds.String())
	assert.Equal(t, "Unknown(42)", Variant(42).String())
}

func TestBucketSize(t *testing.T) {
	rng := testutil.NewRNG(5)
	c := randomCloud(t, rng, 300, 2)
	oracle := bruteforce.New(c)
	q := rng.UniformVectors(1, 2)[0]

	want, err := oracle.KNN(q, 4, func(o *index.SearchOptions) {
		o.AllowSelfMatch = true
	})
	require.NoError(t, err)

	for _, bucketSize := range []int{1, 2, 8, 64} {
		t.Run(fmt.Sprintf("BucketSize=%d", bucketSize), func(t *testing.T) {
			idx := buildVariant(t, c, BalancedPointsInLeaves, func(o *Options) {
				o.BucketSize = bucketSize
			})

			got, err := idx.KNN(q, 4, func(o *index.SearchOptions) {
				o.AllowSelfMatch = true
			})
			require.NoError(t, err)

			require.Len(t, got, len(want))
			for i := range got {
				assert.Equal(t, want[i].Distance, got[i].Distance)
			}

			tr, ok := idx.(*ptInLeavesTree)
			require.True(t, ok)
			for _, n := range tr.nodes {
				if n.dim == leafNode {
					assert.LessOrEqual(t, int(n.count), bucketSize)
				}
			}
		})
	}
}

func TestBalanceVariance(t *testing.T) {
	rng := testutil.NewRNG(17)
	c := randomCloud(t, rng, 250, 4)
	oracle := bruteforce.New(c)
	queries := rng.UniformVectors(10, 4)

	idx := buildVariant(t, c, BalancedPointsInLeaves, func(o *Options) {
		o.BalanceVariance = true
	})

	for _, q := range queries {
		want, err := oracle.KNN(q, 3, func(o *index.SearchOptions) {
			o.AllowSelfMatch = true
		})
		require.NoError(t, err)

		got, err := idx.KNN(q, 3, func(o *index.SearchOptions) {
			o.AllowSelfMatch = true
		})
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for i := range got {
			assert.Equal(t, want[i].Distance, got[i].Distance)
		}
	}
}

func TestLeftSubtreeSize(t *testing.T) {
	for _, tt := range []struct {
		n, want int
	}{
		{n: 1, want: 0},
		{n: 2, want: 1},
		{n: 3, want: 1},
		{n: 4, want: 2},
		{n: 5, want: 3},
		{n: 6, want: 3},
		{n: 7, want: 3},
		{n: 8, want: 4},
		{n: 15, want: 7},
	} {
		assert.Equal(t, tt.want, leftSubtreeSize(tt.n), "n=%d", tt.n)
	}
}

func TestSlidingMidpoint(t *testing.T) {
	c, err := cloud.FromPoints([][]float32{{0}, {1}, {2}, {9}})
	require.NoError(t, err)

	t.Run("MidpointSplit", func(t *testing.T) {
		subset := []int{0, 1, 2, 3}
		cut, mid := slidingMidpoint(c, subset, 0, 0, 9, 0, 9)
		assert.Equal(t, float32(4.5), cut)
		assert.Equal(t, 3, mid)
	})

	t.Run("SlideUp", func(t *testing.T) {
		// Box midpoint at or below the lowest coordinate: cut slides to the
		// smallest coordinate above it so the left side is non-empty.
		subset := []int{0, 1, 2, 3}
		cut, mid := slidingMidpoint(c, subset, 0, -9, 9, 0, 9)
		assert.Equal(t, float32(1), cut)
		assert.Equal(t, 1, mid)
	})

	t.Run("SlideDown", func(t *testing.T) {
		subset := []int{0, 1, 2, 3}
		cut, mid := slidingMidpoint(c, subset, 0, 9, 11, 0, 9)
		assert.Equal(t, float32(9), cut)
		assert.Equal(t, 3, mid)
	})

	t.Run("Degenerate", func(t *testing.T) {
		d, err := cloud.FromPoints([][]float32{{5}, {5}, {5}, {5}})
		require.NoError(t, err)

		cut, mid := slidingMidpoint(d, []int{0, 1, 2, 3}, 0, 5, 5, 5, 5)
		assert.Equal(t, float32(5), cut)
		assert.Equal(t, 2, mid)
	})
}

func TestTreeSlots(t *testing.T) {
	assert.Equal(t, 1, treeSlots(8, 8))
	assert.Equal(t, 3, treeSlots(9, 8))
	assert.Equal(t, 7, treeSlots(25, 8))
	assert.Equal(t, 255, treeSlots(1000, 8))
}
