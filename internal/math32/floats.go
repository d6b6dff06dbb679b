// Package math32 provides float32 helpers shared by the index
// implementations. This is an internal package - external users should not
// depend on it.
package math32

import "math"

var inf = float32(math.Inf(1))

// Inf returns positive infinity as a float32.
func Inf() float32 {
	return inf
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two
// vectors. Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}

	return distance
}
