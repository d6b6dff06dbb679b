// Package cloud provides the immutable point-cloud matrix searched by the
// index implementations.
//
// A Cloud is a D×N matrix of float32 coordinates (each point is one column
// of the conceptual matrix, stored contiguously) together with its derived
// axis-aligned bounding box. Clouds are fixed at construction: builders and
// query engines share them read-only, which is what makes lock-free
// concurrent queries safe.
package cloud
