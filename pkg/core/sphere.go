package core

import "github.com/golang/geo/r3"

// BoundingSphere is a closest-point query: a center and a squared search
// radius. Traversals shrink R2 monotonically as closer points are found.
type BoundingSphere struct {
	Center r3.Vector
	R2     float64 // Squared radius
}

// NewBoundingSphere creates a bounding sphere from a center and radius
func NewBoundingSphere(center r3.Vector, radius float64) BoundingSphere {
	return BoundingSphere{Center: center, R2: radius * radius}
}
