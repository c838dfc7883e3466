package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// Ray represents a ray with an origin, direction and a valid parametric range.
// TMax is mutable: queries clamp it as closer hits are found.
type Ray struct {
	Origin       r3.Vector
	Direction    r3.Vector
	InvDirection r3.Vector // Precomputed reciprocal direction for slab tests
	TMin         float64
	TMax         float64
}

// NewRay creates a new ray with the range [0, +inf)
func NewRay(origin, direction r3.Vector) Ray {
	return NewRayWithRange(origin, direction, 0, math.Inf(1))
}

// NewRayWithRange creates a new ray with an explicit parametric range
func NewRayWithRange(origin, direction r3.Vector, tMin, tMax float64) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		InvDirection: r3.Vector{
			X: 1.0 / direction.X,
			Y: 1.0 / direction.Y,
			Z: 1.0 / direction.Z,
		},
		TMin: tMin,
		TMax: tMax,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}
