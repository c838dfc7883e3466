package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vec2 represents a 2D vector (for barycentric/parametric coordinates)
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Component returns the coordinate of v along the given axis (0=X, 1=Y, 2=Z)
func Component(v r3.Vector, dim int) float64 {
	switch dim {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// SetComponent returns a copy of v with the coordinate along the given axis replaced
func SetComponent(v r3.Vector, dim int, c float64) r3.Vector {
	switch dim {
	case 0:
		v.X = c
	case 1:
		v.Y = c
	default:
		v.Z = c
	}
	return v
}

// MinVector returns the component-wise minimum of two vectors
func MinVector(a, b r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		Z: math.Min(a.Z, b.Z),
	}
}

// MaxVector returns the component-wise maximum of two vectors
func MaxVector(a, b r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.Max(a.X, b.X),
		Y: math.Max(a.Y, b.Y),
		Z: math.Max(a.Z, b.Z),
	}
}
