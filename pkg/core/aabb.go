package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min r3.Vector // Minimum corner
	Max r3.Vector // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max r3.Vector) AABB {
	return AABB{Min: min, Max: max}
}

// NewEmptyAABB creates the empty box, the identity element for Union
func NewEmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...r3.Vector) AABB {
	if len(points) == 0 {
		return NewEmptyAABB()
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box = box.ExpandPoint(point)
	}
	return box
}

// ExpandPoint returns an AABB grown to include the given point
func (aabb AABB) ExpandPoint(p r3.Vector) AABB {
	return AABB{Min: MinVector(aabb.Min, p), Max: MaxVector(aabb.Max, p)}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: MinVector(aabb.Min, other.Min),
		Max: MaxVector(aabb.Max, other.Max),
	}
}

// Intersection returns the overlap of two AABBs. The result is invalid
// when the boxes are disjoint; check IsValid before using its measures.
func (aabb AABB) Intersection(other AABB) AABB {
	return AABB{
		Min: MaxVector(aabb.Min, other.Min),
		Max: MinVector(aabb.Max, other.Max),
	}
}

// Contains reports whether the point lies inside the box (boundary inclusive)
func (aabb AABB) Contains(p r3.Vector) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// ContainsBox reports whether other lies entirely inside the box
func (aabb AABB) ContainsBox(other AABB) bool {
	return aabb.Contains(other.Min) && aabb.Contains(other.Max)
}

// Center returns the center point of the AABB
func (aabb AABB) Center() r3.Vector {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Extent returns the size of the AABB along each axis
func (aabb AABB) Extent() r3.Vector {
	return aabb.Max.Sub(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB; 0 for an invalid box
func (aabb AABB) SurfaceArea() float64 {
	if !aabb.IsValid() {
		return 0
	}
	e := aabb.Extent()
	return 2.0 * (e.X*e.Y + e.Y*e.Z + e.Z*e.X)
}

// Volume returns the volume of the AABB; 0 for an invalid box
func (aabb AABB) Volume() float64 {
	if !aabb.IsValid() {
		return 0
	}
	e := aabb.Extent()
	return e.X * e.Y * e.Z
}

// MaxDimension returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) MaxDimension() int {
	e := aabb.Extent()
	if e.X > e.Y && e.X > e.Z {
		return 0
	}
	if e.Y > e.Z {
		return 1
	}
	return 2
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// IntersectRay tests the ray against the box using the slab method and
// returns the parametric entry and exit distances. The entry distance is
// clamped below by the ray's TMin.
func (aabb AABB) IntersectRay(r *Ray) (tNear, tFar float64, hit bool) {
	tNear = r.TMin
	tFar = r.TMax

	for axis := 0; axis < 3; axis++ {
		min := Component(aabb.Min, axis)
		max := Component(aabb.Max, axis)
		origin := Component(r.Origin, axis)
		direction := Component(r.Direction, axis)

		// Handle parallel rays (direction near zero)
		if math.Abs(direction) < 1e-12 {
			if origin < min || origin > max {
				return 0, 0, false
			}
			continue
		}

		invDirection := Component(r.InvDirection, axis)
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, 0, false
		}
	}

	return tNear, tFar, true
}

// DistanceSquared returns the squared distance from the point to the box;
// 0 when the point lies inside.
func (aabb AABB) DistanceSquared(p r3.Vector) float64 {
	d2 := 0.0
	for axis := 0; axis < 3; axis++ {
		v := Component(p, axis)
		if lo := Component(aabb.Min, axis); v < lo {
			d2 += (lo - v) * (lo - v)
		} else if hi := Component(aabb.Max, axis); v > hi {
			d2 += (v - hi) * (v - hi)
		}
	}
	return d2
}
