package core

import "github.com/golang/geo/r3"

// Primitive is the capability set a geometric entity must expose to be
// indexed and queried.
type Primitive interface {
	// BoundingBox returns a finite axis-aligned box enclosing the primitive
	BoundingBox() AABB

	// Centroid returns a representative point inside the bounding box
	Centroid() r3.Vector

	// SurfaceArea returns the primitive's surface area (length in 2D)
	SurfaceArea() float64

	// SignedVolume returns the signed volume contribution; may be negative
	SignedVolume() float64

	// Intersect tests the ray against the primitive. Hits within
	// [r.TMin, r.TMax] are appended to *hits and their count returned.
	// With checkOcclusion, returns 1 on the first hit and appends nothing.
	// Without countHits at most the closest hit is appended.
	Intersect(r *Ray, hits *[]Interaction, checkOcclusion, countHits bool) int

	// ClosestPoint reports the point on the primitive closest to s.Center,
	// but only if it lies within the sphere. Does not modify s.
	ClosestPoint(s *BoundingSphere, i *Interaction) bool
}

// SplittablePrimitive is implemented by primitives that can clip themselves
// against an axis-aligned plane, yielding the bounding boxes of the two
// halves. Primitives without this capability degrade spatial splits to plain
// box bisection.
type SplittablePrimitive interface {
	Primitive

	// Split clips the primitive to the half-spaces {x_dim <= coord} and
	// {x_dim >= coord}. Both returned boxes are clipped to parentBox.
	Split(dim int, coord float64, parentBox AABB) (left, right AABB)
}

// BoundaryHintedPrimitive is implemented by primitives whose closest point is
// side-dependent (signed-distance queries). The hint direction disambiguates.
type BoundaryHintedPrimitive interface {
	Primitive

	ClosestPointWithHint(s *BoundingSphere, boundaryHint r3.Vector, i *Interaction) bool
}

// Aggregate is a primitive collection that accelerates proximity queries.
// Queries may start at an interior node for spatially coherent workloads.
type Aggregate interface {
	Primitive

	// IntersectFromNode intersects the ray with the aggregate, starting the
	// traversal at the given node. nodesVisited, when non-nil, is
	// incremented for every node or primitive examined.
	IntersectFromNode(r *Ray, hits *[]Interaction, nodeStartIndex int,
		nodesVisited *int, checkOcclusion, countHits bool) int

	// FindClosestPointFromNode finds the closest point on the aggregate to
	// s.Center within the sphere, starting the traversal at the given node.
	// On success s.R2 has been shrunk to the squared distance found.
	FindClosestPointFromNode(s *BoundingSphere, i *Interaction, nodeStartIndex int,
		boundaryHint r3.Vector, nodesVisited *int) bool
}

// IgnoreFilter lets callers exclude primitives from queries by index
type IgnoreFilter func(primitiveIndex int) bool
