package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// Segment represents a line segment embedded in the z=0 plane. Ray queries
// against segments are planar; closest-point queries work in full 3D.
type Segment struct {
	A, B  r3.Vector
	Index int

	bbox core.AABB
}

// Ensure Segment supports spatial splits.
var _ core.SplittablePrimitive = (*Segment)(nil)

// NewSegment creates a new segment from two endpoints
func NewSegment(a, b r3.Vector, index int) *Segment {
	return &Segment{A: a, B: b, Index: index, bbox: core.NewAABBFromPoints(a, b)}
}

// BoundingBox returns the axis-aligned bounding box for this segment
func (s *Segment) BoundingBox() core.AABB {
	return s.bbox
}

// Centroid returns the midpoint of the segment
func (s *Segment) Centroid() r3.Vector {
	return s.A.Add(s.B).Mul(0.5)
}

// SurfaceArea returns the length of the segment
func (s *Segment) SurfaceArea() float64 {
	return s.B.Sub(s.A).Norm()
}

// SignedVolume returns the signed area of the triangle spanned by the segment
// and the origin, in the z=0 plane
func (s *Segment) SignedVolume() float64 {
	return 0.5 * (s.A.X*s.B.Y - s.B.X*s.A.Y)
}

// Normal returns the in-plane unit normal of the segment
func (s *Segment) Normal() r3.Vector {
	e := s.B.Sub(s.A)
	n := r3.Vector{X: e.Y, Y: -e.X, Z: 0}
	return n.Normalize()
}

// Intersect tests an in-plane ray against the segment
func (s *Segment) Intersect(r *core.Ray, hits *[]core.Interaction, checkOcclusion, countHits bool) int {
	const epsilon = 1e-12

	e := s.B.Sub(s.A)
	denom := r.Direction.X*e.Y - r.Direction.Y*e.X
	if math.Abs(denom) < epsilon {
		return 0 // parallel
	}

	oa := s.A.Sub(r.Origin)
	d := (oa.X*e.Y - oa.Y*e.X) / denom
	u := (oa.X*r.Direction.Y - oa.Y*r.Direction.X) / denom
	if u < 0 || u > 1 || d < r.TMin || d > r.TMax {
		return 0
	}

	if checkOcclusion {
		return 1
	}

	*hits = append(*hits, core.Interaction{
		D:              d,
		P:              s.A.Add(e.Mul(u)),
		N:              s.Normal(),
		UV:             core.NewVec2(u, 0),
		PrimitiveIndex: s.Index,
	})
	return 1
}

// ClosestPoint finds the point on the segment closest to the sphere center,
// reporting it only if it lies within the sphere
func (s *Segment) ClosestPoint(sp *core.BoundingSphere, i *core.Interaction) bool {
	e := s.B.Sub(s.A)
	u := 0.0
	if len2 := e.Norm2(); len2 > 0 {
		u = math.Max(0, math.Min(1, sp.Center.Sub(s.A).Dot(e)/len2))
	}

	p := s.A.Add(e.Mul(u))
	d2 := p.Sub(sp.Center).Norm2()
	if d2 > sp.R2 {
		return false
	}

	i.D = math.Sqrt(d2)
	i.P = p
	i.N = s.Normal()
	i.UV = core.NewVec2(u, 0)
	i.PrimitiveIndex = s.Index
	return true
}

// Split cuts the segment at the plane {x_dim = coord} and returns the
// bounding boxes of the two pieces, both restricted to parentBox
func (s *Segment) Split(dim int, coord float64, parentBox core.AABB) (left, right core.AABB) {
	left = core.NewEmptyAABB()
	right = core.NewEmptyAABB()

	cA := core.Component(s.A, dim)
	cB := core.Component(s.B, dim)
	if cA <= coord {
		left = left.ExpandPoint(s.A)
	}
	if cA >= coord {
		right = right.ExpandPoint(s.A)
	}
	if cB <= coord {
		left = left.ExpandPoint(s.B)
	}
	if cB >= coord {
		right = right.ExpandPoint(s.B)
	}

	if (cA < coord && cB > coord) || (cA > coord && cB < coord) {
		u := (coord - cA) / (cB - cA)
		p := s.A.Add(s.B.Sub(s.A).Mul(u))
		p = core.SetComponent(p, dim, coord)
		left = left.ExpandPoint(p)
		right = right.ExpandPoint(p)
	}

	return left.Intersection(parentBox), right.Intersection(parentBox)
}
