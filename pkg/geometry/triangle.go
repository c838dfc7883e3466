package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 r3.Vector
	Index      int // Position of this triangle in the aggregate's primitive list

	normal r3.Vector // Cached unit normal
	bbox   core.AABB // Cached bounding box
}

// Ensure Triangle supports spatial splits.
var _ core.SplittablePrimitive = (*Triangle)(nil)

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 r3.Vector, index int) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, Index: index}
	t.normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	return t
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Centroid returns the barycenter of the triangle
func (t *Triangle) Centroid() r3.Vector {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// SurfaceArea returns the area of the triangle
func (t *Triangle) SurfaceArea() float64 {
	return 0.5 * t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)).Norm()
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// triangle and the origin
func (t *Triangle) SignedVolume() float64 {
	return t.V0.Dot(t.V1.Cross(t.V2)) / 6.0
}

// Normal returns the triangle's unit normal vector
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Intersect tests if a ray intersects the triangle using the Möller-Trumbore
// algorithm
func (t *Triangle) Intersect(r *core.Ray, hits *[]core.Interaction, checkOcclusion, countHits bool) int {
	const epsilon = 1e-12

	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, the ray is parallel to the triangle
	// plane; it can still hit the boundary when it lies in the plane
	if a > -epsilon && a < epsilon {
		return t.intersectCoplanar(r, hits, checkOcclusion)
	}

	f := 1.0 / a
	s := r.Origin.Sub(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0
	}

	d := f * edge2.Dot(q)
	if d < r.TMin || d > r.TMax {
		return 0
	}

	if checkOcclusion {
		return 1
	}

	*hits = append(*hits, core.Interaction{
		D:              d,
		P:              r.At(d),
		N:              t.normal,
		UV:             core.NewVec2(u, v),
		PrimitiveIndex: t.Index,
	})
	return 1
}

// intersectCoplanar handles a ray lying in the triangle's plane by reporting
// its nearest crossing of the triangle boundary
func (t *Triangle) intersectCoplanar(r *core.Ray, hits *[]core.Interaction, checkOcclusion bool) int {
	if math.Abs(t.normal.Dot(r.Origin.Sub(t.V0))) > 1e-9 {
		return 0
	}

	// work in the two axes where the triangle has the most extent
	k := dominantAxis(t.normal)
	i1, i2 := (k+1)%3, (k+2)%3

	dx := core.Component(r.Direction, i1)
	dy := core.Component(r.Direction, i2)

	best := math.Inf(1)
	vertices := [3]r3.Vector{t.V0, t.V1, t.V2}
	for j := 0; j < 3; j++ {
		a := vertices[j]
		b := vertices[(j+1)%3]
		ex := core.Component(b, i1) - core.Component(a, i1)
		ey := core.Component(b, i2) - core.Component(a, i2)

		denom := dx*ey - dy*ex
		if math.Abs(denom) < 1e-12 {
			continue // collinear edge
		}

		wx := core.Component(a, i1) - core.Component(r.Origin, i1)
		wy := core.Component(a, i2) - core.Component(r.Origin, i2)
		d := (wx*ey - wy*ex) / denom
		u := (wx*dy - wy*dx) / denom
		if u < 0 || u > 1 || d < r.TMin || d > r.TMax {
			continue
		}
		if d < best {
			best = d
		}
	}

	if math.IsInf(best, 1) {
		return 0
	}
	if checkOcclusion {
		return 1
	}

	*hits = append(*hits, core.Interaction{
		D:              best,
		P:              r.At(best),
		N:              t.normal,
		PrimitiveIndex: t.Index,
	})
	return 1
}

func dominantAxis(v r3.Vector) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	if ax > ay && ax > az {
		return 0
	}
	if ay > az {
		return 1
	}
	return 2
}

// ClosestPoint finds the point on the triangle closest to the sphere center,
// reporting it only if it lies within the sphere
func (t *Triangle) ClosestPoint(s *core.BoundingSphere, i *core.Interaction) bool {
	p, uv := closestPointOnTriangle(t.V0, t.V1, t.V2, s.Center)
	d2 := p.Sub(s.Center).Norm2()
	if d2 > s.R2 {
		return false
	}

	i.D = math.Sqrt(d2)
	i.P = p
	i.N = t.normal
	i.UV = uv
	i.PrimitiveIndex = t.Index
	return true
}

// Split clips the triangle against the plane {x_dim = coord} and returns the
// bounding boxes of the two clipped polygons, both restricted to parentBox
func (t *Triangle) Split(dim int, coord float64, parentBox core.AABB) (left, right core.AABB) {
	left = core.NewEmptyAABB()
	right = core.NewEmptyAABB()

	vertices := [3]r3.Vector{t.V0, t.V1, t.V2}
	for j := 0; j < 3; j++ {
		a := vertices[j]
		b := vertices[(j+1)%3]
		cA := core.Component(a, dim)
		cB := core.Component(b, dim)

		if cA <= coord {
			left = left.ExpandPoint(a)
		}
		if cA >= coord {
			right = right.ExpandPoint(a)
		}

		// Edge crosses the plane: both halves gain the crossing point
		if (cA < coord && cB > coord) || (cA > coord && cB < coord) {
			u := (coord - cA) / (cB - cA)
			p := a.Add(b.Sub(a).Mul(u))
			p = core.SetComponent(p, dim, coord)
			left = left.ExpandPoint(p)
			right = right.ExpandPoint(p)
		}
	}

	left = left.Intersection(parentBox)
	right = right.Intersection(parentBox)
	return left, right
}

// closestPointOnTriangle computes the closest point to p on triangle (a, b, c)
// by classifying p against the triangle's Voronoi regions. Returns the point
// and its barycentric coordinates (u along ab, v along ac).
func closestPointOnTriangle(a, b, c, p r3.Vector) (r3.Vector, core.Vec2) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, core.NewVec2(0, 0) // vertex region a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, core.NewVec2(1, 0) // vertex region b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		u := d1 / (d1 - d3)
		return a.Add(ab.Mul(u)), core.NewVec2(u, 0) // edge region ab
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, core.NewVec2(0, 1) // vertex region c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		v := d2 / (d2 - d6)
		return a.Add(ac.Mul(v)), core.NewVec2(0, v) // edge region ac
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), core.NewVec2(1-w, w) // edge region bc
	}

	// Interior region
	denom := 1.0 / (va + vb + vc)
	u := vb * denom
	v := vc * denom
	return a.Add(ab.Mul(u)).Add(ac.Mul(v)), core.NewVec2(u, v)
}
