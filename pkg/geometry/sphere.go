package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center r3.Vector
	Radius float64
	Index  int
}

// Ensure Sphere implements the primitive capability set. It does not split;
// spatial splits fall back to bisecting its reference box.
var _ core.Primitive = (*Sphere)(nil)

// NewSphere creates a new sphere
func NewSphere(center r3.Vector, radius float64, index int) *Sphere {
	return &Sphere{Center: center, Radius: radius, Index: index}
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := r3.Vector{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return core.NewAABB(s.Center.Sub(radius), s.Center.Add(radius))
}

// Centroid returns the center of the sphere
func (s *Sphere) Centroid() r3.Vector {
	return s.Center
}

// SurfaceArea returns the surface area of the sphere
func (s *Sphere) SurfaceArea() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius
}

// SignedVolume returns the volume of the sphere
func (s *Sphere) SignedVolume() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius * s.Radius / 3.0
}

// Intersect tests if a ray intersects the sphere. With countHits both entry
// and exit points inside the ray's range are reported.
func (s *Sphere) Intersect(r *core.Ray, hits *[]core.Interaction, checkOcclusion, countHits bool) int {
	oc := r.Origin.Sub(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := r.Direction.Dot(r.Direction)
	halfB := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0
	}

	sqrtD := math.Sqrt(discriminant)
	roots := [2]float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a}

	found := 0
	for _, root := range roots {
		if root < r.TMin || root > r.TMax {
			continue
		}
		if checkOcclusion {
			return 1
		}

		point := r.At(root)
		*hits = append(*hits, core.Interaction{
			D:              root,
			P:              point,
			N:              point.Sub(s.Center).Mul(1.0 / s.Radius),
			PrimitiveIndex: s.Index,
		})
		found++

		if !countHits {
			break // closest root only
		}
	}
	return found
}

// ClosestPoint finds the point on the sphere surface closest to the query
// center, reporting it only if it lies within the query sphere
func (s *Sphere) ClosestPoint(sp *core.BoundingSphere, i *core.Interaction) bool {
	toCenter := sp.Center.Sub(s.Center)
	dist := toCenter.Norm()

	// Query at the exact center: every surface point is equidistant
	n := r3.Vector{X: 1, Y: 0, Z: 0}
	if dist > 0 {
		n = toCenter.Mul(1.0 / dist)
	}

	d := math.Abs(dist - s.Radius)
	if d*d > sp.R2 {
		return false
	}

	i.D = d
	i.P = s.Center.Add(n.Mul(s.Radius))
	i.N = n
	i.PrimitiveIndex = s.Index
	return true
}
