package accel

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// Baseline answers proximity queries by scanning every primitive. It exists
// as the correctness reference for the SBVH and for tiny primitive sets where
// tree construction is not worth it.
type Baseline struct {
	primitives []core.Primitive
	ignore     core.IgnoreFilter
}

// Ensure Baseline implements the Aggregate interface.
var _ core.Aggregate = (*Baseline)(nil)

// NewBaseline creates a linear-scan aggregate over the primitives
func NewBaseline(primitives []core.Primitive) *Baseline {
	return &Baseline{primitives: primitives}
}

// SetIgnoreFilter installs a predicate excluding primitives from queries
func (b *Baseline) SetIgnoreFilter(f core.IgnoreFilter) {
	b.ignore = f
}

// BoundingBox returns the union of all primitive boxes
func (b *Baseline) BoundingBox() core.AABB {
	box := core.NewEmptyAABB()
	for _, p := range b.primitives {
		box = box.Union(p.BoundingBox())
	}
	return box
}

// Centroid returns the average of the primitive centroids
func (b *Baseline) Centroid() r3.Vector {
	c := r3.Vector{}
	if len(b.primitives) == 0 {
		return c
	}
	for _, p := range b.primitives {
		c = c.Add(p.Centroid())
	}
	return c.Mul(1.0 / float64(len(b.primitives)))
}

// SurfaceArea returns the summed surface area of the primitives
func (b *Baseline) SurfaceArea() float64 {
	area := 0.0
	for _, p := range b.primitives {
		area += p.SurfaceArea()
	}
	return area
}

// SignedVolume returns the summed signed volume of the primitives
func (b *Baseline) SignedVolume() float64 {
	volume := 0.0
	for _, p := range b.primitives {
		volume += p.SignedVolume()
	}
	return volume
}

// Intersect scans all primitives for ray intersections
func (b *Baseline) Intersect(r *core.Ray, hits *[]core.Interaction, checkOcclusion, countHits bool) int {
	return b.IntersectFromNode(r, hits, 0, nil, checkOcclusion, countHits)
}

// ClosestPoint scans all primitives for the closest point to the sphere center
func (b *Baseline) ClosestPoint(s *core.BoundingSphere, i *core.Interaction) bool {
	return b.FindClosestPointFromNode(s, i, 0, r3.Vector{}, nil)
}

// IntersectFromNode scans all primitives; the start node is ignored since
// there is no tree
func (b *Baseline) IntersectFromNode(r *core.Ray, hits *[]core.Interaction, nodeStartIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) int {

	visited := 0
	var closest core.Interaction
	haveClosest := false
	var scratch []core.Interaction

	for pIdx, p := range b.primitives {
		if b.ignore != nil && b.ignore(pIdx) {
			continue
		}
		visited++

		if checkOcclusion {
			if p.Intersect(r, hits, true, false) > 0 {
				if nodesVisited != nil {
					*nodesVisited += visited
				}
				return 1
			}
		} else if countHits {
			p.Intersect(r, hits, false, true)
		} else {
			scratch = scratch[:0]
			if p.Intersect(r, &scratch, false, false) > 0 {
				h := scratch[0]
				if !haveClosest || h.D < closest.D {
					closest = h
					haveClosest = true
					r.TMax = math.Min(r.TMax, h.D)
				}
			}
		}
	}

	if nodesVisited != nil {
		*nodesVisited += visited
	}
	if checkOcclusion {
		return 0
	}
	if countHits {
		core.SortInteractions(*hits)
		*hits = core.RemoveDuplicates(*hits)
		return len(*hits)
	}
	if haveClosest {
		*hits = append((*hits)[:0], closest)
		return 1
	}
	return 0
}

// FindClosestPointFromNode scans all primitives, shrinking the query sphere
// as closer points are found
func (b *Baseline) FindClosestPointFromNode(s *core.BoundingSphere, i *core.Interaction,
	nodeStartIndex int, boundaryHint r3.Vector, nodesVisited *int) bool {

	visited := 0
	found := false

	for pIdx, p := range b.primitives {
		if b.ignore != nil && b.ignore(pIdx) {
			continue
		}
		visited++

		var c core.Interaction
		ok := false
		if hinted, isHinted := p.(core.BoundaryHintedPrimitive); isHinted {
			ok = hinted.ClosestPointWithHint(s, boundaryHint, &c)
		} else {
			ok = p.ClosestPoint(s, &c)
		}

		// keep the closest point only
		if ok {
			found = true
			s.R2 = math.Min(s.R2, c.D*c.D)
			*i = c
		}
	}

	if nodesVisited != nil {
		*nodesVisited += visited
	}
	return found
}
