// Package accel provides aggregates that accelerate ray intersection and
// closest-point queries over collections of geometric primitives: a
// linear-scan baseline and a split bounding volume hierarchy.
package accel

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// MaxDepth bounds tree depth; recursion and traversal scratch are sized to it
const MaxDepth = 64

// SbvhNode is one node of the flattened tree. Nodes are stored depth-first:
// an internal node's left child is the next node in the array and its right
// child is Offset nodes ahead. For leaves, Offset indexes the first entry of
// the node's range in the reference array. NReferences == 0 marks an
// internal node.
type SbvhNode struct {
	Box         core.AABB
	Offset      int32
	NReferences int32
}

// IsLeaf reports whether the node holds primitive references
func (n *SbvhNode) IsLeaf() bool {
	return n.NReferences > 0
}

// Sbvh is a split bounding volume hierarchy: a BVH whose construction may
// duplicate primitive references across subtrees to reduce sibling overlap.
// It is immutable after construction; queries are safe to run concurrently.
type Sbvh struct {
	opts       BuildOptions
	primitives []core.Primitive
	ignore     core.IgnoreFilter

	flatTree   []SbvhNode
	references []int

	nNodes     int
	nLeafs     int
	maxDepth   int
	depthGuess int

	rootSurfaceArea float64
	rootVolume      float64
}

// Ensure Sbvh implements the Aggregate interface.
var _ core.Aggregate = (*Sbvh)(nil)

// traversalEntry pairs a node index with the query's distance to its box
type traversalEntry struct {
	node     int32
	distance float64
}

// NewSbvh builds an SBVH over the primitives. The primitive slice is not
// copied; it must stay alive and unchanged for the lifetime of the tree.
func NewSbvh(primitives []core.Primitive, opts BuildOptions) (*Sbvh, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Sbvh{opts: opts, primitives: primitives}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetIgnoreFilter installs a predicate excluding primitives from queries
func (s *Sbvh) SetIgnoreFilter(f core.IgnoreFilter) {
	s.ignore = f
}

// Nodes returns the flattened node array
func (s *Sbvh) Nodes() []SbvhNode {
	return s.flatTree
}

// References returns the primitive-index reference array leaves point into
func (s *Sbvh) References() []int {
	return s.references
}

// BoundingBox returns the root bounding box
func (s *Sbvh) BoundingBox() core.AABB {
	if len(s.primitives) == 0 {
		return core.NewEmptyAABB()
	}
	return s.flatTree[0].Box
}

// Centroid returns the centroid of the root bounding box
func (s *Sbvh) Centroid() r3.Vector {
	return s.BoundingBox().Center()
}

// SurfaceArea returns the summed surface area of the primitives
func (s *Sbvh) SurfaceArea() float64 {
	area := 0.0
	for _, p := range s.primitives {
		area += p.SurfaceArea()
	}
	return area
}

// SignedVolume returns the summed signed volume of the primitives
func (s *Sbvh) SignedVolume() float64 {
	volume := 0.0
	for _, p := range s.primitives {
		volume += p.SignedVolume()
	}
	return volume
}

// Intersect runs a ray query from the root
func (s *Sbvh) Intersect(r *core.Ray, hits *[]core.Interaction, checkOcclusion, countHits bool) int {
	return s.IntersectFromNode(r, hits, 0, nil, checkOcclusion, countHits)
}

// ClosestPoint runs a closest-point query from the root
func (s *Sbvh) ClosestPoint(sp *core.BoundingSphere, i *core.Interaction) bool {
	return s.FindClosestPointFromNode(sp, i, 0, r3.Vector{}, nil)
}

// IntersectFromNode intersects the ray against the subtree rooted at
// nodeStartIndex. Traversal visits children nearer along the ray first and
// prunes nodes whose boxes lie beyond the current ray range.
func (s *Sbvh) IntersectFromNode(r *core.Ray, hits *[]core.Interaction, nodeStartIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) int {

	if len(s.primitives) == 0 {
		return 0
	}

	visited := 0
	var closest core.Interaction
	haveClosest := false
	var scratch []core.Interaction

	var stack [2 * MaxDepth]traversalEntry
	top := 0

	if tNear, _, ok := s.flatTree[nodeStartIndex].Box.IntersectRay(r); ok {
		stack[0] = traversalEntry{node: int32(nodeStartIndex), distance: tNear}
		top = 1
	}

	for top > 0 {
		top--
		entry := stack[top]
		if entry.distance > r.TMax {
			continue
		}

		node := &s.flatTree[entry.node]
		visited++

		if node.IsLeaf() {
			for j := 0; j < int(node.NReferences); j++ {
				pIdx := s.references[int(node.Offset)+j]
				if s.ignore != nil && s.ignore(pIdx) {
					continue
				}
				prim := s.primitives[pIdx]

				if checkOcclusion {
					if prim.Intersect(r, hits, true, false) > 0 {
						if nodesVisited != nil {
							*nodesVisited += visited
						}
						return 1
					}
				} else if countHits {
					prim.Intersect(r, hits, false, true)
				} else {
					scratch = scratch[:0]
					if prim.Intersect(r, &scratch, false, false) > 0 {
						h := scratch[0]
						if !haveClosest || h.D < closest.D {
							closest = h
							haveClosest = true
							r.TMax = math.Min(r.TMax, h.D)
						}
					}
				}
			}
			continue
		}

		left := entry.node + 1
		right := entry.node + node.Offset
		tLeft, _, hitLeft := s.flatTree[left].Box.IntersectRay(r)
		tRight, _, hitRight := s.flatTree[right].Box.IntersectRay(r)

		// closer child goes on top of the stack
		switch {
		case hitLeft && hitRight:
			if tRight < tLeft {
				stack[top] = traversalEntry{node: left, distance: tLeft}
				stack[top+1] = traversalEntry{node: right, distance: tRight}
			} else {
				stack[top] = traversalEntry{node: right, distance: tRight}
				stack[top+1] = traversalEntry{node: left, distance: tLeft}
			}
			top += 2
		case hitLeft:
			stack[top] = traversalEntry{node: left, distance: tLeft}
			top++
		case hitRight:
			stack[top] = traversalEntry{node: right, distance: tRight}
			top++
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

// FindClosestPointFromNode searches the subtree rooted at nodeStartIndex for
// the primitive point nearest to sp.Center within the sphere, shrinking the
// sphere as candidates are found.
func (s *Sbvh) FindClosestPointFromNode(sp *core.BoundingSphere, i *core.Interaction,
	nodeStartIndex int, boundaryHint r3.Vector, nodesVisited *int) bool {

	if len(s.primitives) == 0 {
		return false
	}

	visited := 0
	found := false

	var stack [2 * MaxDepth]traversalEntry
	top := 0

	if d2 := s.flatTree[nodeStartIndex].Box.DistanceSquared(sp.Center); d2 < sp.R2 {
		stack[0] = traversalEntry{node: int32(nodeStartIndex), distance: d2}
		top = 1
	}

	for top > 0 {
		top--
		entry := stack[top]
		if entry.distance >= sp.R2 {
			continue
		}

		node := &s.flatTree[entry.node]
		visited++

		if node.IsLeaf() {
			for j := 0; j < int(node.NReferences); j++ {
				pIdx := s.references[int(node.Offset)+j]
				if s.ignore != nil && s.ignore(pIdx) {
					continue
				}
				prim := s.primitives[pIdx]

				var c core.Interaction
				ok := false
				if hinted, isHinted := prim.(core.BoundaryHintedPrimitive); isHinted {
					ok = hinted.ClosestPointWithHint(sp, boundaryHint, &c)
				} else {
					ok = prim.ClosestPoint(sp, &c)
				}
				if ok {
					found = true
					sp.R2 = math.Min(sp.R2, c.D*c.D)
					*i = c
				}
			}
			continue
		}

		left := entry.node + 1
		right := entry.node + node.Offset
		d2Left := s.flatTree[left].Box.DistanceSquared(sp.Center)
		d2Right := s.flatTree[right].Box.DistanceSquared(sp.Center)
		hitLeft := d2Left < sp.R2
		hitRight := d2Right < sp.R2

		switch {
		case hitLeft && hitRight:
			if d2Right < d2Left {
				stack[top] = traversalEntry{node: left, distance: d2Left}
				stack[top+1] = traversalEntry{node: right, distance: d2Right}
			} else {
				stack[top] = traversalEntry{node: right, distance: d2Right}
				stack[top+1] = traversalEntry{node: left, distance: d2Left}
			}
			top += 2
		case hitLeft:
			stack[top] = traversalEntry{node: left, distance: d2Left}
			top++
		case hitRight:
			stack[top] = traversalEntry{node: right, distance: d2Right}
			top++
		}
	}

	if nodesVisited != nil {
		*nodesVisited += visited
	}
	return found
}
