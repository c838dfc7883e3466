package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

func TestTriangle_Intersect(t *testing.T) {
	// Triangle in the XY plane
	triangle := NewTriangle(
		r3.Vector{X: 0, Y: 0, Z: 0},
		r3.Vector{X: 1, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: 1, Z: 0},
		0,
	)

	tests := []struct {
		name      string
		origin    r3.Vector
		direction r3.Vector
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "Ray hits triangle interior",
			origin:    r3.Vector{X: 0.25, Y: 0.25, Z: -1},
			direction: r3.Vector{X: 0, Y: 0, Z: 1},
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray hits hypotenuse edge",
			origin:    r3.Vector{X: 0.5, Y: 0.5, Z: 1},
			direction: r3.Vector{X: 0, Y: 0, Z: -1},
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray misses triangle",
			origin:    r3.Vector{X: 1, Y: 1, Z: -1},
			direction: r3.Vector{X: 0, Y: 0, Z: 1},
			shouldHit: false,
		},
		{
			name:      "Triangle behind ray",
			origin:    r3.Vector{X: 0.25, Y: 0.25, Z: -1},
			direction: r3.Vector{X: 0, Y: 0, Z: -1},
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.origin, tt.direction)
			var hits []core.Interaction
			n := triangle.Intersect(&ray, &hits, false, false)

			if tt.shouldHit && n == 0 {
				t.Fatal("Expected hit")
			}
			if !tt.shouldHit {
				if n != 0 {
					t.Fatalf("Expected miss, got hit at t=%v", hits[0].D)
				}
				return
			}
			if math.Abs(hits[0].D-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%v, got %v", tt.expectedT, hits[0].D)
			}
		})
	}
}

func TestTriangle_IntersectCoplanar(t *testing.T) {
	triangle := NewTriangle(
		r3.Vector{X: 2, Y: 0, Z: 0},
		r3.Vector{X: 3, Y: 0, Z: 0},
		r3.Vector{X: 2, Y: 1, Z: 0},
		0,
	)

	// ray travels in the triangle's plane toward -x along y=0
	ray := core.NewRay(r3.Vector{X: 4, Y: 0, Z: 0}, r3.Vector{X: -1, Y: 0, Z: 0})
	var hits []core.Interaction
	n := triangle.Intersect(&ray, &hits, false, false)
	if n != 1 {
		t.Fatalf("Expected a boundary crossing, got %d hits", n)
	}
	if math.Abs(hits[0].D-1.0) > 1e-9 {
		t.Errorf("Expected nearest crossing at t=1, got %v", hits[0].D)
	}

	// same direction but off the plane: no hit
	off := core.NewRay(r3.Vector{X: 4, Y: 0, Z: 0.5}, r3.Vector{X: -1, Y: 0, Z: 0})
	hits = hits[:0]
	if triangle.Intersect(&off, &hits, false, false) != 0 {
		t.Error("Expected no hit for a parallel ray off the plane")
	}
}

func TestTriangle_Occlusion(t *testing.T) {
	triangle := NewTriangle(
		r3.Vector{X: 0, Y: 0, Z: 0},
		r3.Vector{X: 1, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: 1, Z: 0},
		0,
	)

	ray := core.NewRay(r3.Vector{X: 0.25, Y: 0.25, Z: -1}, r3.Vector{X: 0, Y: 0, Z: 1})
	var hits []core.Interaction
	if triangle.Intersect(&ray, &hits, true, false) != 1 {
		t.Fatal("Expected occlusion hit")
	}
	if len(hits) != 0 {
		t.Error("Occlusion queries should not record interactions")
	}
}

func TestTriangle_ClosestPoint(t *testing.T) {
	triangle := NewTriangle(
		r3.Vector{X: 0, Y: 0, Z: 0},
		r3.Vector{X: 1, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: 1, Z: 0},
		0,
	)

	tests := []struct {
		name     string
		center   r3.Vector
		radius   float64
		found    bool
		expected r3.Vector
	}{
		{
			name:     "Above interior projects down",
			center:   r3.Vector{X: 0.25, Y: 0.25, Z: 2},
			radius:   5,
			found:    true,
			expected: r3.Vector{X: 0.25, Y: 0.25, Z: 0},
		},
		{
			name:     "Closest to vertex",
			center:   r3.Vector{X: -1, Y: -1, Z: 0},
			radius:   5,
			found:    true,
			expected: r3.Vector{X: 0, Y: 0, Z: 0},
		},
		{
			name:     "Closest to edge",
			center:   r3.Vector{X: 0.5, Y: -1, Z: 0},
			radius:   5,
			found:    true,
			expected: r3.Vector{X: 0.5, Y: 0, Z: 0},
		},
		{
			name:   "Outside search radius",
			center: r3.Vector{X: 10, Y: 10, Z: 10},
			radius: 1,
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := core.NewBoundingSphere(tt.center, tt.radius)
			var i core.Interaction
			found := triangle.ClosestPoint(&sphere, &i)

			if found != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, found)
			}
			if !found {
				return
			}
			if i.P.Sub(tt.expected).Norm() > 1e-9 {
				t.Errorf("Expected closest point %+v, got %+v", tt.expected, i.P)
			}
			if math.Abs(i.D-tt.center.Sub(tt.expected).Norm()) > 1e-9 {
				t.Errorf("Distance %v does not match point %+v", i.D, i.P)
			}
		})
	}
}

func TestTriangle_Split(t *testing.T) {
	triangle := NewTriangle(
		r3.Vector{X: 0, Y: 0, Z: 0},
		r3.Vector{X: 2, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: 2, Z: 0},
		0,
	)
	parent := triangle.BoundingBox()

	left, right := triangle.Split(0, 1.0, parent)
	if !left.IsValid() || !right.IsValid() {
		t.Fatal("Expected both halves to be non-empty")
	}

	if math.Abs(left.Max.X-1.0) > 1e-9 {
		t.Errorf("Left half should end at the split plane, got max x=%v", left.Max.X)
	}
	if math.Abs(right.Min.X-1.0) > 1e-9 {
		t.Errorf("Right half should start at the split plane, got min x=%v", right.Min.X)
	}

	// clipping tightens: the right half only reaches y=1 where the
	// hypotenuse crosses the plane
	if math.Abs(right.Max.Y-1.0) > 1e-9 {
		t.Errorf("Right half should be clipped to y=1, got max y=%v", right.Max.Y)
	}

	// the union of both halves must still cover the triangle
	union := left.Union(right)
	if !union.ContainsBox(parent) {
		t.Errorf("Union of halves %+v does not cover the original box %+v", union, parent)
	}

	// plane outside the triangle leaves one side empty
	left, right = triangle.Split(0, 5.0, parent)
	if !left.IsValid() {
		t.Error("Expected left half to hold the whole triangle")
	}
	if right.IsValid() {
		t.Error("Expected right half to be empty")
	}
}

func TestTriangle_Measures(t *testing.T) {
	triangle := NewTriangle(
		r3.Vector{X: 0, Y: 0, Z: 0},
		r3.Vector{X: 1, Y: 0, Z: 0},
		r3.Vector{X: 0, Y: 1, Z: 0},
		0,
	)

	if got := triangle.SurfaceArea(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected area 0.5, got %v", got)
	}

	want := r3.Vector{X: 1.0 / 3.0, Y: 1.0 / 3.0, Z: 0}
	if got := triangle.Centroid(); got.Sub(want).Norm() > 1e-12 {
		t.Errorf("Expected centroid %+v, got %+v", want, got)
	}

	box := triangle.BoundingBox()
	if box.Min != (r3.Vector{}) || box.Max != (r3.Vector{X: 1, Y: 1, Z: 0}) {
		t.Errorf("Unexpected bounding box %+v", box)
	}
}
