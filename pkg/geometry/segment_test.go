package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

func TestSegment_Intersect(t *testing.T) {
	segment := NewSegment(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 0, Y: 1, Z: 0}, 0)

	tests := []struct {
		name      string
		origin    r3.Vector
		direction r3.Vector
		shouldHit bool
		expectedT float64
	}{
		{
			name:      "Ray hits segment middle",
			origin:    r3.Vector{X: -1, Y: 0.5, Z: 0},
			direction: r3.Vector{X: 1, Y: 0, Z: 0},
			shouldHit: true,
			expectedT: 1.0,
		},
		{
			name:      "Ray hits endpoint",
			origin:    r3.Vector{X: -2, Y: 1, Z: 0},
			direction: r3.Vector{X: 1, Y: 0, Z: 0},
			shouldHit: true,
			expectedT: 2.0,
		},
		{
			name:      "Ray passes beyond endpoint",
			origin:    r3.Vector{X: -1, Y: 1.5, Z: 0},
			direction: r3.Vector{X: 1, Y: 0, Z: 0},
			shouldHit: false,
		},
		{
			name:      "Parallel ray",
			origin:    r3.Vector{X: 1, Y: 0, Z: 0},
			direction: r3.Vector{X: 0, Y: 1, Z: 0},
			shouldHit: false,
		},
		{
			name:      "Segment behind ray",
			origin:    r3.Vector{X: -1, Y: 0.5, Z: 0},
			direction: r3.Vector{X: -1, Y: 0, Z: 0},
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.origin, tt.direction)
			var hits []core.Interaction
			n := segment.Intersect(&ray, &hits, false, false)

			if tt.shouldHit != (n > 0) {
				t.Fatalf("Expected hit=%v, got %d hits", tt.shouldHit, n)
			}
			if n > 0 && math.Abs(hits[0].D-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%v, got %v", tt.expectedT, hits[0].D)
			}
		})
	}
}

func TestSegment_ClosestPoint(t *testing.T) {
	segment := NewSegment(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 2, Y: 0, Z: 0}, 0)

	tests := []struct {
		name     string
		center   r3.Vector
		radius   float64
		found    bool
		expected r3.Vector
	}{
		{"Projects onto interior", r3.Vector{X: 1, Y: 1, Z: 0}, 5, true, r3.Vector{X: 1, Y: 0, Z: 0}},
		{"Clamps to endpoint", r3.Vector{X: 3, Y: 1, Z: 0}, 5, true, r3.Vector{X: 2, Y: 0, Z: 0}},
		{"Out of plane", r3.Vector{X: 0.5, Y: 0, Z: 2}, 5, true, r3.Vector{X: 0.5, Y: 0, Z: 0}},
		{"Outside radius", r3.Vector{X: 1, Y: 10, Z: 0}, 1, false, r3.Vector{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := core.NewBoundingSphere(tt.center, tt.radius)
			var i core.Interaction
			found := segment.ClosestPoint(&sphere, &i)

			if found != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, found)
			}
			if found && i.P.Sub(tt.expected).Norm() > 1e-9 {
				t.Errorf("Expected closest point %+v, got %+v", tt.expected, i.P)
			}
		})
	}
}

func TestSegment_Split(t *testing.T) {
	segment := NewSegment(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 4, Y: 2, Z: 0}, 0)
	parent := segment.BoundingBox()

	left, right := segment.Split(0, 2.0, parent)
	if !left.IsValid() || !right.IsValid() {
		t.Fatal("Expected both halves to be non-empty")
	}
	if math.Abs(left.Max.X-2.0) > 1e-9 || math.Abs(right.Min.X-2.0) > 1e-9 {
		t.Errorf("Halves should meet at the plane: left %+v right %+v", left, right)
	}

	// the crossing point sits at y=1
	if math.Abs(left.Max.Y-1.0) > 1e-9 {
		t.Errorf("Left half should be clipped to y=1, got %v", left.Max.Y)
	}
}

func TestSegment_Measures(t *testing.T) {
	segment := NewSegment(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 3, Y: 4, Z: 0}, 0)

	if got := segment.SurfaceArea(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Expected length 5, got %v", got)
	}
	if got := segment.Centroid(); got.Sub(r3.Vector{X: 1.5, Y: 2, Z: 0}).Norm() > 1e-12 {
		t.Errorf("Unexpected centroid %+v", got)
	}
	if got := segment.Normal(); math.Abs(got.Norm()-1) > 1e-12 {
		t.Errorf("Expected unit normal, got %+v", got)
	}
}
