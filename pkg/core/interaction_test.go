package core

import "testing"

func TestSortInteractions(t *testing.T) {
	is := []Interaction{
		{D: 3.0, PrimitiveIndex: 0},
		{D: 1.0, PrimitiveIndex: 2},
		{D: 2.0, PrimitiveIndex: 1},
	}

	SortInteractions(is)

	for i := 1; i < len(is); i++ {
		if is[i-1].D > is[i].D {
			t.Fatalf("Interactions not sorted: %v before %v", is[i-1].D, is[i].D)
		}
	}
}

func TestRemoveDuplicates(t *testing.T) {
	is := []Interaction{
		{D: 1.0, PrimitiveIndex: 0},
		{D: 1.0, PrimitiveIndex: 0}, // same primitive, same distance
		{D: 1.0, PrimitiveIndex: 1}, // different primitive at the same distance
		{D: 2.0, PrimitiveIndex: 0}, // same primitive, farther hit
	}

	out := RemoveDuplicates(is)
	if len(out) != 3 {
		t.Fatalf("Expected 3 distinct interactions, got %d: %+v", len(out), out)
	}
}

func TestRemoveDuplicates_NearbyDistances(t *testing.T) {
	is := []Interaction{
		{D: 1.0, PrimitiveIndex: 5},
		{D: 1.0 + 1e-13, PrimitiveIndex: 5},
	}

	out := RemoveDuplicates(is)
	if len(out) != 1 {
		t.Fatalf("Expected near-identical hits to collapse, got %d", len(out))
	}
}
