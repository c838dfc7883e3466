package core

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// Interaction describes a ray hit or a closest point on a primitive.
// D is the parametric distance for ray queries and the euclidean distance
// for closest-point queries.
type Interaction struct {
	D              float64
	P              r3.Vector // Point on the primitive
	N              r3.Vector // Normal at the point
	UV             Vec2      // Barycentric / parametric coordinates
	PrimitiveIndex int
}

// distanceEpsilon bounds how close two hit distances must be to count as the
// same hit when deduplicating.
const distanceEpsilon = 1e-9

// SortInteractions orders interactions by distance ascending
func SortInteractions(is []Interaction) {
	sort.Slice(is, func(i, j int) bool {
		if is[i].D != is[j].D {
			return is[i].D < is[j].D
		}
		return is[i].PrimitiveIndex < is[j].PrimitiveIndex
	})
}

// RemoveDuplicates filters a sorted interaction list, dropping entries that
// repeat an earlier (primitive, distance) pair. Spatial splits can report the
// same primitive hit from more than one leaf.
func RemoveDuplicates(is []Interaction) []Interaction {
	if len(is) < 2 {
		return is
	}

	out := is[:1]
	for _, candidate := range is[1:] {
		duplicate := false
		for j := len(out) - 1; j >= 0; j-- {
			prev := out[j]
			if candidate.D-prev.D > distanceEpsilon*(1+math.Abs(candidate.D)) {
				break
			}
			if prev.PrimitiveIndex == candidate.PrimitiveIndex {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, candidate)
		}
	}
	return out
}
