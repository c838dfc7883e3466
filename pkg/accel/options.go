package accel

import (
	"errors"
	"fmt"
	"math"

	"github.com/janm31415/fcpw/pkg/core"
)

var (
	// ErrInvalidOptions reports a build option outside its legal range
	ErrInvalidOptions = errors.New("accel: invalid build options")

	// ErrTooManyReferences reports a build whose primitive-reference array
	// would exceed the 32-bit node offset range
	ErrTooManyReferences = errors.New("accel: reference array exceeds 32-bit range")
)

// BuildOptions configures SBVH construction
type BuildOptions struct {
	// Heuristic selects the split scoring function
	Heuristic CostHeuristic

	// SplitAlpha gates spatial splits: they are attempted only when the
	// overlap area of the best object split exceeds SplitAlpha relative to
	// the root. With 0 they are attempted whenever the object-split children
	// overlap with positive area; 1 disables them.
	SplitAlpha float64

	// LeafSize is the maximum number of references per leaf
	LeafSize int

	// NBuckets is the bin count for object splits
	NBuckets int

	// NBins is the slab count for spatial splits
	NBins int

	// PackLeaves prefers larger leaves when splitting stops paying off
	PackLeaves bool

	// PrintStats logs construction statistics through Logger
	PrintStats bool

	// Logger receives statistics output; defaults to the standard logger
	Logger core.Logger
}

// DefaultBuildOptions returns the recommended configuration
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Heuristic:  SurfaceArea,
		SplitAlpha: 1e-5,
		LeafSize:   4,
		NBuckets:   8,
		NBins:      8,
	}
}

// Validate checks the options against their legal ranges
func (o BuildOptions) Validate() error {
	if o.LeafSize < 1 {
		return fmt.Errorf("%w: leaf size must be >= 1, got %d", ErrInvalidOptions, o.LeafSize)
	}
	if o.NBuckets < 2 {
		return fmt.Errorf("%w: bucket count must be >= 2, got %d", ErrInvalidOptions, o.NBuckets)
	}
	if o.NBins < 2 {
		return fmt.Errorf("%w: bin count must be >= 2, got %d", ErrInvalidOptions, o.NBins)
	}
	if math.IsNaN(o.SplitAlpha) || o.SplitAlpha < 0 || o.SplitAlpha > 1 {
		return fmt.Errorf("%w: split alpha must be in [0, 1], got %v", ErrInvalidOptions, o.SplitAlpha)
	}
	if _, err := ParseCostHeuristic(o.Heuristic.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}
