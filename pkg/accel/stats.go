package accel

// BuildStats summarizes the structure of a built tree
type BuildStats struct {
	Primitives int // Input primitive count
	References int // Reference count; exceeds Primitives when splits duplicated
	Nodes      int // Total flat-tree nodes
	Leaves     int // Leaf nodes
	MaxDepth   int // Deepest node
	DepthGuess int // Expected depth ⌈1.3·log₂(n)⌉; recorded only, traversal stacks have the fixed 2·MaxDepth capacity
}

// Stats returns statistics about the tree structure
func (s *Sbvh) Stats() BuildStats {
	return BuildStats{
		Primitives: len(s.primitives),
		References: len(s.references),
		Nodes:      s.nNodes,
		Leaves:     s.nLeafs,
		MaxDepth:   s.maxDepth,
		DepthGuess: s.depthGuess,
	}
}
