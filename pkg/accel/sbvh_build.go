package accel

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/golang/geo/r3"

	"github.com/janm31415/fcpw/pkg/core"
)

// sbvhBuilder holds the per-build scratch: one reference per (possibly
// duplicated) primitive, kept as parallel arrays. All of it is released once
// the flat tree has been materialized.
type sbvhBuilder struct {
	s *Sbvh

	refs         []int
	refBoxes     []core.AABB
	refCentroids []r3.Vector

	nodes   []SbvhNode
	outRefs []int

	nLeafs   int
	maxDepth int
	err      error

	bucketBoxes  []core.AABB
	bucketCounts []int
	suffixBoxes  []core.AABB
	suffixCounts []int
	binBoxes     []core.AABB
	binEntries   []int
	binExits     []int
}

func (s *Sbvh) build() error {
	buildStart := time.Now()
	n := len(s.primitives)

	if n == 0 {
		// sentinel empty tree: one reference-less node
		s.flatTree = []SbvhNode{{Box: core.NewEmptyAABB()}}
		s.nNodes = 1
		return nil
	}

	b := &sbvhBuilder{
		s:            s,
		refs:         make([]int, n),
		refBoxes:     make([]core.AABB, n),
		refCentroids: make([]r3.Vector, n),
		nodes:        make([]SbvhNode, 0, 2*n),
		outRefs:      make([]int, 0, n),
		bucketBoxes:  make([]core.AABB, s.opts.NBuckets),
		bucketCounts: make([]int, s.opts.NBuckets),
		suffixBoxes:  make([]core.AABB, max(s.opts.NBuckets, s.opts.NBins)),
		suffixCounts: make([]int, max(s.opts.NBuckets, s.opts.NBins)),
		binBoxes:     make([]core.AABB, s.opts.NBins),
		binEntries:   make([]int, s.opts.NBins),
		binExits:     make([]int, s.opts.NBins),
	}

	rootBox := core.NewEmptyAABB()
	for i, p := range s.primitives {
		b.refs[i] = i
		b.refBoxes[i] = p.BoundingBox()
		b.refCentroids[i] = p.Centroid()
		rootBox = rootBox.Union(b.refBoxes[i])
	}

	// normalizers for the cost functions; degenerate scenes fall back to 1
	s.rootSurfaceArea = rootBox.SurfaceArea()
	if s.rootSurfaceArea <= 0 {
		s.rootSurfaceArea = 1
	}
	s.rootVolume = rootBox.Volume()
	if s.rootVolume <= 0 {
		s.rootVolume = 1
	}

	b.buildRecursive(0, n, 0)
	if b.err != nil {
		return b.err
	}

	s.flatTree = b.nodes
	s.references = b.outRefs
	s.nNodes = len(b.nodes)
	s.nLeafs = b.nLeafs
	s.maxDepth = b.maxDepth
	s.depthGuess = int(math.Ceil(1.3 * math.Log2(float64(n))))
	if s.depthGuess < 1 {
		s.depthGuess = 1
	}

	// drop build scratch; queries only need the flat tree and references
	b.refs, b.refBoxes, b.refCentroids = nil, nil, nil

	if s.opts.PrintStats {
		logger := s.opts.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("sbvh: %d primitives, %d references, %d nodes (%d leaves), max depth %d, built in %s",
			n, len(s.references), s.nNodes, s.nLeafs, s.maxDepth, time.Since(buildStart))
	}
	return nil
}

// buildRecursive emits the subtree for the reference range [start, end) and
// returns how many references spatial splits added within it, so callers can
// shift the ranges of siblings still to be built.
func (b *sbvhBuilder) buildRecursive(start, end, depth int) (added int) {
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, SbvhNode{})
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	nodeBox := core.NewEmptyAABB()
	centroidBox := core.NewEmptyAABB()
	for i := start; i < end; i++ {
		nodeBox = nodeBox.Union(b.refBoxes[i])
		centroidBox = centroidBox.ExpandPoint(b.refCentroids[i])
	}

	n := end - start
	if n <= b.s.opts.LeafSize || depth >= MaxDepth {
		b.emitLeaf(nodeIndex, nodeBox, start, end)
		return 0
	}

	objCost, splitDim, splitCoord, boxIntersected, forceLeaf := b.computeObjectSplit(centroidBox, start, end)
	if forceLeaf {
		// centroid bounds collapsed on every axis
		b.emitLeaf(nodeIndex, nodeBox, start, end)
		return 0
	}

	if b.s.opts.PackLeaves && b.s.opts.Heuristic != LongestAxisCenter &&
		objCost >= b.s.leafCost(nodeBox, n) {
		b.emitLeaf(nodeIndex, nodeBox, start, end)
		return 0
	}

	// spatial split, gated by the overlap of the best object split
	useSpatial := false
	var spatCoord float64
	var spatBoxL, spatBoxR core.AABB
	var spatNL, spatNR int
	if b.s.opts.Heuristic != LongestAxisCenter && b.s.opts.SplitAlpha < 1 && boxIntersected.IsValid() {
		if boxIntersected.SurfaceArea()/b.s.rootSurfaceArea > b.s.opts.SplitAlpha {
			spatCost, coord, boxL, boxR, nL, nR, ok := b.computeSpatialSplit(nodeBox, start, end, splitDim)
			if ok && spatCost < objCost {
				useSpatial = true
				spatCoord, spatBoxL, spatBoxR, spatNL, spatNR = coord, boxL, boxR, nL, nR
			}
		}
	}

	var mid int
	if useSpatial {
		var ok bool
		mid, added, ok = b.performSpatialSplit(start, end, splitDim, spatCoord, spatBoxL, spatBoxR, spatNL, spatNR)
		if !ok {
			useSpatial = false
		} else {
			end += added
		}
	}
	if !useSpatial {
		mid = b.performObjectSplit(start, end, splitDim, splitCoord)
	}

	addedLeft := b.buildRecursive(start, mid, depth+1)
	b.nodes[nodeIndex].Offset = int32(len(b.nodes) - nodeIndex)
	addedRight := b.buildRecursive(mid+addedLeft, end+addedLeft, depth+1)

	// the children's boxes are final only after their subtrees are built;
	// spatial splits may have tightened them below the entry box
	leftBox := b.nodes[nodeIndex+1].Box
	rightBox := b.nodes[nodeIndex+int(b.nodes[nodeIndex].Offset)].Box
	b.nodes[nodeIndex].Box = leftBox.Union(rightBox)
	b.nodes[nodeIndex].NReferences = 0

	return added + addedLeft + addedRight
}

func (b *sbvhBuilder) emitLeaf(nodeIndex int, box core.AABB, start, end int) {
	if len(b.outRefs)+(end-start) > math.MaxInt32 {
		b.err = ErrTooManyReferences
		return
	}

	node := &b.nodes[nodeIndex]
	node.Box = box
	node.Offset = int32(len(b.outRefs))
	node.NReferences = int32(end - start)
	b.outRefs = append(b.outRefs, b.refs[start:end]...)
	b.nLeafs++
}

// computeObjectSplit finds the cheapest bucketed centroid split across all
// axes. forceLeaf is set when the centroid bounds collapse on every axis.
func (b *sbvhBuilder) computeObjectSplit(centroidBox core.AABB, start, end int) (
	cost float64, splitDim int, splitCoord float64, boxIntersected core.AABB, forceLeaf bool) {

	if b.s.opts.Heuristic == LongestAxisCenter {
		splitDim = centroidBox.MaxDimension()
		extent := core.Component(centroidBox.Extent(), splitDim)
		if extent <= 0 {
			return 0, 0, 0, core.NewEmptyAABB(), true
		}
		splitCoord = 0.5 * (core.Component(centroidBox.Min, splitDim) + core.Component(centroidBox.Max, splitDim))
		return extent, splitDim, splitCoord, core.NewEmptyAABB(), false
	}

	nBuckets := b.s.opts.NBuckets
	cost = math.Inf(1)
	splitDim = -1
	boxIntersected = core.NewEmptyAABB()

	for dim := 0; dim < 3; dim++ {
		cbMin := core.Component(centroidBox.Min, dim)
		cbMax := core.Component(centroidBox.Max, dim)
		extent := cbMax - cbMin
		if extent <= 0 {
			continue
		}

		for k := 0; k < nBuckets; k++ {
			b.bucketBoxes[k] = core.NewEmptyAABB()
			b.bucketCounts[k] = 0
		}
		for i := start; i < end; i++ {
			k := bucketIndex(core.Component(b.refCentroids[i], dim), cbMin, extent, nBuckets)
			b.bucketBoxes[k] = b.bucketBoxes[k].Union(b.refBoxes[i])
			b.bucketCounts[k]++
		}

		// right-to-left sweep of suffix unions and counts
		suffixBox := core.NewEmptyAABB()
		suffixCount := 0
		for k := nBuckets - 1; k >= 0; k-- {
			suffixBox = suffixBox.Union(b.bucketBoxes[k])
			suffixCount += b.bucketCounts[k]
			b.suffixBoxes[k] = suffixBox
			b.suffixCounts[k] = suffixCount
		}

		// left-to-right sweep evaluating each bucket boundary
		leftBox := core.NewEmptyAABB()
		leftCount := 0
		for k := 0; k < nBuckets-1; k++ {
			leftBox = leftBox.Union(b.bucketBoxes[k])
			leftCount += b.bucketCounts[k]
			rightCount := b.suffixCounts[k+1]
			if leftCount == 0 || rightCount == 0 {
				continue
			}

			c := b.s.splitCost(leftBox, b.suffixBoxes[k+1], leftCount, rightCount)
			if c < cost {
				cost = c
				splitDim = dim
				splitCoord = cbMin + float64(k+1)*extent/float64(nBuckets)
				boxIntersected = leftBox.Intersection(b.suffixBoxes[k+1])
			}
		}
	}

	if splitDim == -1 {
		return 0, 0, 0, core.NewEmptyAABB(), true
	}
	return cost, splitDim, splitCoord, boxIntersected, false
}

// performObjectSplit partitions the range in place by centroid and returns
// the pivot. Degenerate partitions fall back to a median split.
func (b *sbvhBuilder) performObjectSplit(start, end, dim int, coord float64) int {
	mid := start
	for i := start; i < end; i++ {
		if core.Component(b.refCentroids[i], dim) < coord {
			b.swapRefs(i, mid)
			mid++
		}
	}

	if mid == start || mid == end {
		sort.Sort(refRangeSorter{b: b, start: start, end: end, dim: dim})
		mid = start + (end-start)/2
	}
	return mid
}

// computeSpatialSplit bins clipped references into equal slabs along the
// given axis and sweeps the bin boundaries for the cheapest plane.
func (b *sbvhBuilder) computeSpatialSplit(nodeBox core.AABB, start, end, dim int) (
	cost, coord float64, boxL, boxR core.AABB, nL, nR int, ok bool) {

	nBins := b.s.opts.NBins
	binMin := core.Component(nodeBox.Min, dim)
	extent := core.Component(nodeBox.Max, dim) - binMin
	if extent <= 0 {
		return 0, 0, core.AABB{}, core.AABB{}, 0, 0, false
	}
	binWidth := extent / float64(nBins)

	for k := 0; k < nBins; k++ {
		b.binBoxes[k] = core.NewEmptyAABB()
		b.binEntries[k] = 0
		b.binExits[k] = 0
	}

	for i := start; i < end; i++ {
		rb := b.refBoxes[i]
		first := bucketIndex(core.Component(rb.Min, dim), binMin, extent, nBins)
		last := bucketIndex(core.Component(rb.Max, dim), binMin, extent, nBins)
		b.binEntries[first]++
		b.binExits[last]++

		if first == last {
			b.binBoxes[first] = b.binBoxes[first].Union(rb)
			continue
		}

		// clip the reference against each slab boundary it straddles
		current := rb
		for k := first; k < last; k++ {
			plane := binMin + float64(k+1)*binWidth
			lo, hi := b.splitReference(i, dim, plane, current)
			if lo.IsValid() {
				b.binBoxes[k] = b.binBoxes[k].Union(lo)
			}
			if !hi.IsValid() {
				break
			}
			current = hi
		}
		if current.IsValid() {
			b.binBoxes[last] = b.binBoxes[last].Union(current)
		}
	}

	// right-to-left sweep of suffix unions and exit counts
	suffixBox := core.NewEmptyAABB()
	suffixExits := 0
	for k := nBins - 1; k >= 0; k-- {
		suffixBox = suffixBox.Union(b.binBoxes[k])
		suffixExits += b.binExits[k]
		b.suffixBoxes[k] = suffixBox
		b.suffixCounts[k] = suffixExits
	}

	cost = math.Inf(1)
	leftBox := core.NewEmptyAABB()
	leftEntries := 0
	for k := 0; k < nBins-1; k++ {
		leftBox = leftBox.Union(b.binBoxes[k])
		leftEntries += b.binEntries[k]
		rightExits := b.suffixCounts[k+1]
		if leftEntries == 0 || rightExits == 0 {
			continue
		}

		c := b.s.splitCost(leftBox, b.suffixBoxes[k+1], leftEntries, rightExits)
		if c < cost {
			cost = c
			coord = binMin + float64(k+1)*binWidth
			boxL = leftBox
			boxR = b.suffixBoxes[k+1]
			nL = leftEntries
			nR = rightExits
			ok = true
		}
	}
	return cost, coord, boxL, boxR, nL, nR, ok
}

// performSpatialSplit distributes references across the winning plane.
// Straddling references are either duplicated with clipped boxes or unsplit
// to one side, whichever the heuristic prices lower. Returns the pivot and
// the number of references added by duplication.
func (b *sbvhBuilder) performSpatialSplit(start, end, dim int, coord float64,
	boxL, boxR core.AABB, nL, nR int) (mid, added int, ok bool) {

	var leftIdx, rightIdx []int
	var leftBoxes, rightBoxes []core.AABB
	var leftCents, rightCents []r3.Vector

	assignLeft := func(idx int, box core.AABB, c r3.Vector) {
		leftIdx = append(leftIdx, idx)
		leftBoxes = append(leftBoxes, box)
		leftCents = append(leftCents, c)
	}
	assignRight := func(idx int, box core.AABB, c r3.Vector) {
		rightIdx = append(rightIdx, idx)
		rightBoxes = append(rightBoxes, box)
		rightCents = append(rightCents, c)
	}

	for i := start; i < end; i++ {
		rb := b.refBoxes[i]
		idx := b.refs[i]

		if core.Component(rb.Max, dim) <= coord {
			assignLeft(idx, rb, b.refCentroids[i])
			continue
		}
		if core.Component(rb.Min, dim) >= coord {
			assignRight(idx, rb, b.refCentroids[i])
			continue
		}

		refL, refR := b.splitReference(i, dim, coord, rb)
		if !refL.IsValid() {
			assignRight(idx, rb, b.refCentroids[i])
			continue
		}
		if !refR.IsValid() {
			assignLeft(idx, rb, b.refCentroids[i])
			continue
		}

		costDuplicate, costUnsplitLeft, costUnsplitRight :=
			b.s.unsplittingCosts(boxL, boxR, rb, nL, nR)

		switch {
		case costDuplicate <= costUnsplitLeft && costDuplicate <= costUnsplitRight:
			assignLeft(idx, refL, refL.Center())
			assignRight(idx, refR, refR.Center())
			boxL = boxL.Union(refL)
			boxR = boxR.Union(refR)
		case costUnsplitLeft <= costUnsplitRight:
			assignLeft(idx, rb, b.refCentroids[i])
			boxL = boxL.Union(rb)
			nR--
		default:
			assignRight(idx, rb, b.refCentroids[i])
			boxR = boxR.Union(rb)
			nL--
		}
	}

	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return 0, 0, false
	}

	added = len(leftIdx) + len(rightIdx) - (end - start)
	mid = start + len(leftIdx)

	b.refs = spliceInts(b.refs, start, end, leftIdx, rightIdx)
	b.refBoxes = spliceBoxes(b.refBoxes, start, end, leftBoxes, rightBoxes)
	b.refCentroids = spliceVectors(b.refCentroids, start, end, leftCents, rightCents)
	return mid, added, true
}

// splitReference clips a reference against an axis plane, either exactly via
// the primitive's split capability or by bisecting the reference box.
func (b *sbvhBuilder) splitReference(refIdx, dim int, coord float64, parentBox core.AABB) (core.AABB, core.AABB) {
	prim := b.s.primitives[b.refs[refIdx]]
	if sp, ok := prim.(core.SplittablePrimitive); ok {
		return sp.Split(dim, coord, parentBox)
	}

	left := parentBox
	left.Max = core.SetComponent(left.Max, dim, math.Min(coord, core.Component(parentBox.Max, dim)))
	right := parentBox
	right.Min = core.SetComponent(right.Min, dim, math.Max(coord, core.Component(parentBox.Min, dim)))
	return left, right
}

// splitCost scores a candidate (left, right) partition under the configured
// heuristic, normalized by the root measure.
func (s *Sbvh) splitCost(boxL, boxR core.AABB, nL, nR int) float64 {
	switch s.opts.Heuristic {
	case OverlapSurfaceArea:
		overlap := boxL.Intersection(boxR).SurfaceArea()
		return (boxL.SurfaceArea()*float64(nL) + boxR.SurfaceArea()*float64(nR) +
			overlap*float64(nL+nR)) / s.rootSurfaceArea
	case Volume:
		return (boxL.Volume()*float64(nL) + boxR.Volume()*float64(nR)) / s.rootVolume
	case OverlapVolume:
		overlap := boxL.Intersection(boxR).Volume()
		return (boxL.Volume()*float64(nL) + boxR.Volume()*float64(nR) +
			overlap*float64(nL+nR)) / s.rootVolume
	default:
		return (boxL.SurfaceArea()*float64(nL) + boxR.SurfaceArea()*float64(nR)) / s.rootSurfaceArea
	}
}

// leafCost scores keeping the range as a single leaf
func (s *Sbvh) leafCost(box core.AABB, n int) float64 {
	switch s.opts.Heuristic {
	case Volume, OverlapVolume:
		return box.Volume() * float64(n) / s.rootVolume
	default:
		return box.SurfaceArea() * float64(n) / s.rootSurfaceArea
	}
}

// unsplittingCosts prices the three ways to place a straddling reference:
// duplicate it with clipped boxes, or grow one side's box by the whole
// reference and give up a reference on the other.
func (s *Sbvh) unsplittingCosts(boxL, boxR, refBox core.AABB, nL, nR int) (
	costDuplicate, costUnsplitLeft, costUnsplitRight float64) {

	costDuplicate = s.splitCost(boxL, boxR, nL, nR)
	costUnsplitLeft = s.splitCost(boxL.Union(refBox), boxR, nL, nR-1)
	costUnsplitRight = s.splitCost(boxL, boxR.Union(refBox), nL-1, nR)
	return costDuplicate, costUnsplitLeft, costUnsplitRight
}

func (b *sbvhBuilder) swapRefs(i, j int) {
	b.refs[i], b.refs[j] = b.refs[j], b.refs[i]
	b.refBoxes[i], b.refBoxes[j] = b.refBoxes[j], b.refBoxes[i]
	b.refCentroids[i], b.refCentroids[j] = b.refCentroids[j], b.refCentroids[i]
}

// refRangeSorter orders a reference range by centroid along one axis,
// keeping the three parallel arrays in sync
type refRangeSorter struct {
	b          *sbvhBuilder
	start, end int
	dim        int
}

func (r refRangeSorter) Len() int { return r.end - r.start }

func (r refRangeSorter) Less(i, j int) bool {
	return core.Component(r.b.refCentroids[r.start+i], r.dim) <
		core.Component(r.b.refCentroids[r.start+j], r.dim)
}

func (r refRangeSorter) Swap(i, j int) {
	r.b.swapRefs(r.start+i, r.start+j)
}

func bucketIndex(value, lo, extent float64, n int) int {
	k := int(float64(n) * (value - lo) / extent)
	if k < 0 {
		return 0
	}
	if k >= n {
		return n - 1
	}
	return k
}

func spliceInts(a []int, start, end int, left, right []int) []int {
	out := make([]int, 0, len(a)+len(left)+len(right)-(end-start))
	out = append(out, a[:start]...)
	out = append(out, left...)
	out = append(out, right...)
	return append(out, a[end:]...)
}

func spliceBoxes(a []core.AABB, start, end int, left, right []core.AABB) []core.AABB {
	out := make([]core.AABB, 0, len(a)+len(left)+len(right)-(end-start))
	out = append(out, a[:start]...)
	out = append(out, left...)
	out = append(out, right...)
	return append(out, a[end:]...)
}

func spliceVectors(a []r3.Vector, start, end int, left, right []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, 0, len(a)+len(left)+len(right)-(end-start))
	out = append(out, a[:start]...)
	out = append(out, left...)
	out = append(out, right...)
	return append(out, a[end:]...)
}
