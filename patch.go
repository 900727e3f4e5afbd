package subdiv

import (
	"fmt"
	"math"
)

// PatchPoint is one weighted sample of a patch.
type PatchPoint struct {
	Vertex      Point
	Normal      Vec2
	PointWeight Scalar
	NormWeight  Scalar
}

// Patch is the window of samples used to compute the new point of one edge.
type Patch struct {
	Samples []PatchPoint
	// Edge is the index of the edge's first endpoint in Samples. The second
	// endpoint is Samples[Edge+1].
	Edge int
}

// NewPatch returns a patch whose edge is the central pair of samples.
func NewPatch(samples []PatchPoint) Patch {
	return Patch{Samples: samples, Edge: max(0, (len(samples)-2)/2)}
}

// Endpoints returns the two samples of the patch's edge.
func (p Patch) Endpoints() (PatchPoint, PatchPoint) {
	return p.Samples[p.Edge], p.Samples[p.Edge+1]
}

func (p Patch) validate() error {
	if len(p.Samples) < 2 {
		return fmt.Errorf("%w: %d samples, need at least 2", ErrInsufficientPatch, len(p.Samples))
	}
	if p.Edge < 0 || p.Edge+1 >= len(p.Samples) {
		return fmt.Errorf("%w: edge %d out of range for %d samples", ErrInsufficientPatch, p.Edge, len(p.Samples))
	}
	for i, s := range p.Samples {
		if !s.Vertex.IsFinite() {
			return fmt.Errorf("%w: sample %d at %v", ErrNonFinite, i, s.Vertex)
		}
		if !isFinite(s.PointWeight) || s.PointWeight < 0 || !isFinite(s.NormWeight) || s.NormWeight < 0 {
			return fmt.Errorf("%w: sample %d has weights %v, %v", ErrInvalidSettings, i, s.PointWeight, s.NormWeight)
		}
	}
	return nil
}

// sub returns the patch of samples lo through hi inclusive. The edge must lie
// within that range.
func (p Patch) sub(lo, hi int) Patch {
	return Patch{Samples: p.Samples[lo : hi+1], Edge: p.Edge - lo}
}

// turnTolerance is the angle below which two consecutive normals count as
// parallel when looking for inflections.
const turnTolerance = 1e-9

// turns returns the signed angle between each pair of consecutive normals.
// Pairs involving a zero normal have a turn of zero.
func (p Patch) turns() []Scalar {
	out := make([]Scalar, len(p.Samples)-1)
	for j := range out {
		a := p.Samples[j].Normal
		b := p.Samples[j+1].Normal
		if a.Hypot2() == 0 || b.Hypot2() == 0 {
			continue
		}
		out[j] = a.AngleTo(b)
	}
	return out
}

func turnSign(th Scalar) int {
	switch {
	case th > turnTolerance:
		return 1
	case th < -turnTolerance:
		return -1
	default:
		return 0
	}
}

// convexRun returns the widest range of samples around the edge whose turns
// all have the given sign or are flat.
func (p Patch) convexRun(turns []Scalar, sign int) (lo, hi int) {
	compatible := func(th Scalar) bool {
		s := turnSign(th)
		return s == 0 || s == sign
	}
	lo = p.Edge
	for lo > 0 && compatible(turns[lo-1]) {
		lo--
	}
	hi = p.Edge + 1
	for hi < len(p.Samples)-1 && compatible(turns[hi]) {
		hi++
	}
	return lo, hi
}

func middleSample(c Curve, i int, s SubdivisionSettings) PatchPoint {
	return PatchPoint{
		Vertex:      c.Vertex(i),
		Normal:      c.Normal(i),
		PointWeight: s.MiddlePointWeight,
		NormWeight:  s.MiddleNormalWeight,
	}
}

func outerSample(c Curve, i int, s SubdivisionSettings) PatchPoint {
	return PatchPoint{
		Vertex:      c.Vertex(i),
		Normal:      c.Normal(i),
		PointWeight: s.OuterPointWeight,
		NormWeight:  s.OuterNormalWeight,
	}
}

// EdgePatch assembles the patch for the edge from vertex i to vertex i+1: the
// two endpoints with the middle weights, and up to PatchSize neighbours on
// each side with the outer weights. Open curves get fewer neighbours near their
// ends. Closed curves never repeat a vertex within one patch.
func EdgePatch(c Curve, i int, s SubdivisionSettings) Patch {
	n := c.Len()
	var availLeft, availRight int
	if c.Closed {
		availLeft = (n - 2) / 2
		availRight = availLeft
	} else {
		availLeft = i
		availRight = n - 2 - i
	}

	var left, right int
	if s.DynamicPatchSize {
		reach := Scalar(s.PatchSize) * c.Edge(i).Length()
		left = dynamicNeighbours(c, i, -1, availLeft, reach, s.PatchSize)
		right = dynamicNeighbours(c, i+1, +1, availRight, reach, s.PatchSize)
	} else {
		left = min(availLeft, s.PatchSize)
		right = min(availRight, s.PatchSize)
	}

	samples := make([]PatchPoint, 0, left+right+2)
	for k := left; k >= 1; k-- {
		samples = append(samples, outerSample(c, i-k, s))
	}
	samples = append(samples, middleSample(c, i, s), middleSample(c, i+1, s))
	for k := 1; k <= right; k++ {
		samples = append(samples, outerSample(c, i+1+k, s))
	}
	return Patch{Samples: samples, Edge: left}
}

// dynamicNeighbours counts the neighbours to take when walking from vertex
// from in direction dir. It takes up to twice patchSize neighbours, stops
// once their accumulated chord length exceeds reach, and stops before a
// neighbour whose normal turns by π/2 or more. The first neighbour is always
// taken when one is available.
func dynamicNeighbours(c Curve, from, dir, avail int, reach Scalar, patchSize int) int {
	if patchSize == 0 || avail == 0 {
		return 0
	}
	limit := min(avail, 2*patchSize)
	var arc Scalar
	prev := from
	k := 0
	for k < limit {
		next := prev + dir
		arc += c.Vertex(prev).Distance(c.Vertex(next))
		if k >= 1 {
			if arc > reach {
				break
			}
			na := c.Normal(prev).NormalizeOr(Vec2{})
			nb := c.Normal(next).NormalizeOr(Vec2{})
			if na.Dot(nb) <= 0 {
				break
			}
		}
		k++
		prev = next
	}
	return k
}

// VertexPatch assembles the patch centred on vertex i, used to re-estimate
// its normal. The vertex carries the middle weights and is stored at index
// Edge; Edge+1 is its right neighbour if it has one.
func VertexPatch(c Curve, i int, s SubdivisionSettings) Patch {
	n := c.Len()
	var availLeft, availRight int
	if c.Closed {
		availLeft = (n - 1) / 2
		availRight = availLeft
	} else {
		availLeft = i
		availRight = n - 1 - i
	}
	size := max(s.PatchSize, 1)
	left := min(availLeft, size)
	right := min(availRight, size)

	samples := make([]PatchPoint, 0, left+right+1)
	for k := left; k >= 1; k-- {
		samples = append(samples, outerSample(c, i-k, s))
	}
	samples = append(samples, middleSample(c, i, s))
	for k := 1; k <= right; k++ {
		samples = append(samples, outerSample(c, i+k, s))
	}
	return Patch{Samples: samples, Edge: left}
}

// curvatureAt estimates the unsigned curvature between samples j and j+1 as
// turning angle over distance.
func (p Patch) curvatureAt(turns []Scalar, j int) Scalar {
	d := p.Samples[j].Vertex.Distance(p.Samples[j+1].Vertex)
	if d == 0 {
		return math.Inf(1)
	}
	return math.Abs(turns[j]) / d
}
