package subdiv

import (
	"fmt"
	"math"
)

// RefineReport describes a run of [Refine].
type RefineReport struct {
	// Iterations is the number of iterations performed.
	Iterations int
	// MaxAngleChange is the largest normal change, in radians, of the last
	// iteration.
	MaxAngleChange Scalar
	Converged      bool
	// Fallbacks is the number of vertices of the last iteration whose fit
	// failed and which kept their edge-estimated normal.
	Fallbacks int
	// ReferenceDeviation is the largest angle between the refined normals and
	// the normals estimated from a reference subdivision of the refined
	// curve. It is only computed if TestSubdivLevel is positive.
	ReferenceDeviation Scalar
}

// Refine recomputes the normals of c. The vertices are left unchanged.
//
// Normals are seeded from the adjacent edges, weighted by edge length if
// ss.AreaWeightedNormals is set. Each iteration then fits a conic to the
// patch around every vertex, using the current normals, and replaces the
// vertex's normal by the conic's normal there. Iteration stops once no normal
// changes by rs.AngleLimit or more.
//
// If rs.MaxRefinementIterations is reached first, Refine returns the curve of
// the last iteration together with an error wrapping
// ErrNonConvergentRefinement. The curve is usable in that case.
func Refine(c Curve, rs NormalRefinementSettings, ss SubdivisionSettings) (Curve, RefineReport, error) {
	if err := rs.Validate(); err != nil {
		return Curve{}, RefineReport{}, err
	}
	if err := ss.Validate(); err != nil {
		return Curve{}, RefineReport{}, err
	}
	if err := c.Validate(); err != nil {
		return Curve{}, RefineReport{}, err
	}

	estimate := c.EstimateNormals(ss.AreaWeightedNormals)
	cur := c.WithNormals(estimate)
	var rep RefineReport
	for rep.Iterations < rs.MaxRefinementIterations {
		next, fails, err := refineNormals(cur, estimate, ss)
		if err != nil {
			return Curve{}, rep, err
		}
		rep.Iterations++
		rep.MaxAngleChange = maxAngleChange(cur.Normals, next)
		rep.Fallbacks = fails
		cur = cur.WithNormals(next)
		if rep.MaxAngleChange < rs.AngleLimit {
			rep.Converged = true
			break
		}
	}

	if rs.TestSubdivLevel > 0 {
		dev, err := referenceDeviation(cur, rs.TestSubdivLevel, ss)
		if err != nil {
			return Curve{}, rep, err
		}
		rep.ReferenceDeviation = dev
	}

	if !rep.Converged {
		Logger().Warn("normal refinement did not converge",
			"iterations", rep.Iterations,
			"max_angle_change", rep.MaxAngleChange,
			"angle_limit", rs.AngleLimit)
		return cur, rep, fmt.Errorf("%w: max angle change %g after %d iterations, limit %g",
			ErrNonConvergentRefinement, rep.MaxAngleChange, rep.Iterations, rs.AngleLimit)
	}
	return cur, rep, nil
}

// refineNormals performs one refinement iteration. Vertices whose fit fails
// get their normal from fallback. A non-finite normal is an error.
func refineNormals(c Curve, fallback []Vec2, s SubdivisionSettings) ([]Vec2, int, error) {
	out := make([]Vec2, c.Len())
	ranges := splitRanges(c.Len(), s.TestToggle)
	fails := make([]int, len(ranges))
	err := runRanges(ranges, func(k, lo, hi int) error {
		for i := lo; i < hi; i++ {
			n, err := vertexNormal(VertexPatch(c, i, s), s)
			if err != nil {
				Logger().Debug("vertex normal fallback", "vertex", i, "err", err)
				n = fallback[i]
				fails[k]++
			}
			if !n.IsFinite() {
				return fmt.Errorf("%w: normal %v at vertex %d", ErrNonFinite, n, i)
			}
			out[i] = n
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	var total int
	for _, f := range fails {
		total += f
	}
	return out, total, nil
}

// vertexNormal fits a conic to a vertex patch and returns its normal at the
// patch's central vertex, oriented like that vertex's current normal.
func vertexNormal(p Patch, s SubdivisionSettings) (Vec2, error) {
	if len(p.Samples) < 2 {
		return Vec2{}, fmt.Errorf("%w: %d samples, need at least 2", ErrInsufficientPatch, len(p.Samples))
	}
	if s.ConvexitySplit {
		p = p.vertexRun()
	}
	f, ok := newFrame(p.Samples)
	if !ok {
		return Vec2{}, fmt.Errorf("%w: patch has no extent", ErrDegenerateFit)
	}
	ls := f.localize(p.Samples)
	center := ls[p.Edge]
	orient := func(n Vec2) Vec2 {
		if n.Dot(center.n) < 0 {
			return n.Negate()
		}
		return n
	}

	if straight(ls, s.Epsilon) {
		first, last := p.Samples[0].Vertex, p.Samples[len(p.Samples)-1].Vertex
		return Line{first, last}.Normal(center.n), nil
	}

	families := []bool{false, true}
	if s.CircleNormals {
		families = families[1:]
	}
	var err error
	for _, circle := range families {
		var q Conic
		q, err = solveLocal(ls, circle, s.Epsilon)
		if err != nil {
			continue
		}
		// The frame scales uniformly, so local normals are curve normals.
		if n, ok := q.Normal(center.p); ok {
			return orient(n), nil
		}
		err = fmt.Errorf("%w: vanishing gradient at the vertex", ErrDegenerateFit)
	}
	return Vec2{}, err
}

// vertexRun restricts a vertex patch to the convex run around its central
// sample. A vertex at an inflection keeps just its direct neighbours.
func (p Patch) vertexRun() Patch {
	turns := p.turns()
	e := p.Edge
	var left, right int
	if e >= 1 {
		left = turnSign(turns[e-1])
	}
	if e < len(turns) {
		right = turnSign(turns[e])
	}
	if left != 0 && right != 0 && left != right {
		return p.sub(max(e-1, 0), min(e+1, len(p.Samples)-1))
	}
	sign := left
	if sign == 0 {
		sign = right
	}
	if sign == 0 {
		return p
	}
	compatible := func(th Scalar) bool {
		sg := turnSign(th)
		return sg == 0 || sg == sign
	}
	lo := e
	for lo > 0 && compatible(turns[lo-1]) {
		lo--
	}
	hi := e
	for hi < len(turns) && compatible(turns[hi]) {
		hi++
	}
	return p.sub(lo, hi)
}

func maxAngleChange(a, b []Vec2) Scalar {
	var m Scalar
	for i := range a {
		na := a[i].NormalizeOr(Vec2{})
		nb := b[i].NormalizeOr(Vec2{})
		if na == (Vec2{}) || nb == (Vec2{}) {
			continue
		}
		m = max(m, math.Abs(na.AngleTo(nb)))
	}
	return m
}

// referenceDeviation subdivides c level times and compares c's normals with
// the normals the reference curve's edges imply at c's vertices.
func referenceDeviation(c Curve, level int, s SubdivisionSettings) (Scalar, error) {
	ref, err := SubdivideConic(c, level, s)
	if err != nil {
		return 0, fmt.Errorf("reference subdivision: %w", err)
	}
	est := ref.EstimateNormals(s.AreaWeightedNormals)
	own := make([]Vec2, c.Len())
	for i := range own {
		own[i] = est[i<<level]
	}
	return maxAngleChange(c.Normals, own), nil
}
