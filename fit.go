package subdiv

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"honnef.co/go/subdiv/internal/xprec"
)

// FitResult is the outcome of fitting one patch: the new point for the
// patch's edge and the normal there.
type FitResult struct {
	Point  Point
	Normal Vec2
	// Conic is the fitted conic in curve coordinates, scaled so that its
	// gradient has roughly unit length near the samples. It is the zero Conic
	// for fallback results.
	Conic Conic
	Kind  ConicKind
	// Circle reports whether the circle-constrained family was used.
	Circle bool
	// Split reports whether the edge contained an inflection and the result
	// blends the fits of the two convex halves.
	Split bool
	// Fallback reports that no conic was usable and the result is the edge
	// midpoint.
	Fallback bool
}

// flatTolerance bounds the length of the summed endpoint normals below which
// they are considered to cancel.
const flatTolerance = 1e-6

// frame maps a patch into a local coordinate system centred on the sample
// centroid, with the farthest sample at distance 1.
type frame struct {
	toLocal Affine
	toWorld Affine
	radius  Scalar
}

func newFrame(samples []PatchPoint) (frame, bool) {
	var c Vec2
	for _, s := range samples {
		c = c.Add(Vec2(s.Vertex))
	}
	c = c.Div(Scalar(len(samples)))
	var r Scalar
	for _, s := range samples {
		r = max(r, s.Vertex.Distance(Point(c)))
	}
	if r == 0 || !isFinite(r) {
		return frame{}, false
	}
	return frame{
		toLocal: Translate(c.Negate()).ThenScale(1/r, 1/r),
		toWorld: Scale(r, r).ThenTranslate(c),
		radius:  r,
	}, true
}

type localSample struct {
	p      Point
	n      Vec2
	wp, wn Scalar
}

// localize maps the samples into the frame. Samples without a usable normal
// lose their normal weight.
func (f frame) localize(samples []PatchPoint) []localSample {
	out := make([]localSample, len(samples))
	for i, s := range samples {
		n := s.Normal.NormalizeOr(Vec2{})
		wn := s.NormWeight
		if n == (Vec2{}) {
			wn = 0
		}
		out[i] = localSample{
			p:  s.Vertex.Transform(f.toLocal),
			n:  n,
			wp: s.PointWeight,
			wn: wn,
		}
	}
	return out
}

// world returns the conic in curve coordinates, keeping its gradient scale.
func (f frame) world(q Conic) Conic {
	return q.Compose(f.toLocal).Scale(f.radius)
}

// rows fills the design rows of one sample: the point row φ with q = φ·c, and
// the rows gx, gy with ∇q = (gx·c, gy·c).
func rows(p Point, circle bool, phi, gx, gy []float64) {
	x, y := p.X, p.Y
	if circle {
		phi[0], phi[1], phi[2], phi[3] = x*x+y*y, x, y, 1
		gx[0], gx[1], gx[2], gx[3] = 2*x, 1, 0, 0
		gy[0], gy[1], gy[2], gy[3] = 2*y, 0, 1, 0
		return
	}
	phi[0], phi[1], phi[2], phi[3], phi[4], phi[5] = x*x, x*y, y*y, x, y, 1
	gx[0], gx[1], gx[2], gx[3], gx[4], gx[5] = 2*x, y, 0, 1, 0, 0
	gy[0], gy[1], gy[2], gy[3], gy[4], gy[5] = 0, x, 2*y, 0, 1, 0
}

// solveLocal fits a conic to local samples. It minimizes
//
//	Σ wp·q(p)² + Σ wn·(∇q(p)·t)² + W·(mean(∇q(p)·n) − 1)²
//
// where t is the tangent perpendicular to the sample normal n and W is the
// total normal weight. The first two terms vanish for any conic through the
// samples with matching normal directions; the last one fixes the scale and
// orientation of the coefficients. The normal equations are accumulated and
// solved in double-double precision.
func solveLocal(ls []localSample, circle bool, eps Scalar) (Conic, error) {
	dim := 6
	if circle {
		dim = 4
	}
	sys := xprec.NewSystem(dim)
	var buf [4][6]float64
	phi, gx, gy, tau := buf[0][:dim], buf[1][:dim], buf[2][:dim], buf[3][:dim]
	norm := make([]float64, dim)
	var total Scalar
	for _, s := range ls {
		rows(s.p, circle, phi, gx, gy)
		sys.AddOuter(phi, s.wp)
		if s.wn == 0 {
			continue
		}
		t := s.n.Perp()
		for j := range tau {
			tau[j] = t.X*gx[j] + t.Y*gy[j]
			norm[j] += s.wn * (s.n.X*gx[j] + s.n.Y*gy[j])
		}
		sys.AddOuter(tau, s.wn)
		total += s.wn
	}
	if total == 0 {
		return Conic{}, fmt.Errorf("%w: no sample carries a normal", ErrDegenerateFit)
	}
	for j := range norm {
		norm[j] /= total
	}
	sys.AddOuter(norm, total)
	sys.AddRHS(norm, total, 1)

	if err := checkConditioning(sys, eps); err != nil {
		return Conic{}, err
	}
	x, err := sys.Solve()
	if err != nil {
		return Conic{}, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}

	var q Conic
	if circle {
		q = Conic{A: x[0].Float(), C: x[0].Float(), D: x[1].Float(), E: x[2].Float(), F: x[3].Float()}
	} else {
		q = Conic{A: x[0].Float(), B: x[1].Float(), C: x[2].Float(), D: x[3].Float(), E: x[4].Float(), F: x[5].Float()}
	}
	if !q.IsFinite() {
		return Conic{}, fmt.Errorf("%w: conic coefficients %v", ErrNonFinite, q)
	}
	return q, nil
}

// checkConditioning rejects normal matrices whose smallest to largest
// eigenvalue ratio is below eps.
func checkConditioning(sys *xprec.System, eps Scalar) error {
	n := sys.Dim()
	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(n, sys.Float64s()), false) {
		return fmt.Errorf("%w: eigendecomposition did not converge", ErrDegenerateFit)
	}
	vals := eig.Values(nil)
	lo, hi := vals[0], vals[n-1]
	if !(hi > 0) || !isFinite(hi) {
		return fmt.Errorf("%w: normal matrix is not positive definite", ErrDegenerateFit)
	}
	if ratio := lo / hi; ratio < eps {
		return fmt.Errorf("%w: eigenvalue ratio %g below %g", ErrDegenerateFit, ratio, eps)
	}
	return nil
}

// straight reports whether the local samples lie on a line with parallel
// normals, within eps. Collinear samples whose normals disagree still carry
// curvature and are left to the conic fit.
func straight(ls []localSample, eps Scalar) bool {
	var cxx, cxy, cyy Scalar
	for _, s := range ls {
		cxx += s.p.X * s.p.X
		cxy += s.p.X * s.p.Y
		cyy += s.p.Y * s.p.Y
	}
	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy}), false) {
		return false
	}
	vals := eig.Values(nil)
	if vals[1] > 0 && vals[0]/vals[1] >= eps {
		return false
	}
	var ref Vec2
	for _, s := range ls {
		if s.wn == 0 {
			continue
		}
		if ref == (Vec2{}) {
			ref = s.n
			continue
		}
		if s.n.Dot(ref) <= 0 || math.Abs(s.n.Cross(ref)) > turnTolerance {
			return false
		}
	}
	return true
}

// rayDirection returns the direction along which the new point of the edge
// from a to b is sought: the mean of the endpoint normals, or the edge
// perpendicular when they cancel.
func rayDirection(a, b localSample) Vec2 {
	sum := a.n.Add(b.n)
	if sum.Hypot() > flatTolerance {
		return sum.Normalize()
	}
	hint := a.n
	if hint == (Vec2{}) {
		hint = b.n
	}
	return Line{a.p, b.p}.Normal(hint)
}

// evaluate intersects the local conic q with the ray from the midpoint of the
// edge a-b and returns the chosen intersection in curve coordinates.
func evaluate(q Conic, f frame, a, b localSample, bounds Rect, s SubdivisionSettings) (FitResult, error) {
	m := a.p.Midpoint(b.p)
	dir := rayDirection(a, b)
	roots, n := q.IntersectRay(m, dir)

	found := false
	var bestPt Point
	var bestN Vec2
	var bestScore Scalar
	for _, t := range roots[:n] {
		if !isFinite(t) || math.Abs(t) > 1 {
			continue
		}
		p := m.Translate(dir.Mul(t))
		nrm, ok := q.Normal(p)
		if !ok {
			continue
		}
		score := math.Abs(t)
		if s.GravitateSmallerAngles {
			score = math.Abs(nrm.AngleTo(dir))
		}
		if !found || score < bestScore {
			found = true
			bestPt, bestN, bestScore = p, nrm, score
		}
	}
	if !found {
		return FitResult{}, fmt.Errorf("%w: no intersection near the edge", ErrDegenerateFit)
	}
	if bestN.Dot(dir) < 0 {
		bestN = bestN.Negate()
	}

	pt := bestPt.Transform(f.toWorld)
	if !pt.IsFinite() || !bestN.IsFinite() {
		return FitResult{}, fmt.Errorf("%w: evaluated point %v", ErrNonFinite, pt)
	}
	if !bounds.Contains(pt) {
		return FitResult{}, fmt.Errorf("%w: point %v leaves the patch", ErrDegenerateFit, pt)
	}
	return FitResult{
		Point:  pt,
		Normal: bestN,
		Conic:  f.world(q),
		Kind:   q.Kind(),
	}, nil
}

// fitConvex fits a single conic to the patch and evaluates it on the edge,
// falling back from the general conic to the circle family.
func fitConvex(p Patch, s SubdivisionSettings) (FitResult, error) {
	f, ok := newFrame(p.Samples)
	if !ok {
		return FitResult{}, fmt.Errorf("%w: patch has no extent", ErrDegenerateFit)
	}
	ls := f.localize(p.Samples)
	a, b := ls[p.Edge], ls[p.Edge+1]
	if a.p == b.p {
		return FitResult{}, fmt.Errorf("%w: zero-length edge", ErrDegenerateFit)
	}

	pa, pb := p.Endpoints()
	if straight(ls, s.Epsilon) {
		var hint Vec2
		for _, l := range ls {
			hint = hint.Add(l.n)
		}
		n := Line{pa.Vertex, pb.Vertex}.Normal(hint)
		return FitResult{
			Point:  pa.Vertex.Midpoint(pb.Vertex),
			Normal: n,
			Conic:  Conic{D: n.X, E: n.Y, F: -n.Dot(Vec2(pa.Vertex))},
			Kind:   LineConic,
		}, nil
	}

	pts := make([]Point, len(p.Samples))
	for i, smp := range p.Samples {
		pts[i] = smp.Vertex
	}
	half := pa.Vertex.Distance(pb.Vertex) / 2
	bounds := BoundingRect(pts).Inflate(half, half)

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
		var res FitResult
		res, err = evaluate(q, f, a, b, bounds, s)
		if err != nil {
			continue
		}
		res.Circle = circle
		return res, nil
	}
	return FitResult{}, err
}

// FitPatch computes the new point and normal for the edge of p.
//
// With ConvexitySplit, a patch whose normals turn in both directions is first
// restricted to the convex run around its edge, and an inflection on the edge
// itself is handled by fitting both convex halves and blending their points.
//
// Samples that lie on a line and share one normal direction yield the exact
// edge midpoint with kind LineConic. Collinear samples whose normals turn are
// fitted like any other patch, since the normals describe a curve through the
// points; the result then is generally not the midpoint.
//
// FitPatch returns ErrInsufficientPatch for patches without a valid edge,
// ErrInvalidSettings for bad weights, and ErrDegenerateFit or ErrNonFinite
// when no conic is usable. Callers that need a result regardless can use
// [LinearFallback].
func FitPatch(p Patch, s SubdivisionSettings) (FitResult, error) {
	if err := s.Validate(); err != nil {
		return FitResult{}, err
	}
	if err := p.validate(); err != nil {
		return FitResult{}, err
	}
	return fitPatch(p, s)
}

func fitPatch(p Patch, s SubdivisionSettings) (FitResult, error) {
	if !s.ConvexitySplit {
		return fitConvex(p, s)
	}
	turns := p.turns()
	e := p.Edge
	var left, right int
	if e >= 1 {
		left = turnSign(turns[e-1])
	}
	if e+1 < len(turns) {
		right = turnSign(turns[e+1])
	}
	if left != 0 && right != 0 && left != right {
		return fitInflection(p, turns, left, right, s)
	}

	sign := turnSign(turns[e])
	if sign == 0 {
		sign = left
	}
	if sign == 0 {
		sign = right
	}
	if sign == 0 {
		return fitConvex(p, s)
	}
	lo, hi := p.convexRun(turns, sign)
	return fitConvex(p.sub(lo, hi), s)
}

// fitInflection fits the convex halves on either side of an inflection that
// lies on the patch's edge and blends their points.
func fitInflection(p Patch, turns []Scalar, left, right int, s SubdivisionSettings) (FitResult, error) {
	e := p.Edge
	lo := e - 1
	for lo > 0 {
		if sg := turnSign(turns[lo-1]); sg != 0 && sg != left {
			break
		}
		lo--
	}
	hi := e + 2
	for hi < len(p.Samples)-1 {
		if sg := turnSign(turns[hi]); sg != 0 && sg != right {
			break
		}
		hi++
	}

	resL, errL := fitConvex(p.sub(lo, e+1), s)
	resR, errR := fitConvex(p.sub(e, hi), s)
	switch {
	case errL != nil && errR != nil:
		return FitResult{}, errL
	case errL != nil:
		resR.Split = true
		return resR, nil
	case errR != nil:
		resL.Split = true
		return resL, nil
	}

	w := Scalar(0.5)
	if s.WeightedInflPointLocation {
		ka := p.curvatureAt(turns, e-1)
		kb := p.curvatureAt(turns, e+1)
		if sum := ka + kb; sum > 0 && isFinite(sum) {
			w = ka / sum
		}
	}
	dominant := resL
	if w < 0.5 {
		dominant = resR
	}
	return FitResult{
		Point:  resR.Point.Lerp(resL.Point, w),
		Normal: resR.Normal.Lerp(resL.Normal, w).NormalizeOr(dominant.Normal),
		Conic:  dominant.Conic,
		Kind:   dominant.Kind,
		Circle: resL.Circle || resR.Circle,
		Split:  true,
	}, nil
}

// LinearFallback returns the midpoint of the edge a-b with the normalized
// mean of the endpoint normals, or the edge perpendicular when those cancel.
func LinearFallback(a, b PatchPoint) FitResult {
	na := a.Normal.NormalizeOr(Vec2{})
	nb := b.Normal.NormalizeOr(Vec2{})
	n := na.Add(nb)
	if n.Hypot() > flatTolerance {
		n = n.Normalize()
	} else {
		hint := na
		if hint == (Vec2{}) {
			hint = nb
		}
		n = Line{a.Vertex, b.Vertex}.Normal(hint).NormalizeOr(hint)
	}
	return FitResult{
		Point:    a.Vertex.Midpoint(b.Vertex),
		Normal:   n,
		Kind:     DegenerateConic,
		Fallback: true,
	}
}

// FitConic fits a single conic to samples without evaluating it, using the
// circle family if s.CircleNormals is set. The conic is returned in curve
// coordinates.
func FitConic(samples []PatchPoint, s SubdivisionSettings) (Conic, error) {
	if err := s.Validate(); err != nil {
		return Conic{}, err
	}
	if len(samples) < 2 {
		return Conic{}, fmt.Errorf("%w: %d samples, need at least 2", ErrInsufficientPatch, len(samples))
	}
	if err := (Patch{Samples: samples}).validate(); err != nil {
		return Conic{}, err
	}
	f, ok := newFrame(samples)
	if !ok {
		return Conic{}, fmt.Errorf("%w: samples have no extent", ErrDegenerateFit)
	}
	q, err := solveLocal(f.localize(samples), s.CircleNormals, s.Epsilon)
	if err != nil {
		return Conic{}, err
	}
	return f.world(q), nil
}

// fitOrFallback is FitPatch for callers that always need a point. The error
// is the reason the fallback was taken.
func fitOrFallback(p Patch, s SubdivisionSettings) (FitResult, error) {
	res, err := fitPatch(p, s)
	if err == nil {
		return res, nil
	}
	a, b := p.Endpoints()
	return LinearFallback(a, b), err
}
