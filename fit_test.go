package subdiv

import (
	"errors"
	"math"
	"testing"
)

func makePatch(ts []Scalar, edge int, s SubdivisionSettings, f func(Scalar) (Point, Vec2)) Patch {
	samples := make([]PatchPoint, len(ts))
	for i, t := range ts {
		pt, n := f(t)
		pw, nw := s.OuterPointWeight, s.OuterNormalWeight
		if i == edge || i == edge+1 {
			pw, nw = s.MiddlePointWeight, s.MiddleNormalWeight
		}
		samples[i] = PatchPoint{Vertex: pt, Normal: n, PointWeight: pw, NormWeight: nw}
	}
	return Patch{Samples: samples, Edge: edge}
}

// assertOnConic checks that res lies on q, with q's normal, on the ray from
// the edge midpoint along the mean endpoint normal.
func assertOnConic(t *testing.T, p Patch, res FitResult, q Conic) {
	t.Helper()
	n, ok := q.Normal(res.Point)
	if !ok {
		t.Fatalf("no normal at %v", res.Point)
	}
	g := q.Gradient(res.Point).Hypot()
	if d := math.Abs(q.Eval(res.Point)) / g; d > 1e-9 {
		t.Errorf("point %v is %v away from the conic", res.Point, d)
	}
	if n.Dot(res.Normal) < 0 {
		n = n.Negate()
	}
	if a := math.Abs(n.AngleTo(res.Normal)); a > 1e-7 {
		t.Errorf("normal %v deviates from %v by %v", res.Normal, n, a)
	}
	a, b := p.Endpoints()
	dir := a.Normal.Normalize().Add(b.Normal.Normalize())
	off := res.Point.Sub(a.Vertex.Midpoint(b.Vertex))
	if c := math.Abs(off.Cross(dir.Normalize())); c > 1e-9 {
		t.Errorf("point %v is %v off the edge's ray", res.Point, c)
	}
}

func TestFitPatchReproducesConics(t *testing.T) {
	circle := Circle{Center: Pt(2, -1), Radius: 3}
	ellipse := NewEllipse(Pt(1, 2), Vec(3, 1.5), 0.3)
	tests := []struct {
		name  string
		ts    []Scalar
		conic Conic
		f     func(Scalar) (Point, Vec2)
	}{
		{
			name:  "circle",
			ts:    []Scalar{0.1, 0.35, 0.7, 0.9, 1.3, 1.6},
			conic: circle.Conic(),
			f:     func(th Scalar) (Point, Vec2) { return circle.Point(th), circle.Normal(th) },
		},
		{
			name:  "ellipse",
			ts:    []Scalar{0.2, 0.45, 0.7, 0.95, 1.2, 1.45},
			conic: ellipse.Conic(),
			f:     func(th Scalar) (Point, Vec2) { return ellipse.Point(th), ellipse.Normal(th) },
		},
		{
			name:  "parabola",
			ts:    []Scalar{-0.9, -0.5, -0.2, 0.1, 0.4, 0.8},
			conic: Conic{A: -1, E: 1},
			f:     func(x Scalar) (Point, Vec2) { return Pt(x, x*x), Vec(-2*x, 1).Normalize() },
		},
		{
			name:  "hyperbola",
			ts:    []Scalar{0.5, 0.7, 1, 1.3, 1.8, 2.5},
			conic: Conic{B: 1, F: -1},
			f:     func(x Scalar) (Point, Vec2) { return Pt(x, 1/x), Vec(1/x, x).Normalize() },
		},
	}
	for _, gravitate := range []bool{false, true} {
		s := DefaultSubdivisionSettings()
		s.GravitateSmallerAngles = gravitate
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := makePatch(tt.ts, 2, s, tt.f)
				res, err := FitPatch(p, s)
				if err != nil {
					t.Fatal(err)
				}
				if res.Fallback || res.Split || res.Circle {
					t.Errorf("got %+v, expected a plain conic fit", res)
				}
				assertOnConic(t, p, res, tt.conic)
			})
		}
	}
}

func TestFitPatchCircleMidAngle(t *testing.T) {
	c := Circle{Center: Pt(2, -1), Radius: 3}
	s := DefaultSubdivisionSettings()
	p := makePatch([]Scalar{0.1, 0.35, 0.7, 0.9, 1.3, 1.6}, 2, s, func(th Scalar) (Point, Vec2) {
		return c.Point(th), c.Normal(th)
	})
	res, err := FitPatch(p, s)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, res.Point, c.Point(0.8), 1e-9)
	assertNearVec(t, res.Normal, c.Normal(0.8), 1e-9)

	q, err := FitConic(p.Samples, s)
	if err != nil {
		t.Fatal(err)
	}
	// On a circle the fitted gradient is the unit normal, which pins down
	// the scale of the coefficients.
	diff(t, c.Conic(), q, approx(1e-9))
}

func TestFitPatchCircleFamily(t *testing.T) {
	c := Circle{Center: Pt(0, 0), Radius: 1}
	f := func(th Scalar) (Point, Vec2) { return c.Point(th), c.Normal(th) }

	s := DefaultSubdivisionSettings()
	s.CircleNormals = true
	res, err := FitPatch(makePatch([]Scalar{0, 0.3, 0.6, 0.9}, 1, s, f), s)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Circle {
		t.Error("expected a circle fit")
	}
	assertNear(t, res.Point, c.Point(0.45), 1e-9)

	// Two samples don't determine a general conic; the circle family takes
	// over.
	s = DefaultSubdivisionSettings()
	res, err = FitPatch(makePatch([]Scalar{0, 2 * math.Pi / 3}, 0, s, f), s)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Circle {
		t.Errorf("got %+v, expected the circle fallback", res)
	}
	assertNear(t, res.Point, c.Point(math.Pi/3), 1e-9)
}

func TestFitPatchStraight(t *testing.T) {
	tests := []struct {
		name string
		ts   []Scalar
		edge int
		f    func(Scalar) (Point, Vec2)
		want Point
		n    Vec2
	}{
		{"diagonal", []Scalar{0, 1, 2, 3}, 1, func(x Scalar) (Point, Vec2) { return Pt(x, x), Vec(-1, 1) }, Pt(1.5, 1.5), Vec(-1, 1).Normalize()},
		{"axis", []Scalar{-0.5, 0, 0.5, 1}, 1, func(x Scalar) (Point, Vec2) { return Pt(x, 0), Vec(0, 1) }, Pt(0.25, 0), Vec(0, 1)},
		{"open end", []Scalar{0, 1, 3}, 0, func(x Scalar) (Point, Vec2) { return Pt(x, -2), Vec(0, -2) }, Pt(0.5, -2), Vec(0, -1)},
	}
	s := DefaultSubdivisionSettings()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FitPatch(makePatch(tt.ts, tt.edge, s, tt.f), s)
			if err != nil {
				t.Fatal(err)
			}
			if res.Point != tt.want {
				t.Errorf("got %v, want the exact midpoint %v", res.Point, tt.want)
			}
			if res.Kind != LineConic || res.Fallback {
				t.Errorf("got kind %v, fallback %t, want %v", res.Kind, res.Fallback, LineConic)
			}
			assertNearVec(t, res.Normal, tt.n, 1e-15)
		})
	}
}

func TestFitPatchCollinearDivergingNormals(t *testing.T) {
	// Collinear points whose normals turn describe a curve through those
	// points, not a line.
	s := DefaultSubdivisionSettings()
	p := makePatch([]Scalar{-1, 0, 1, 2}, 1, s, func(x Scalar) (Point, Vec2) {
		return Pt(x, 0), Vec(-0.2*x, 1).Normalize()
	})
	res, err := FitPatch(p, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind == LineConic || res.Fallback {
		t.Errorf("got kind %v, fallback %t, want a curved conic", res.Kind, res.Fallback)
	}
}

func TestFitPatchInflection(t *testing.T) {
	cubic := func(x Scalar) (Point, Vec2) {
		return Pt(x, x*x*x), Vec(-3*x*x, 1).Normalize()
	}
	ts := []Scalar{-1.25, -0.75, -0.25, 0.25, 0.75, 1.25}
	for _, weighted := range []bool{false, true} {
		s := DefaultSubdivisionSettings()
		s.WeightedInflPointLocation = weighted
		res, err := FitPatch(makePatch(ts, 2, s, cubic), s)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Split {
			t.Fatalf("got %+v, expected the inflection to be split", res)
		}
		// The curve is point symmetric about the inflection.
		if d := res.Point.Distance(Pt(0, 0)); d > 1e-6 {
			t.Errorf("got %v, want the origin", res.Point)
		}
		if res.Normal.Y <= 0 {
			t.Errorf("got normal %v, expected it to agree with the samples", res.Normal)
		}
	}
}

func TestFitPatchErrors(t *testing.T) {
	s := DefaultSubdivisionSettings()
	a := PatchPoint{Vertex: Pt(0, 0), Normal: Vec(0, 1), PointWeight: 1, NormWeight: 1}
	b := PatchPoint{Vertex: Pt(1, 0), Normal: Vec(0, 1), PointWeight: 1, NormWeight: 1}

	if _, err := FitPatch(NewPatch([]PatchPoint{a}), s); !errors.Is(err, ErrInsufficientPatch) {
		t.Errorf("single sample: got %v, want ErrInsufficientPatch", err)
	}
	if _, err := FitPatch(Patch{Samples: []PatchPoint{a, b}, Edge: 1}, s); !errors.Is(err, ErrInsufficientPatch) {
		t.Errorf("edge out of range: got %v, want ErrInsufficientPatch", err)
	}
	neg := b
	neg.NormWeight = -1
	if _, err := FitPatch(NewPatch([]PatchPoint{a, neg}), s); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("negative weight: got %v, want ErrInvalidSettings", err)
	}
	bad := s
	bad.Epsilon = math.NaN()
	if _, err := FitPatch(NewPatch([]PatchPoint{a, b}), bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("NaN epsilon: got %v, want ErrInvalidSettings", err)
	}

	// Without normal weights nothing fixes the scale of the conic.
	c := Circle{Radius: 1}
	noNormals := s
	noNormals.MiddleNormalWeight = 0
	noNormals.OuterNormalWeight = 0
	p := makePatch([]Scalar{0, 0.3, 0.6, 0.9}, 1, noNormals, func(th Scalar) (Point, Vec2) {
		return c.Point(th), c.Normal(th)
	})
	if _, err := FitPatch(p, noNormals); !errors.Is(err, ErrDegenerateFit) {
		t.Errorf("no normals: got %v, want ErrDegenerateFit", err)
	}
}

func TestLinearFallback(t *testing.T) {
	a := PatchPoint{Vertex: Pt(0, 0), Normal: Vec(0, 2)}
	b := PatchPoint{Vertex: Pt(2, 0), Normal: Vec(0, 1)}
	diff(t, FitResult{Point: Pt(1, 0), Normal: Vec(0, 1), Fallback: true}, LinearFallback(a, b))

	// Cancelling normals use the edge perpendicular on a's side.
	b.Normal = Vec(0, -1)
	res := LinearFallback(a, b)
	assertNearVec(t, res.Normal, Vec(0, 1), 1e-15)

	a.Normal = Vec(0, -3)
	b.Normal = Vec(0, 3)
	res = LinearFallback(a, b)
	assertNearVec(t, res.Normal, Vec(0, -1), 1e-15)
}
