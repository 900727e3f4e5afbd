package subdiv

import (
	"errors"
	"math"
	"testing"
)

func unitSquare() Curve {
	return Curve{
		Vertices: []Point{Pt(1, 1), Pt(-1, 1), Pt(-1, -1), Pt(1, -1)},
		Normals:  []Vec2{Vec(1, 1), Vec(-1, 1), Vec(-1, -1), Vec(1, -1)},
		Closed:   true,
	}
}

func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		ok    bool
	}{
		{"square", unitSquare(), true},
		{"open segment", Curve{Vertices: []Point{Pt(0, 0), Pt(1, 0)}, Normals: make([]Vec2, 2)}, true},
		{"count mismatch", Curve{Vertices: []Point{Pt(0, 0), Pt(1, 0)}, Normals: make([]Vec2, 1)}, false},
		{"closed with two vertices", Curve{Vertices: []Point{Pt(0, 0), Pt(1, 0)}, Normals: make([]Vec2, 2), Closed: true}, false},
		{"single vertex", Curve{Vertices: []Point{Pt(0, 0)}, Normals: make([]Vec2, 1)}, false},
		{"nan vertex", Curve{Vertices: []Point{Pt(0, math.NaN()), Pt(1, 0)}, Normals: make([]Vec2, 2)}, false},
		{"infinite normal", Curve{Vertices: []Point{Pt(0, 0), Pt(1, 0)}, Normals: []Vec2{Vec(math.Inf(1), 0), {}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.curve.Validate()
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidCurve) {
				t.Fatalf("got error %v, want ErrInvalidCurve", err)
			}
			var ice *InvalidCurveError
			if !errors.As(err, &ice) || ice.Reason == "" {
				t.Errorf("got %#v, want an *InvalidCurveError with a reason", err)
			}
		})
	}
}

func TestCurveIndexing(t *testing.T) {
	c := unitSquare()
	if got := c.Vertex(-1); got != Pt(1, -1) {
		t.Errorf("Vertex(-1) = %v", got)
	}
	if got := c.Vertex(5); got != Pt(-1, 1) {
		t.Errorf("Vertex(5) = %v", got)
	}
	if got := c.Edge(3); got != (Line{Pt(1, -1), Pt(1, 1)}) {
		t.Errorf("Edge(3) = %v", got)
	}
	if c.NumEdges() != 4 {
		t.Errorf("closed square has %d edges", c.NumEdges())
	}

	open := c
	open.Closed = false
	if open.NumEdges() != 3 {
		t.Errorf("open square has %d edges", open.NumEdges())
	}
	defer func() {
		if recover() == nil {
			t.Error("expected out of range access on an open curve to panic")
		}
	}()
	open.Vertex(4)
}

func TestCurveEstimateNormals(t *testing.T) {
	c := unitSquare()
	s := math.Sqrt2 / 2
	want := []Vec2{Vec(s, s), Vec(-s, s), Vec(-s, -s), Vec(s, -s)}

	c.Normals = make([]Vec2, 4)
	diff(t, want, c.EstimateNormals(false), approx(1e-15))

	// Clockwise order still yields outward normals.
	cw := Curve{
		Vertices: []Point{Pt(1, -1), Pt(-1, -1), Pt(-1, 1), Pt(1, 1)},
		Normals:  make([]Vec2, 4),
		Closed:   true,
	}
	diff(t, []Vec2{want[3], want[2], want[1], want[0]}, cw.EstimateNormals(false), approx(1e-15))

	// Existing normals decide the orientation.
	inward := unitSquare()
	for i, n := range inward.Normals {
		inward.Normals[i] = n.Negate()
	}
	got := inward.EstimateNormals(false)
	for i := range got {
		assertNearVec(t, want[i].Negate(), got[i], 1e-15)
	}
}

func TestCurveEstimateNormalsAreaWeighted(t *testing.T) {
	// The long edge dominates the vertex normal when weighting by length.
	c := Curve{
		Vertices: []Point{Pt(0, 0), Pt(4, 0), Pt(4, 1)},
		Normals:  make([]Vec2, 3),
	}
	uniform := c.EstimateNormals(false)
	weighted := c.EstimateNormals(true)
	s := math.Sqrt2 / 2
	assertNearVec(t, Vec(s, -s), uniform[1], 1e-15)
	if !(weighted[1].Y < -weighted[1].X) {
		t.Errorf("got %v, expected the normal to lean towards the long edge's normal", weighted[1])
	}
	assertNearVec(t, Vec(0, -1), uniform[0], 1e-15)
	assertNearVec(t, Vec(1, 0), uniform[2], 1e-15)
}

func TestNewCurveEstimates(t *testing.T) {
	c, err := NewCurve([]Point{Pt(1, 1), Pt(-1, 1), Pt(-1, -1), Pt(1, -1)}, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	s := math.Sqrt2 / 2
	diff(t, []Vec2{Vec(s, s), Vec(-s, s), Vec(-s, -s), Vec(s, -s)}, c.Normals, approx(1e-15))

	if _, err := NewCurve([]Point{Pt(0, 0)}, nil, false); !errors.Is(err, ErrInvalidCurve) {
		t.Errorf("got error %v, want ErrInvalidCurve", err)
	}
}

func TestCurveSignedArea(t *testing.T) {
	c := unitSquare()
	if a := c.SignedArea(); a != 4 {
		t.Errorf("got area %v, want 4", a)
	}
	c.Closed = false
	if a := c.SignedArea(); a != 0 {
		t.Errorf("got area %v for an open curve", a)
	}
}

func TestCurveTransform(t *testing.T) {
	c := unitSquare()
	aff := Scale(2, 1).ThenTranslate(Vec(1, 0))
	got := c.Transform(aff)
	diff(t, []Point{Pt(3, 1), Pt(-1, 1), Pt(-1, -1), Pt(3, -1)}, got.Vertices)
	n := Vec(0.5, 1).Normalize()
	assertNearVec(t, n, got.Normals[0], 1e-15)
	if c.Vertices[0] != Pt(1, 1) {
		t.Error("Transform modified its receiver")
	}
}

func TestHausdorffDistance(t *testing.T) {
	a := unitSquare()
	if d := HausdorffDistance(a, a.Clone()); d != 0 {
		t.Errorf("got distance %v between identical curves", d)
	}
	b := a.Transform(Scale(2, 2))
	// The corners of the larger square are farthest from the smaller one.
	if d := HausdorffDistance(a, b); math.Abs(d-math.Sqrt2) > 1e-15 {
		t.Errorf("got distance %v, want √2", d)
	}
	if !a.Equal(a.Clone()) || a.Equal(b) {
		t.Error("Equal disagrees with Clone and Transform")
	}
}
