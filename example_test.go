package subdiv_test

import (
	"fmt"
	"math"

	"honnef.co/go/subdiv"
)

func ExampleSubdivideConic() {
	// A square with normals pointing away from its center is refined towards
	// its circumscribed circle.
	square, err := subdiv.NewCurve(
		[]subdiv.Point{subdiv.Pt(1, 1), subdiv.Pt(-1, 1), subdiv.Pt(-1, -1), subdiv.Pt(1, -1)},
		[]subdiv.Vec2{subdiv.Vec(1, 1), subdiv.Vec(-1, 1), subdiv.Vec(-1, -1), subdiv.Vec(1, -1)},
		true,
	)
	if err != nil {
		panic(err)
	}
	fine, err := subdiv.SubdivideConic(square, 3, subdiv.DefaultSubdivisionSettings())
	if err != nil {
		panic(err)
	}
	circle := subdiv.Circle{Radius: math.Sqrt2}
	var worst float64
	for _, v := range fine.Vertices {
		worst = max(worst, circle.Distance(v))
	}
	fmt.Println(fine.Len(), worst < 1e-9)
	// Output: 32 true
}

func ExampleRefine() {
	// Normals estimated from the edges of a polygon are only approximate.
	polygon := subdiv.NewEllipse(subdiv.Pt(0, 0), subdiv.Vec(2, 1), 0).Sample(24, 0)
	c, err := subdiv.NewCurve(polygon.Vertices, nil, true)
	if err != nil {
		panic(err)
	}
	_, rep, err := subdiv.Refine(c,
		subdiv.NormalRefinementSettings{MaxRefinementIterations: 10, AngleLimit: 0.1},
		subdiv.DefaultSubdivisionSettings())
	if err != nil {
		panic(err)
	}
	fmt.Println(rep.Converged)
	// Output: true
}
