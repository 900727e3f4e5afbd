package subdiv

import (
	"math"
)

type Circle struct {
	Center Point
	Radius Scalar
}

// Point returns the point on the circle at angle th.
func (c Circle) Point(th Scalar) Point {
	return c.Center.Translate(VecFromAngle(th).Mul(c.Radius))
}

// Normal returns the outward unit normal at angle th.
func (c Circle) Normal(th Scalar) Vec2 {
	n := VecFromAngle(th)
	if c.Radius < 0 {
		return n.Negate()
	}
	return n
}

// Conic returns the implicit form of the circle, scaled so that its gradient
// is the outward unit normal on the circle.
func (c Circle) Conic() Conic {
	r := math.Abs(c.Radius)
	x, y := c.Center.Splat()
	s := 1 / (2 * r)
	return Conic{
		A: s,
		C: s,
		D: -2 * x * s,
		E: -2 * y * s,
		F: (x*x + y*y - r*r) * s,
	}
}

// Distance returns the unsigned distance from pt to the circle.
func (c Circle) Distance(pt Point) Scalar {
	return math.Abs(pt.Distance(c.Center) - math.Abs(c.Radius))
}

// Sample returns a closed curve of n points spaced evenly by angle, starting at
// angle phase, with exact normals.
func (c Circle) Sample(n int, phase Scalar) Curve {
	return sampleClosed(n, phase, c.Point, c.Normal)
}

func (c Circle) IsInf() bool {
	return c.Center.IsInf() || math.IsInf(c.Radius, 0)
}

func (c Circle) IsNaN() bool {
	return c.Center.IsNaN() || math.IsNaN(c.Radius)
}

func (c Circle) Translate(v Vec2) Circle {
	return Circle{
		Center: c.Center.Translate(v),
		Radius: c.Radius,
	}
}

func (c Circle) BoundingBox() Rect {
	r := math.Abs(c.Radius)
	x := c.Center.X
	y := c.Center.Y
	return Rect{
		X0: x - r,
		Y0: y - r,
		X1: x + r,
		Y1: y + r,
	}
}

func sampleClosed(n int, phase Scalar, point func(Scalar) Point, normal func(Scalar) Vec2) Curve {
	vertices := make([]Point, n)
	normals := make([]Vec2, n)
	for i := range n {
		th := phase + 2*math.Pi*Scalar(i)/Scalar(n)
		vertices[i] = point(th)
		normals[i] = normal(th)
	}
	return Curve{Vertices: vertices, Normals: normals, Closed: true}
}
