package subdiv

import (
	"math"
)

// Ellipse is the image of the unit circle under an affine transformation.
type Ellipse struct {
	inner Affine
}

// NewEllipse creates a new ellipse with a given center, radii, and rotation.
//
// The returned ellipse will be the result of taking a circle, stretching it
// by the radii along the x and y axes, then rotating it from the x axis by
// rotation radians, before finally translating the center to center.
func NewEllipse(center Point, radii Vec2, rotation Scalar) Ellipse {
	return Ellipse{
		inner: Translate(Vec2(center)).
			Mul(Rotate(rotation)).
			Mul(Scale(math.Abs(radii.X), math.Abs(radii.Y))),
	}
}

// Affine returns the transformation that maps the unit circle onto e.
func (e Ellipse) Affine() Affine {
	return e.inner
}

// Center returns the center of the ellipse.
func (e Ellipse) Center() Point {
	return Point(e.inner.Translation())
}

// Point returns the image of the unit circle's point at angle th.
func (e Ellipse) Point(th Scalar) Point {
	return Point(VecFromAngle(th)).Transform(e.inner)
}

// Normal returns the outward unit normal at e.Point(th).
func (e Ellipse) Normal(th Scalar) Vec2 {
	return e.inner.TransformNormal(VecFromAngle(th))
}

// Conic returns the implicit form of the ellipse.
func (e Ellipse) Conic() Conic {
	unit := Circle{Radius: 1}.Conic()
	return unit.Compose(e.inner.Invert())
}

// Sample returns a closed curve of n points spaced evenly in the ellipse's
// parameter, starting at phase, with exact normals.
func (e Ellipse) Sample(n int, phase Scalar) Curve {
	return sampleClosed(n, phase, e.Point, e.Normal)
}

func (e Ellipse) IsInf() bool {
	return e.inner.IsInf()
}

func (e Ellipse) IsNaN() bool {
	return e.inner.IsNaN()
}
