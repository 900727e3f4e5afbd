package subdiv

import (
	"fmt"
	"math"
)

// ConicKind classifies a [Conic].
type ConicKind int

const (
	// DegenerateConic covers the conics with no usable curve: the zero
	// polynomial, isolated points, imaginary ellipses and line pairs.
	DegenerateConic ConicKind = iota
	LineConic
	EllipseConic
	CircleConic
	ParabolaConic
	HyperbolaConic
)

func (k ConicKind) String() string {
	switch k {
	case DegenerateConic:
		return "degenerate"
	case LineConic:
		return "line"
	case EllipseConic:
		return "ellipse"
	case CircleConic:
		return "circle"
	case ParabolaConic:
		return "parabola"
	case HyperbolaConic:
		return "hyperbola"
	default:
		return fmt.Sprintf("ConicKind(%d)", int(k))
	}
}

// Conic is the implicit quadratic curve
//
//	q(x, y) = A x² + B xy + C y² + D x + E y + F = 0.
//
// Any nonzero multiple of the coefficients describes the same curve, but
// conics produced by the fit are scaled so that the gradient approximates the
// sample normals, which makes q an approximate signed distance near the
// samples.
type Conic struct {
	A, B, C, D, E, F Scalar
}

const conicClassifyTolerance = 1e-9

func (c Conic) String() string {
	return fmt.Sprintf("%gx² %+gxy %+gy² %+gx %+gy %+g", c.A, c.B, c.C, c.D, c.E, c.F)
}

// Eval returns q(pt).
func (c Conic) Eval(pt Point) Scalar {
	x, y := pt.X, pt.Y
	return (c.A*x+c.B*y+c.D)*x + (c.C*y+c.E)*y + c.F
}

// Gradient returns ∇q(pt).
func (c Conic) Gradient(pt Point) Vec2 {
	return Vec2{
		X: 2*c.A*pt.X + c.B*pt.Y + c.D,
		Y: c.B*pt.X + 2*c.C*pt.Y + c.E,
	}
}

// Normal returns the unit gradient at pt. It reports false if the gradient
// vanishes or is not finite.
func (c Conic) Normal(pt Point) (Vec2, bool) {
	g := c.Gradient(pt)
	h := g.Hypot()
	if h == 0 || !isFinite(h) {
		return Vec2{}, false
	}
	return g.Div(h), true
}

// IsFinite reports whether all coefficients are finite.
func (c Conic) IsFinite() bool {
	return isFinite(c.A) && isFinite(c.B) && isFinite(c.C) &&
		isFinite(c.D) && isFinite(c.E) && isFinite(c.F)
}

// Kind classifies the conic. Coefficients are compared relative to the
// largest coefficient, so the result does not depend on the overall scale.
func (c Conic) Kind() ConicKind {
	m := max(math.Abs(c.A), math.Abs(c.B), math.Abs(c.C), math.Abs(c.D), math.Abs(c.E), math.Abs(c.F))
	if m == 0 || !c.IsFinite() {
		return DegenerateConic
	}
	a, b, cc := c.A/m, c.B/m, c.C/m
	d, e, f := c.D/m, c.E/m, c.F/m

	quad := math.Abs(a) + math.Abs(b) + math.Abs(cc)
	if quad <= conicClassifyTolerance {
		if math.Abs(d)+math.Abs(e) <= conicClassifyTolerance {
			return DegenerateConic
		}
		return LineConic
	}

	// Determinant of the 3×3 symmetric matrix of the conic. It vanishes for
	// line pairs and isolated points.
	det := a*(cc*f-e*e/4) - b/2*(b/2*f-e*d/4) + d/2*(b/2*e/2-cc*d/2)
	if math.Abs(det) <= conicClassifyTolerance*quad*quad*quad {
		return DegenerateConic
	}

	disc := b*b - 4*a*cc
	switch {
	case math.Abs(disc) <= conicClassifyTolerance*quad*quad:
		return ParabolaConic
	case disc > 0:
		return HyperbolaConic
	}
	// Real ellipses need q to take the opposite sign of A at the center.
	if a*det > 0 {
		return DegenerateConic
	}
	if math.Abs(a-cc) <= conicClassifyTolerance*quad && math.Abs(b) <= conicClassifyTolerance*quad {
		return CircleConic
	}
	return EllipseConic
}

// IntersectRay returns the parameters t for which origin + t·dir lies on the
// conic, in ascending order.
func (c Conic) IntersectRay(origin Point, dir Vec2) ([2]Scalar, int) {
	alpha := c.A*dir.X*dir.X + c.B*dir.X*dir.Y + c.C*dir.Y*dir.Y
	beta := c.Gradient(origin).Dot(dir)
	gamma := c.Eval(origin)
	return SolveQuadratic(gamma, beta, alpha)
}

// Compose returns the conic q∘aff, that is, the conic whose points are mapped
// onto c by aff. To move a conic by an affine map T, compose it with T's
// inverse.
func (c Conic) Compose(aff Affine) Conic {
	a1, b1, c1 := aff.N0, aff.N2, aff.N4
	a2, b2, c2 := aff.N1, aff.N3, aff.N5
	return Conic{
		A: c.A*a1*a1 + c.B*a1*a2 + c.C*a2*a2,
		B: 2*c.A*a1*b1 + c.B*(a1*b2+a2*b1) + 2*c.C*a2*b2,
		C: c.A*b1*b1 + c.B*b1*b2 + c.C*b2*b2,
		D: 2*c.A*a1*c1 + c.B*(a1*c2+a2*c1) + 2*c.C*a2*c2 + c.D*a1 + c.E*a2,
		E: 2*c.A*b1*c1 + c.B*(b1*c2+b2*c1) + 2*c.C*b2*c2 + c.D*b1 + c.E*b2,
		F: c.A*c1*c1 + c.B*c1*c2 + c.C*c2*c2 + c.D*c1 + c.E*c2 + c.F,
	}
}

// Scale returns the conic with every coefficient multiplied by f.
func (c Conic) Scale(f Scalar) Conic {
	return Conic{c.A * f, c.B * f, c.C * f, c.D * f, c.E * f, c.F * f}
}
