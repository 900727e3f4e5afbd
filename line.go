package subdiv

// Line represents a line segment.
type Line struct {
	/// The line's start point.
	P0 Point
	/// The line's end point.
	P1 Point
}

// Length returns the length of the line.
func (l Line) Length() Scalar {
	return l.P1.Sub(l.P0).Hypot()
}

func (l Line) Eval(t Scalar) Point {
	return l.P0.Lerp(l.P1, t)
}

func (l Line) Midpoint() Point {
	return l.P0.Midpoint(l.P1)
}

// Normal returns the unit perpendicular of the line that points to the same
// side as hint. A zero hint selects the left-hand perpendicular. The result is
// NaN for zero-length lines.
func (l Line) Normal(hint Vec2) Vec2 {
	n := l.P1.Sub(l.P0).Perp().Normalize()
	if n.Dot(hint) < 0 {
		return n.Negate()
	}
	return n
}

// Nearest returns the squared distance from pt to the nearest point on the
// line, and that point's parameter.
func (l Line) Nearest(pt Point) (distSq, t Scalar) {
	d := l.P1.Sub(l.P0)
	dotp := d.Dot(pt.Sub(l.P0))
	dSquared := d.Dot(d)
	if dotp <= 0.0 {
		return pt.Sub(l.P0).Hypot2(), 0.0
	} else if dotp >= dSquared {
		return pt.Sub(l.P1).Hypot2(), 1.0
	} else {
		t := dotp / dSquared
		dist := pt.Sub(l.Eval(t)).Hypot2()
		return dist, t
	}
}

func (l Line) Transform(aff Affine) Line {
	return Line{
		P0: l.P0.Transform(aff),
		P1: l.P1.Transform(aff),
	}
}

func (l Line) IsInf() bool {
	return l.P0.IsInf() || l.P1.IsInf()
}

func (l Line) IsNaN() bool {
	return l.P0.IsNaN() || l.P1.IsNaN()
}
