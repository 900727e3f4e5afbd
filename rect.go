package subdiv

// Rect is an axis-aligned rectangle.
type Rect struct {
	X0, Y0 Scalar
	X1, Y1 Scalar
}

// NewRectFromPoints returns a rectangle with the extents of p0 and p1, ensuring that
// width and height are non-negative.
func NewRectFromPoints(p0, p1 Point) Rect {
	return Rect{
		X0: min(p0.X, p1.X),
		Y0: min(p0.Y, p1.Y),
		X1: max(p0.X, p1.X),
		Y1: max(p0.Y, p1.Y),
	}
}

// BoundingRect returns the smallest rectangle enclosing all points. It returns
// the zero rectangle for an empty slice.
func BoundingRect(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{pts[0].X, pts[0].Y, pts[0].X, pts[0].Y}
	for _, pt := range pts[1:] {
		r = r.UnionPoint(pt)
	}
	return r
}

// Contains reports whether pt lies inside r or on its boundary.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X0 && pt.X <= r.X1 &&
		pt.Y >= r.Y0 && pt.Y <= r.Y1
}

// UnionPoint returns the smallest rectangle enclosing r and pt. Zero-area
// rectangles count their perimeter, so a sequence of UnionPoint calls yields
// the bounds of the points.
func (r Rect) UnionPoint(pt Point) Rect {
	return Rect{
		X0: min(r.X0, pt.X),
		Y0: min(r.Y0, pt.Y),
		X1: max(r.X1, pt.X),
		Y1: max(r.Y1, pt.Y),
	}
}

// Inflate grows r by dx on the left and right and by dy on the top and bottom.
func (r Rect) Inflate(dx, dy Scalar) Rect {
	return Rect{r.X0 - dx, r.Y0 - dy, r.X1 + dx, r.Y1 + dy}
}
