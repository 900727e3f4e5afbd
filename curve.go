package subdiv

import (
	"fmt"
	"math"
	"slices"
)

// Curve is a polygon with a normal direction at every vertex.
//
// Normals are directions; they need not be unit length, and consumers
// normalize them before use. For closed curves indices wrap around; for open
// curves the first and last vertex have a single neighbour.
//
// Operations in this package never modify a Curve's slices. Refinement
// produces new curves.
type Curve struct {
	Vertices []Point
	Normals  []Vec2
	Closed   bool
}

// NewCurve returns a validated curve. If normals is nil, normals are
// estimated from the polygon with [Curve.EstimateNormals].
func NewCurve(vertices []Point, normals []Vec2, closed bool) (Curve, error) {
	c := Curve{Vertices: vertices, Normals: normals, Closed: closed}
	if normals == nil {
		c.Normals = make([]Vec2, len(vertices))
		if err := c.validate(false); err != nil {
			return Curve{}, err
		}
		c.Normals = c.EstimateNormals(false)
	}
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	return c, nil
}

// Len returns the number of vertices.
func (c Curve) Len() int {
	return len(c.Vertices)
}

// NumEdges returns the number of edges: Len for closed curves, Len−1 for open
// ones.
func (c Curve) NumEdges() int {
	n := len(c.Vertices)
	if c.Closed || n == 0 {
		return n
	}
	return n - 1
}

// MinVertices returns the smallest vertex count that can be subdivided.
func (c Curve) MinVertices() int {
	if c.Closed {
		return 3
	}
	return 2
}

// Validate returns an [*InvalidCurveError] if the curve's slices differ in
// length, it has too few vertices to be subdivided, or it contains NaN or
// infinite values.
func (c Curve) Validate() error {
	return c.validate(true)
}

func (c Curve) validate(checkNormals bool) error {
	if len(c.Vertices) != len(c.Normals) {
		return &InvalidCurveError{fmt.Sprintf("%d vertices but %d normals", len(c.Vertices), len(c.Normals))}
	}
	if n, m := len(c.Vertices), c.MinVertices(); n < m {
		kind := "open"
		if c.Closed {
			kind = "closed"
		}
		return &InvalidCurveError{fmt.Sprintf("%s curve with %d vertices, need at least %d", kind, n, m)}
	}
	for i, v := range c.Vertices {
		if !v.IsFinite() {
			return &InvalidCurveError{fmt.Sprintf("vertex %d is %v", i, v)}
		}
	}
	if checkNormals {
		for i, n := range c.Normals {
			if !n.IsFinite() {
				return &InvalidCurveError{fmt.Sprintf("normal %d is %v", i, n)}
			}
		}
	}
	return nil
}

// index maps i to a slice index, wrapping for closed curves. It reports false
// for indices past the ends of an open curve.
func (c Curve) index(i int) (int, bool) {
	n := len(c.Vertices)
	if n == 0 {
		return 0, false
	}
	if c.Closed {
		i %= n
		if i < 0 {
			i += n
		}
		return i, true
	}
	return i, i >= 0 && i < n
}

// Vertex returns the i-th vertex. Indices wrap for closed curves; Vertex
// panics for out of range indices on open curves.
func (c Curve) Vertex(i int) Point {
	j, ok := c.index(i)
	if !ok {
		panic(fmt.Sprintf("subdiv: vertex index %d out of range for open curve of %d vertices", i, len(c.Vertices)))
	}
	return c.Vertices[j]
}

// Normal returns the i-th normal, with the same indexing rules as
// [Curve.Vertex].
func (c Curve) Normal(i int) Vec2 {
	j, ok := c.index(i)
	if !ok {
		panic(fmt.Sprintf("subdiv: normal index %d out of range for open curve of %d vertices", i, len(c.Normals)))
	}
	return c.Normals[j]
}

// Edge returns the edge from vertex i to vertex i+1.
func (c Curve) Edge(i int) Line {
	return Line{c.Vertex(i), c.Vertex(i + 1)}
}

// Clone returns a deep copy of c.
func (c Curve) Clone() Curve {
	return Curve{
		Vertices: slices.Clone(c.Vertices),
		Normals:  slices.Clone(c.Normals),
		Closed:   c.Closed,
	}
}

// Equal reports whether both curves have identical vertices, normals and
// closedness.
func (c Curve) Equal(o Curve) bool {
	return c.Closed == o.Closed &&
		slices.Equal(c.Vertices, o.Vertices) &&
		slices.Equal(c.Normals, o.Normals)
}

// BoundingBox returns the bounding box of the vertices.
func (c Curve) BoundingBox() Rect {
	return BoundingRect(c.Vertices)
}

// Transform returns the curve mapped through aff, with normals transformed
// by the inverse transpose.
func (c Curve) Transform(aff Affine) Curve {
	out := Curve{
		Vertices: make([]Point, len(c.Vertices)),
		Normals:  make([]Vec2, len(c.Normals)),
		Closed:   c.Closed,
	}
	for i, v := range c.Vertices {
		out.Vertices[i] = v.Transform(aff)
	}
	for i, n := range c.Normals {
		out.Normals[i] = aff.TransformNormal(n)
	}
	return out
}

// SignedArea returns the signed area enclosed by the polygon, positive for
// counter-clockwise vertex order in a y-up coordinate system. It returns 0 for
// open curves.
func (c Curve) SignedArea() Scalar {
	if !c.Closed {
		return 0
	}
	var a Scalar
	for i, v := range c.Vertices {
		w := c.Vertices[(i+1)%len(c.Vertices)]
		a += Vec2(v).Cross(Vec2(w))
	}
	return 0.5 * a
}

// EstimateNormals returns unit vertex normals computed from the adjacent
// edges. With areaWeighted, each edge contributes proportionally to its
// length; otherwise both edges contribute equally.
//
// Estimates are oriented to agree with the curve's existing normals where
// those are nonzero. Otherwise, normals of closed curves point outwards and
// normals of open curves point to the right of the direction of travel.
func (c Curve) EstimateNormals(areaWeighted bool) []Vec2 {
	n := len(c.Vertices)
	out := make([]Vec2, n)
	// Right-hand perpendiculars point outward for counter-clockwise polygons.
	sign := Scalar(1)
	if c.Closed && c.SignedArea() < 0 {
		sign = -1
	}
	edgeNormal := func(i int) (Vec2, bool) {
		i0, ok0 := c.index(i)
		i1, ok1 := c.index(i + 1)
		if !ok0 || !ok1 || i0 == i1 {
			return Vec2{}, false
		}
		d := c.Vertices[i1].Sub(c.Vertices[i0])
		if d.Hypot2() == 0 {
			return Vec2{}, false
		}
		perp := Vec2{X: d.Y, Y: -d.X}.Mul(sign)
		if !areaWeighted {
			perp = perp.Normalize()
		}
		return perp, true
	}
	for i := range n {
		var sum Vec2
		if e, ok := edgeNormal(i - 1); ok {
			sum = sum.Add(e)
		}
		if e, ok := edgeNormal(i); ok {
			sum = sum.Add(e)
		}
		est := sum.NormalizeOr(Vec2{})
		if i < len(c.Normals) && est.Dot(c.Normals[i]) < 0 {
			est = est.Negate()
		}
		out[i] = est
	}
	return out
}

// WithNormals returns a copy of c's structure using the given normals.
func (c Curve) WithNormals(normals []Vec2) Curve {
	return Curve{Vertices: c.Vertices, Normals: normals, Closed: c.Closed}
}

// DistanceTo returns the distance from pt to the polygon.
func (c Curve) DistanceTo(pt Point) Scalar {
	best := Scalar(-1)
	for i := range c.NumEdges() {
		d, _ := c.Edge(i).Nearest(pt)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		if len(c.Vertices) == 1 {
			return pt.Distance(c.Vertices[0])
		}
		return 0
	}
	return math.Sqrt(best)
}

// HausdorffDistance returns the symmetric Hausdorff distance between the
// vertex sets of a and b, measured against each other's polygons.
func HausdorffDistance(a, b Curve) Scalar {
	var h Scalar
	for _, v := range a.Vertices {
		h = max(h, b.DistanceTo(v))
	}
	for _, v := range b.Vertices {
		h = max(h, a.DistanceTo(v))
	}
	return h
}
