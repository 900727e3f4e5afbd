// Package presets provides named sample curves.
//
// The built-in presets cover the usual test shapes: conics sampled with their
// exact normals, polygons whose normals point away from their centers, curves
// with inflections, and open curves.
package presets

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"honnef.co/go/subdiv"
)

// ErrPresetNotFound is returned by [Get] for unknown names.
var ErrPresetNotFound = errors.New("presets: preset not found")

// Preset is a named curve generator.
type Preset struct {
	Name        string
	Description string
	// Build returns a new curve every time it is called.
	Build func() subdiv.Curve
}

var (
	mu       sync.RWMutex
	registry = map[string]Preset{}
)

// Register adds p to the registry. It is an error to register a name twice.
func Register(p Preset) error {
	if p.Name == "" || p.Build == nil {
		return fmt.Errorf("presets: preset needs a name and a builder")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[p.Name]; ok {
		return fmt.Errorf("presets: preset %q already registered", p.Name)
	}
	registry[p.Name] = p
	return nil
}

// Lookup returns the preset with the given name.
func Lookup(name string) (Preset, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Get builds the curve of the named preset.
func Get(name string) (subdiv.Curve, error) {
	p, ok := Lookup(name)
	if !ok {
		return subdiv.Curve{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p.Build(), nil
}

// Names returns the names of all registered presets in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func init() {
	for _, p := range builtin {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}

// mustCurve validates a built-in curve. A nil normals slice estimates the
// normals from the edges.
func mustCurve(vertices []subdiv.Point, normals []subdiv.Vec2, closed bool) subdiv.Curve {
	c, err := subdiv.NewCurve(vertices, normals, closed)
	if err != nil {
		panic(err)
	}
	return c
}

// radial returns the normalized vectors from the origin to pts.
func radial(pts []subdiv.Point) []subdiv.Vec2 {
	out := make([]subdiv.Vec2, len(pts))
	for i, p := range pts {
		out[i] = subdiv.Vec2(p).Normalize()
	}
	return out
}

var builtin = []Preset{
	{
		Name:        "circle",
		Description: "unit circle, 8 samples with exact normals",
		Build: func() subdiv.Curve {
			return subdiv.Circle{Radius: 1}.Sample(8, 0)
		},
	},
	{
		Name:        "ellipse",
		Description: "ellipse with radii 2 and 1, 12 samples with exact normals",
		Build: func() subdiv.Curve {
			return subdiv.NewEllipse(subdiv.Pt(0, 0), subdiv.Vec(2, 1), 0).Sample(12, 0)
		},
	},
	{
		Name:        "square",
		Description: "square with diagonal normals",
		Build: func() subdiv.Curve {
			pts := []subdiv.Point{subdiv.Pt(1, 1), subdiv.Pt(-1, 1), subdiv.Pt(-1, -1), subdiv.Pt(1, -1)}
			return mustCurve(pts, radial(pts), true)
		},
	},
	{
		Name:        "triangle",
		Description: "equilateral triangle with radial normals",
		Build: func() subdiv.Curve {
			pts := make([]subdiv.Point, 3)
			for i := range pts {
				pts[i] = subdiv.Point(subdiv.VecFromAngle(math.Pi/2 + 2*math.Pi*float64(i)/3))
			}
			return mustCurve(pts, radial(pts), true)
		},
	},
	{
		Name:        "star",
		Description: "five-pointed star with edge normals, an inflection on every edge",
		Build: func() subdiv.Curve {
			pts := make([]subdiv.Point, 10)
			for i := range pts {
				r := 1.0
				if i%2 == 1 {
					r = 0.45
				}
				pts[i] = subdiv.Point(subdiv.VecFromAngle(math.Pi/2 + math.Pi*float64(i)/5).Mul(r))
			}
			return mustCurve(pts, nil, true)
		},
	},
	{
		Name:        "blob",
		Description: "closed curve r(θ) = 1 + 0.3 cos 3θ with exact normals",
		Build: func() subdiv.Curve {
			const n = 12
			pts := make([]subdiv.Point, n)
			normals := make([]subdiv.Vec2, n)
			for i := range n {
				th := 2 * math.Pi * float64(i) / n
				r := 1 + 0.3*math.Cos(3*th)
				dr := -0.9 * math.Sin(3*th)
				pts[i] = subdiv.Point(subdiv.VecFromAngle(th).Mul(r))
				tangent := subdiv.Vec(dr*math.Cos(th)-r*math.Sin(th), dr*math.Sin(th)+r*math.Cos(th))
				normals[i] = subdiv.Vec(tangent.Y, -tangent.X).Normalize()
			}
			return mustCurve(pts, normals, true)
		},
	},
	{
		Name:        "wave",
		Description: "open sine wave over one period with exact normals",
		Build: func() subdiv.Curve {
			const n = 9
			pts := make([]subdiv.Point, n)
			normals := make([]subdiv.Vec2, n)
			for i := range n {
				x := 2 * math.Pi * float64(i) / (n - 1)
				pts[i] = subdiv.Pt(x, 0.5*math.Sin(x))
				normals[i] = subdiv.Vec(-0.5*math.Cos(x), 1).Normalize()
			}
			return mustCurve(pts, normals, false)
		},
	},
	{
		Name:        "segment",
		Description: "open line segment of two vertices",
		Build: func() subdiv.Curve {
			return mustCurve(
				[]subdiv.Point{subdiv.Pt(0, 0), subdiv.Pt(1, 0)},
				[]subdiv.Vec2{subdiv.Vec(0, 1), subdiv.Vec(0, 1)},
				false)
		},
	},
	{
		Name:        "zigzag",
		Description: "open zigzag with edge normals",
		Build: func() subdiv.Curve {
			return mustCurve(
				[]subdiv.Point{subdiv.Pt(0, 0), subdiv.Pt(1, 1), subdiv.Pt(2, 0), subdiv.Pt(3, 1), subdiv.Pt(4, 0)},
				nil, false)
		},
	},
}
