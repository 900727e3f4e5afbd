package subdiv

import (
	"fmt"
	"log/slog"
)

// Scheme is a subdivision rule. Step maps a curve to the next finer curve,
// keeping every input vertex and inserting one new vertex per edge.
type Scheme interface {
	Name() string
	Step(c Curve) (Curve, error)
}

// Subdivide applies scheme level times, feeding each output back in as the
// next input. For level <= 0 it returns c unchanged.
func Subdivide(c Curve, level int, scheme Scheme) (Curve, error) {
	for l := 1; l <= level; l++ {
		next, err := scheme.Step(c)
		if err != nil {
			return Curve{}, fmt.Errorf("subdivision level %d: %w", l, err)
		}
		c = next
	}
	return c, nil
}

// SubdivideConic subdivides c level times with the conic scheme.
func SubdivideConic(c Curve, level int, s SubdivisionSettings) (Curve, error) {
	return Subdivide(c, level, ConicScheme{Settings: s})
}

// StepStats counts how the edges of one step were handled.
type StepStats struct {
	Edges int
	// ConicFits counts edges evaluated on a general conic.
	ConicFits int
	// CircleFits counts edges evaluated on a circle-constrained conic.
	CircleFits int
	// LinearFits counts edges whose patch was straight.
	LinearFits int
	// Splits counts edges containing an inflection.
	Splits int
	// Fallbacks counts edges for which no conic was usable.
	Fallbacks int
}

func (st *StepStats) record(res FitResult) {
	st.Edges++
	switch {
	case res.Fallback:
		st.Fallbacks++
	case res.Circle:
		st.CircleFits++
	case res.Kind == LineConic:
		st.LinearFits++
	default:
		st.ConicFits++
	}
	if res.Split {
		st.Splits++
	}
}

func (st *StepStats) add(o StepStats) {
	st.Edges += o.Edges
	st.ConicFits += o.ConicFits
	st.CircleFits += o.CircleFits
	st.LinearFits += o.LinearFits
	st.Splits += o.Splits
	st.Fallbacks += o.Fallbacks
}

// LogValue implements slog.LogValuer.
func (st StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("edges", st.Edges),
		slog.Int("conic", st.ConicFits),
		slog.Int("circle", st.CircleFits),
		slog.Int("linear", st.LinearFits),
		slog.Int("splits", st.Splits),
		slog.Int("fallbacks", st.Fallbacks),
	)
}

// refined allocates the output of one step, with the vertices of c at the even
// indices. The odd indices are filled in by the scheme.
func refined(c Curve) Curve {
	n := c.Len() + c.NumEdges()
	out := Curve{
		Vertices: make([]Point, n),
		Normals:  make([]Vec2, n),
		Closed:   c.Closed,
	}
	for i := range c.Vertices {
		out.Vertices[2*i] = c.Vertices[i]
		out.Normals[2*i] = c.Normals[i]
	}
	return out
}

// ConicScheme inserts, for every edge, the point where the conic fitted to
// the edge's patch crosses the ray from the edge midpoint along the mean
// endpoint normal. Edges whose fit fails get the linear fallback.
type ConicScheme struct {
	Settings SubdivisionSettings
}

var _ Scheme = ConicScheme{}

func (ConicScheme) Name() string { return "conic" }

func (cs ConicScheme) Step(c Curve) (Curve, error) {
	out, _, err := cs.StepWithStats(c)
	return out, err
}

// StepWithStats is like Step but also reports how the edges were handled.
func (cs ConicScheme) StepWithStats(c Curve) (Curve, StepStats, error) {
	s := cs.Settings
	if err := s.Validate(); err != nil {
		return Curve{}, StepStats{}, err
	}
	if err := c.Validate(); err != nil {
		return Curve{}, StepStats{}, err
	}

	out := refined(c)
	edges := c.NumEdges()
	ranges := splitRanges(edges, s.TestToggle)
	parts := make([]StepStats, len(ranges))
	err := runRanges(ranges, func(k, lo, hi int) error {
		st := &parts[k]
		for i := lo; i < hi; i++ {
			res, err := fitOrFallback(EdgePatch(c, i, s), s)
			if err != nil {
				Logger().Debug("edge fallback", "edge", i, "err", err)
			}
			// The fallback midpoint overflows for coordinates near the
			// float64 limit.
			if !res.Point.IsFinite() || !res.Normal.IsFinite() {
				return fmt.Errorf("%w: edge %d yields point %v, normal %v", ErrNonFinite, i, res.Point, res.Normal)
			}
			out.Vertices[2*i+1] = res.Point
			out.Normals[2*i+1] = res.Normal
			st.record(res)
		}
		return nil
	})
	if err != nil {
		return Curve{}, StepStats{}, err
	}

	var stats StepStats
	for _, p := range parts {
		stats.add(p)
	}
	Logger().Debug("subdivision step",
		"scheme", cs.Name(),
		"vertices", c.Len(),
		"closed", c.Closed,
		"workers", len(ranges),
		"stats", stats)
	return out, stats, nil
}

// LinearScheme inserts edge midpoints with the mean of the endpoint normals.
type LinearScheme struct{}

var _ Scheme = LinearScheme{}

func (LinearScheme) Name() string { return "linear" }

func (LinearScheme) Step(c Curve) (Curve, error) {
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	out := refined(c)
	for i := range c.NumEdges() {
		a := PatchPoint{Vertex: c.Vertex(i), Normal: c.Normal(i)}
		b := PatchPoint{Vertex: c.Vertex(i + 1), Normal: c.Normal(i + 1)}
		res := LinearFallback(a, b)
		out.Vertices[2*i+1] = res.Point
		out.Normals[2*i+1] = res.Normal
	}
	return out, nil
}
