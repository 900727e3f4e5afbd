package subdiv

import (
	"fmt"
)

// SubdivisionSettings configures the conic subdivision scheme. The zero value
// is not useful; start from [DefaultSubdivisionSettings].
//
// Settings are plain values. They are copied into every operation and never
// mutated, so concurrent subdivisions with different settings do not
// interfere.
type SubdivisionSettings struct {
	// MiddlePointWeight and MiddleNormalWeight weigh the two endpoints of the
	// edge being subdivided.
	MiddlePointWeight  Scalar `yaml:"middle-point-weight" mapstructure:"middle-point-weight"`
	MiddleNormalWeight Scalar `yaml:"middle-normal-weight" mapstructure:"middle-normal-weight"`
	// OuterPointWeight and OuterNormalWeight weigh the neighbouring samples.
	// Their ratio is the shape parameter of the scheme.
	OuterPointWeight  Scalar `yaml:"outer-point-weight" mapstructure:"outer-point-weight"`
	OuterNormalWeight Scalar `yaml:"outer-normal-weight" mapstructure:"outer-normal-weight"`
	// PatchSize is the number of neighbours taken on each side of an edge.
	PatchSize int `yaml:"patch-size" mapstructure:"patch-size"`
	// CircleNormals restricts the fit to circles (equal curvature).
	CircleNormals bool `yaml:"circle-normals" mapstructure:"circle-normals"`
	// AreaWeightedNormals weighs edge normals by edge length when normals are
	// estimated from the polygon.
	AreaWeightedNormals bool `yaml:"area-weighted-normals" mapstructure:"area-weighted-normals"`
	// ConvexitySplit restricts patches to the convex run around an edge and
	// fits two half patches when the edge itself contains an inflection.
	ConvexitySplit bool `yaml:"convexity-split" mapstructure:"convexity-split"`
	// WeightedInflPointLocation places the inflection of a split edge by
	// interpolating the curvature at its endpoints, instead of at its
	// midpoint.
	WeightedInflPointLocation bool `yaml:"weighted-infl-point-location" mapstructure:"weighted-infl-point-location"`
	// GravitateSmallerAngles chooses, among the intersections of the conic
	// with the edge's ray, the one whose normal deviates least from the ray,
	// instead of the nearest one.
	GravitateSmallerAngles bool `yaml:"gravitate-smaller-angles" mapstructure:"gravitate-smaller-angles"`
	// Epsilon is the smallest acceptable ratio between the smallest and the
	// largest eigenvalue of the fitting system.
	Epsilon Scalar `yaml:"epsilon" mapstructure:"epsilon"`
	// DynamicPatchSize adapts the neighbour count of each edge to the local
	// vertex spacing and stops at sharp features.
	DynamicPatchSize bool `yaml:"dynamic-patch-size" mapstructure:"dynamic-patch-size"`
	// TestToggle forces the serial evaluation path. It never changes results.
	TestToggle bool `yaml:"test-toggle" mapstructure:"test-toggle"`
}

// DefaultSubdivisionSettings returns the settings used when nothing else is
// configured.
func DefaultSubdivisionSettings() SubdivisionSettings {
	return SubdivisionSettings{
		MiddlePointWeight:         1000,
		MiddleNormalWeight:        1,
		OuterPointWeight:          1,
		OuterNormalWeight:         1,
		PatchSize:                 2,
		ConvexitySplit:            true,
		WeightedInflPointLocation: true,
		Epsilon:                   1e-13,
	}
}

// Tau returns the ratio of OuterPointWeight to OuterNormalWeight.
func (s SubdivisionSettings) Tau() Scalar {
	return s.OuterPointWeight / s.OuterNormalWeight
}

// Validate reports whether all fields are in range.
func (s SubdivisionSettings) Validate() error {
	weights := []struct {
		name string
		v    Scalar
	}{
		{"middle point weight", s.MiddlePointWeight},
		{"middle normal weight", s.MiddleNormalWeight},
		{"outer point weight", s.OuterPointWeight},
		{"outer normal weight", s.OuterNormalWeight},
		{"epsilon", s.Epsilon},
	}
	for _, w := range weights {
		if !isFinite(w.v) || w.v < 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidSettings, w.name, w.v)
		}
	}
	if s.MiddlePointWeight+s.MiddleNormalWeight == 0 {
		return fmt.Errorf("%w: middle weights are both zero", ErrInvalidSettings)
	}
	if s.PatchSize < 0 {
		return fmt.Errorf("%w: patch size is %d", ErrInvalidSettings, s.PatchSize)
	}
	return nil
}

// NormalRefinementSettings configures [Refine].
type NormalRefinementSettings struct {
	// MaxRefinementIterations caps the number of iterations. It must be at
	// least 1.
	MaxRefinementIterations int `yaml:"max-refinement-iterations" mapstructure:"max-refinement-iterations"`
	// AngleLimit is the convergence threshold in radians: refinement stops
	// once no normal changed by this much or more in one iteration.
	AngleLimit Scalar `yaml:"angle-limit" mapstructure:"angle-limit"`
	// TestSubdivLevel, if positive, is the depth of the reference subdivision
	// used to judge the refined normals. It does not affect the normals.
	TestSubdivLevel int `yaml:"test-subdiv-level" mapstructure:"test-subdiv-level"`
}

func DefaultNormalRefinementSettings() NormalRefinementSettings {
	return NormalRefinementSettings{
		MaxRefinementIterations: 20,
		AngleLimit:              1e-4,
	}
}

func (s NormalRefinementSettings) Validate() error {
	if s.MaxRefinementIterations < 1 {
		return fmt.Errorf("%w: max refinement iterations is %d", ErrInvalidSettings, s.MaxRefinementIterations)
	}
	if !isFinite(s.AngleLimit) || s.AngleLimit < 0 {
		return fmt.Errorf("%w: angle limit is %v", ErrInvalidSettings, s.AngleLimit)
	}
	if s.TestSubdivLevel < 0 {
		return fmt.Errorf("%w: test subdivision level is %d", ErrInvalidSettings, s.TestSubdivLevel)
	}
	return nil
}
