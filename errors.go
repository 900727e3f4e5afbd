package subdiv

import (
	"errors"
)

// Per-edge numerical failures (ErrInsufficientPatch, ErrDegenerateFit,
// ErrNonFinite) are absorbed by the subdivision schemes, which substitute the
// linear fallback. Only structural problems with the input curve or settings,
// and ErrNonFinite for curves whose coordinates overflow even the fallback,
// are returned to callers of [Subdivide]. Use errors.Is to match.
var (
	// ErrInvalidCurve is matched by every [*InvalidCurveError].
	ErrInvalidCurve = errors.New("subdiv: invalid curve")

	// ErrInvalidSettings is returned for settings with negative, NaN or
	// infinite fields.
	ErrInvalidSettings = errors.New("subdiv: invalid settings")

	// ErrInsufficientPatch is returned by the fitter for patches with fewer
	// than two samples or an edge index outside the patch.
	ErrInsufficientPatch = errors.New("subdiv: insufficient patch")

	// ErrDegenerateFit is returned by the fitter when the least-squares system
	// is singular or ill-conditioned, or when the fitted conic does not meet
	// the edge's ray within the patch.
	ErrDegenerateFit = errors.New("subdiv: degenerate conic fit")

	// ErrNonFinite is returned by the fitter when evaluation produced NaN or
	// infinite values.
	ErrNonFinite = errors.New("subdiv: non-finite fit result")

	// ErrNonConvergentRefinement is returned alongside a usable curve when
	// normal refinement reached its iteration cap before converging.
	ErrNonConvergentRefinement = errors.New("subdiv: normal refinement did not converge")
)

// InvalidCurveError describes why a curve cannot be processed.
type InvalidCurveError struct {
	Reason string
}

func (err *InvalidCurveError) Error() string {
	return "subdiv: invalid curve: " + err.Reason
}

func (err *InvalidCurveError) Is(target error) bool {
	return target == ErrInvalidCurve
}
