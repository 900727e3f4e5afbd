package subdiv

import "math"

// Scalar is the floating-point type used for every coordinate, weight and
// coefficient in this package.
//
// The linear systems solved during conic fitting are ill-conditioned for small
// patches, and float64 alone does not carry enough precision to solve them
// reliably. Those systems are therefore accumulated and solved in
// double-double arithmetic (about 106 bits of significand) and only the
// resulting coefficients are rounded back to Scalar.
//
// The alias is fixed to float64: the design rows of the fit, the gonum
// conditioning check and the math package all take float64. Extended
// precision lives inside the accumulation and solve only.
type Scalar = float64

func isFinite(x Scalar) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
