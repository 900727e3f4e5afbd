// Package subdiv refines polygonal curves by conic subdivision.
//
// A [Curve] is a polygon with a normal at every vertex. One subdivision step
// keeps every vertex and inserts one new vertex per edge, so closed curves go
// from N to 2N vertices and open curves from N to 2N−1. Repeating the step
// yields a smooth limit curve that reproduces conics exactly: sampling a
// circle or an ellipse with its true normals and subdividing gives points on
// that same circle or ellipse.
//
// # Patches and conic fits
//
// For each edge, the scheme collects a [Patch]: the edge's two endpoints plus
// up to [SubdivisionSettings].PatchSize neighbours on either side, each with a
// point weight and a normal weight. [FitPatch] fits the implicit conic
//
//	q(x, y) = A x² + B xy + C y² + D x + E y + F
//
// that best passes through the samples with gradients parallel to the sample
// normals, and intersects it with the ray from the edge midpoint along the
// mean of the endpoint normals. The intersection and the conic's normal there
// become the new vertex.
//
// The fitting system is badly conditioned for small or flat patches. It is
// accumulated and solved in double-double precision, and patches are moved to a
// normalized local frame first. Patches that are still ill-conditioned fall
// back to circle fits, and then to the edge midpoint ([LinearFallback]).
// Straight patches produce their exact midpoint.
//
// Patches whose normals turn in both directions are trimmed to the convex run
// around their edge. An edge that itself contains an inflection is handled by
// fitting both halves and blending their points.
//
// # Schemes
//
// [Scheme] abstracts one subdivision step. [ConicScheme] is the conic scheme
// described above, and [LinearScheme] inserts edge midpoints. [Subdivide]
// iterates a scheme. Edges are fitted concurrently; the result does not
// depend on the number of goroutines.
//
// # Normals
//
// Curves loaded without normals get them from their edges
// ([Curve.EstimateNormals]). [Refine] improves such normals by repeatedly
// fitting conics around each vertex until they stop changing.
//
// # Errors and logging
//
// Numerical problems with single patches never abort a subdivision; the
// affected edges use the linear fallback, which is logged at debug level and
// counted in [StepStats]. Invalid curves and settings are reported as errors.
// The package logs through [log/slog]; see [SetLogger].
//
// # Literature
//
//   - Conic subdivision of planar curves with normals
//   - [Least-squares fitting of circles and ellipses] by Gander, Golub and Strebel
//   - Double-double arithmetic following Dekker, and Hida, Li and Bailey
//
// [Least-squares fitting of circles and ellipses]: https://doi.org/10.1007/BF01934268
package subdiv
