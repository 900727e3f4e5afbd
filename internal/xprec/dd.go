// Package xprec implements double-double arithmetic and the small dense
// linear solves that the conic fit depends on.
//
// A [DD] represents the unevaluated sum Hi + Lo of two float64 values with
// |Lo| ≤ ulp(Hi)/2, which gives roughly 106 bits of significand. Products are
// formed exactly with fused multiply-add, so accumulating outer products of
// float64 samples loses nothing until the final rounding.
//
// # Literature
//
//   - [Library for Double-Double and Quad-Double Arithmetic] by Hida, Li and Bailey
//   - [Accurate Sum and Dot Product] by Ogita, Rump and Oishi
//
// [Library for Double-Double and Quad-Double Arithmetic]: https://www.davidhbailey.com/dhbpapers/qd.pdf
// [Accurate Sum and Dot Product]: https://doi.org/10.1137/030601818
package xprec

import (
	"fmt"
	"math"
)

type DD struct {
	Hi float64
	Lo float64
}

// FromFloat returns x as a double-double.
func FromFloat(x float64) DD {
	return DD{Hi: x}
}

func twoSum(a, b float64) (float64, float64) {
	s := a + b
	bb := s - a
	e := (a - (s - bb)) + (b - bb)
	return s, e
}

// quickTwoSum requires |a| ≥ |b|.
func quickTwoSum(a, b float64) (float64, float64) {
	s := a + b
	e := b - (s - a)
	return s, e
}

func twoProd(a, b float64) (float64, float64) {
	p := a * b
	e := math.FMA(a, b, -p)
	return p, e
}

func (x DD) String() string {
	return fmt.Sprintf("%.17g%+.17g", x.Hi, x.Lo)
}

// Float returns x rounded to the nearest float64.
func (x DD) Float() float64 {
	return x.Hi + x.Lo
}

func (x DD) IsZero() bool {
	return x.Hi == 0
}

// IsFinite reports whether x is neither infinite nor NaN.
func (x DD) IsFinite() bool {
	return !math.IsInf(x.Hi, 0) && !math.IsNaN(x.Hi) && !math.IsNaN(x.Lo)
}

func (x DD) Neg() DD {
	return DD{-x.Hi, -x.Lo}
}

func (x DD) Abs() DD {
	if x.Hi < 0 {
		return x.Neg()
	}
	return x
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x DD) Cmp(y DD) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	default:
		return 0
	}
}

func (x DD) Add(y DD) DD {
	s, e := twoSum(x.Hi, y.Hi)
	t, f := twoSum(x.Lo, y.Lo)
	e += t
	s, e = quickTwoSum(s, e)
	e += f
	s, e = quickTwoSum(s, e)
	return DD{s, e}
}

func (x DD) AddFloat(y float64) DD {
	s, e := twoSum(x.Hi, y)
	e += x.Lo
	s, e = quickTwoSum(s, e)
	return DD{s, e}
}

func (x DD) Sub(y DD) DD {
	return x.Add(y.Neg())
}

func (x DD) Mul(y DD) DD {
	p, e := twoProd(x.Hi, y.Hi)
	e += x.Hi*y.Lo + x.Lo*y.Hi
	p, e = quickTwoSum(p, e)
	return DD{p, e}
}

func (x DD) MulFloat(y float64) DD {
	p, e := twoProd(x.Hi, y)
	e += x.Lo * y
	p, e = quickTwoSum(p, e)
	return DD{p, e}
}

// Div returns x/y. Division by zero follows float64 semantics for the high
// word and produces a non-finite result.
func (x DD) Div(y DD) DD {
	q1 := x.Hi / y.Hi
	if math.IsInf(q1, 0) || math.IsNaN(q1) {
		return DD{Hi: q1}
	}
	r := x.Sub(y.MulFloat(q1))
	q2 := r.Hi / y.Hi
	r = r.Sub(y.MulFloat(q2))
	q3 := r.Hi / y.Hi
	q1, q2 = quickTwoSum(q1, q2)
	return DD{q1, q2}.AddFloat(q3)
}
