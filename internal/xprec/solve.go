package xprec

import (
	"errors"
	"fmt"
)

// ErrSingular is returned when elimination meets a zero pivot.
var ErrSingular = errors.New("xprec: singular system")

// System is a dense n×n linear system A·x = b accumulated in double-double
// precision. The zero value is not usable; call [NewSystem].
type System struct {
	n int
	a []DD
	b []DD
}

func NewSystem(n int) *System {
	return &System{
		n: n,
		a: make([]DD, n*n),
		b: make([]DD, n),
	}
}

// Dim returns n.
func (s *System) Dim() int { return s.n }

func (s *System) At(i, j int) DD { return s.a[i*s.n+j] }

func (s *System) RHS(i int) DD { return s.b[i] }

// AddOuter adds w·row·rowᵀ to A.
func (s *System) AddOuter(row []float64, w float64) {
	if len(row) != s.n {
		panic(fmt.Sprintf("xprec: row of length %d for system of dimension %d", len(row), s.n))
	}
	if w == 0 {
		return
	}
	for i, ri := range row {
		if ri == 0 {
			continue
		}
		wi := FromFloat(w).MulFloat(ri)
		for j, rj := range row {
			if rj == 0 {
				continue
			}
			s.a[i*s.n+j] = s.a[i*s.n+j].Add(wi.MulFloat(rj))
		}
	}
}

// AddRHS adds w·target·row to b.
func (s *System) AddRHS(row []float64, w, target float64) {
	if len(row) != s.n {
		panic(fmt.Sprintf("xprec: row of length %d for system of dimension %d", len(row), s.n))
	}
	if w == 0 || target == 0 {
		return
	}
	wt := FromFloat(w).MulFloat(target)
	for i, ri := range row {
		s.b[i] = s.b[i].Add(wt.MulFloat(ri))
	}
}

// Float64s returns A rounded to float64, in row-major order.
func (s *System) Float64s() []float64 {
	out := make([]float64, len(s.a))
	for i, v := range s.a {
		out[i] = v.Float()
	}
	return out
}

// Solve solves the system using Gaussian elimination with partial pivoting.
// The receiver is not modified.
func (s *System) Solve() ([]DD, error) {
	n := s.n
	a := make([]DD, len(s.a))
	copy(a, s.a)
	b := make([]DD, len(s.b))
	copy(b, s.b)

	for k := range n {
		p := k
		for i := k + 1; i < n; i++ {
			if a[i*n+k].Abs().Cmp(a[p*n+k].Abs()) > 0 {
				p = i
			}
		}
		if a[p*n+k].IsZero() {
			return nil, ErrSingular
		}
		if p != k {
			for j := range n {
				a[k*n+j], a[p*n+j] = a[p*n+j], a[k*n+j]
			}
			b[k], b[p] = b[p], b[k]
		}
		pivot := a[k*n+k]
		for i := k + 1; i < n; i++ {
			f := a[i*n+k].Div(pivot)
			if f.IsZero() {
				continue
			}
			for j := k; j < n; j++ {
				a[i*n+j] = a[i*n+j].Sub(f.Mul(a[k*n+j]))
			}
			b[i] = b[i].Sub(f.Mul(b[k]))
		}
	}

	x := make([]DD, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum = sum.Sub(a[i*n+j].Mul(x[j]))
		}
		x[i] = sum.Div(a[i*n+i])
		if !x[i].IsFinite() {
			return nil, ErrSingular
		}
	}
	return x, nil
}
