// SPDX-License-Identifier: MIT

// Package krylov provides a restarted flexible GMRES solver for use with
// preconditioners whose action may change between calls.
package krylov

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/arms/sparse"
)

// Sentinel errors returned by FGMRES.
var (
	// ErrNotConverged is returned when MaxIter iterations did not reach Tol.
	ErrNotConverged = errors.New("krylov: iteration limit reached")
	// ErrDimensionMismatch is returned when b and x differ in length.
	ErrDimensionMismatch = errors.New("krylov: dimension mismatch")
	// ErrBreakdown is returned when the Hessenberg column vanishes.
	ErrBreakdown = errors.New("krylov: breakdown")
	// ErrNilOperator is returned for a nil system operator.
	ErrNilOperator = errors.New("krylov: nil operator")
)

// Defaults used for zero Settings fields.
const (
	DefaultRestart = 30
	DefaultTol     = 1e-8
)

// Operator applies the system matrix: dst = A·src.
type Operator interface {
	Apply(dst, src []float64) error
}

// Preconditioner applies an approximate inverse: dst ≈ M⁻¹·src.
type Preconditioner interface {
	Apply(dst, src []float64) error
}

// OperatorFunc adapts a function to Operator and Preconditioner.
type OperatorFunc func(dst, src []float64) error

// Apply calls f(dst, src).
func (f OperatorFunc) Apply(dst, src []float64) error { return f(dst, src) }

// Matrix wraps a square sparse matrix as an Operator.
func Matrix(m *sparse.Matrix) Operator {
	return OperatorFunc(func(dst, src []float64) error {
		if err := sparse.ValidateVecLen(dst, m.Rows()); err != nil {
			return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
		if err := sparse.ValidateVecLen(src, m.Cols()); err != nil {
			return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
		m.MulVec(dst, src)
		return nil
	})
}

// Settings controls FGMRES. Zero values select the defaults: Restart 30,
// MaxIter twice the dimension, Tol 1e-8, no logging.
type Settings struct {
	// Restart is the Krylov subspace dimension between restarts.
	Restart int
	// MaxIter bounds the total number of inner iterations.
	MaxIter int
	// Tol is the target for ‖b - A·x‖₂ / ‖b‖₂.
	Tol    float64
	Logger *zap.Logger
}

func (s *Settings) defaults(n int) {
	if s.Restart <= 0 {
		s.Restart = DefaultRestart
	}
	s.Restart = min(s.Restart, max(n, 1))
	if s.MaxIter <= 0 {
		s.MaxIter = 2 * n
	}
	if s.Tol <= 0 {
		s.Tol = DefaultTol
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
}

// Result summarises a solve.
type Result struct {
	Iterations int
	// Residual is the last relative residual ‖b - A·x‖₂ / ‖b‖₂.
	Residual  float64
	Converged bool
	MatVec    int
	PSolve    int
}

// FGMRES solves A·x = b with right-preconditioned flexible GMRES(m),
// starting from the guess in x and overwriting x with the result. A nil m
// means no preconditioning.
//
// Each inner step stores the preconditioned direction zₖ = M⁻¹·vₖ, so
// the update x += Z·y stays valid when M varies between steps. The
// Hessenberg matrix is reduced by Givens rotations as it is built; the
// rotated right-hand side gives the residual norm without a matvec. Every
// restart recomputes the true residual b - A·x.
//
// FGMRES returns ErrNotConverged together with the partial Result when the
// iteration budget runs out.
func FGMRES(a Operator, m Preconditioner, b, x []float64, s Settings) (Result, error) {
	if a == nil {
		return Result{}, ErrNilOperator
	}
	n := len(b)
	if len(x) != n {
		return Result{}, ErrDimensionMismatch
	}
	var res Result
	if n == 0 {
		res.Converged = true
		return res, nil
	}
	s.defaults(n)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		res.Converged = true
		return res, nil
	}

	k := s.Restart
	v := make([][]float64, k+1)
	for i := range v {
		v[i] = make([]float64, n)
	}
	z := make([][]float64, k)
	for i := range z {
		z[i] = make([]float64, n)
	}
	h := make([][]float64, k+1)
	for i := range h {
		h[i] = make([]float64, k)
	}
	c := make([]float64, k)
	sn := make([]float64, k)
	g := make([]float64, k+1)
	y := make([]float64, k)

	for cycle := 0; ; cycle++ {
		// v₀ = b - A·x
		if err := a.Apply(v[0], x); err != nil {
			return res, fmt.Errorf("krylov: operator: %w", err)
		}
		res.MatVec++
		floats.SubTo(v[0], b, v[0])
		beta := floats.Norm(v[0], 2)
		res.Residual = beta / bnorm
		s.Logger.Debug("fgmres cycle",
			zap.Int("cycle", cycle),
			zap.Int("iterations", res.Iterations),
			zap.Float64("residual", res.Residual))
		if res.Residual <= s.Tol {
			res.Converged = true
			return res, nil
		}
		if res.Iterations >= s.MaxIter {
			return res, ErrNotConverged
		}

		floats.Scale(1/beta, v[0])
		for i := range g {
			g[i] = 0
		}
		g[0] = beta

		j := 0
		for j < k && res.Iterations < s.MaxIter {
			if m != nil {
				if err := m.Apply(z[j], v[j]); err != nil {
					return res, fmt.Errorf("krylov: preconditioner: %w", err)
				}
				res.PSolve++
			} else {
				copy(z[j], v[j])
			}
			w := v[j+1]
			if err := a.Apply(w, z[j]); err != nil {
				return res, fmt.Errorf("krylov: operator: %w", err)
			}
			res.MatVec++

			// modified Gram-Schmidt
			for i := 0; i <= j; i++ {
				h[i][j] = floats.Dot(w, v[i])
				floats.AddScaled(w, -h[i][j], v[i])
			}
			h[j+1][j] = floats.Norm(w, 2)
			if h[j+1][j] != 0 {
				floats.Scale(1/h[j+1][j], w)
			}

			for i := 0; i < j; i++ {
				t := c[i]*h[i][j] + sn[i]*h[i+1][j]
				h[i+1][j] = -sn[i]*h[i][j] + c[i]*h[i+1][j]
				h[i][j] = t
			}
			d := math.Hypot(h[j][j], h[j+1][j])
			if d == 0 {
				return res, ErrBreakdown
			}
			c[j], sn[j] = h[j][j]/d, h[j+1][j]/d
			h[j][j], h[j+1][j] = d, 0
			g[j+1] = -sn[j] * g[j]
			g[j] = c[j] * g[j]

			j++
			res.Iterations++
			if math.Abs(g[j])/bnorm <= s.Tol {
				break
			}
		}

		// y = H⁻¹·g on the leading j×j triangle, then x += Z·y
		for i := j - 1; i >= 0; i-- {
			t := g[i]
			for l := i + 1; l < j; l++ {
				t -= h[i][l] * y[l]
			}
			y[i] = t / h[i][i]
		}
		for i := 0; i < j; i++ {
			floats.AddScaled(x, y[i], z[i])
		}
	}
}
