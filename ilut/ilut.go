// SPDX-License-Identifier: MIT

// Package ilut implements the dual-threshold incomplete LU kernel (ILUT) with
// optional column pivoting (ILUTP), and the single block reduction step of
// the multilevel preconditioner built on the same working-row machinery.
//
// Storage:
//   - L holds the strictly lower multipliers; its unit diagonal is implied.
//   - Row i of U starts with (i, 1/pivot) followed by its off-diagonals, so
//     the backward solve multiplies by the stored reciprocal.
//
// Dropping (per row i, ‖·‖ the Euclidean norm of input row i):
//   - multipliers with |m| <= DropL·‖row‖ are discarded and the working
//     values they would have eliminated are added to the pivot;
//   - L keeps at most FillL multipliers, largest first;
//   - U off-diagonals with |u| <= DropU·‖row‖ are discarded, then at most
//     FillU are kept.
//
// Zero pivots (including a structurally missing diagonal) are replaced by
// (1e-4 + DropU)·‖row‖ in both the plain and the pivoted variant.
package ilut

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/arms/sparse"
)

const (
	opFactorize = "Factorize"
	opSolve     = "Solve"
	opBlock     = "BlockFactor"
)

// Factors is the result of Factorize.
//
// With pivoting, L·U equals A with its columns reordered so that column k
// of the product is column Perm[k] of A. Perm is nil without pivoting.
type Factors struct {
	L      *sparse.Matrix
	U      *sparse.Matrix
	Perm   []int
	Pivots int

	work []float64
}

// Factorize computes the incomplete factorization of the square matrix a.
//
// Rows are processed in increasing order. Each row is unpacked into a
// working row, eliminated against the finished U rows in strictly increasing
// column order, truncated, and (with p.Pivot) has its largest admissible
// entry swapped into the diagonal. Failures are returned as a *RowError
// wrapping ErrZeroRow or ErrRowOverflow; configuration errors come first.
// Complexity: O(Σ_i fill_i · (len(U rows) + len(L candidates))).
func Factorize(a *sparse.Matrix, p Params) (*Factors, error) {
	if a == nil {
		return nil, ilutErrorf(opFactorize, ErrNilMatrix)
	}
	if a.Rows() != a.Cols() {
		return nil, ilutErrorf(opFactorize, ErrNonSquare)
	}
	if err := p.Validate(); err != nil {
		return nil, ilutErrorf(opFactorize, err)
	}

	n := a.Rows()
	l, _ := sparse.NewSquare(n)
	u, _ := sparse.NewSquare(n)
	f := &Factors{L: l, U: u}

	// perm[k] is the original column at position k, iperm its inverse.
	var perm, iperm []int
	colOf := identity
	if p.Pivot {
		perm = make([]int, n)
		iperm = make([]int, n)
		for k := range perm {
			perm[k], iperm[k] = k, k
		}
		colOf = func(c int) int { return perm[c] }
	}

	w := newWorkRow(n)
	for i := 0; i < n; i++ {
		r := a.Row(i)
		tnorm := rowNorm(r.Vals)
		if tnorm == 0 {
			return nil, ilutErrorf(opFactorize, &RowError{Row: i, Err: ErrZeroRow})
		}

		w.reset(i, i)
		for k, c := range r.Cols {
			if iperm != nil {
				c = iperm[c]
			}
			if err := w.add(c, r.Vals[k]); err != nil {
				return nil, ilutErrorf(opFactorize, &RowError{Row: i, Err: err})
			}
		}
		mult, milu, err := w.eliminate(u, nil, iperm, p.DropL*tnorm)
		if err != nil {
			return nil, ilutErrorf(opFactorize, &RowError{Row: i, Err: err})
		}
		w.clear()

		mult = keepLargest(mult, p.FillL)
		cols, vals := packRow(nil, mult, identity)
		_ = l.SetRow(i, cols, vals)

		diag := w.upper[0]
		off := keepLargest(dropSmall(w.upper[1:], p.DropU*tnorm), p.FillU)

		if p.Pivot {
			icut := n
			if p.Band > 0 {
				icut = i - 1 + p.Band
			}
			xmax0 := math.Abs(diag.val)
			xmax, imax := xmax0, -1
			for k, e := range off {
				t := math.Abs(e.val)
				if t > xmax && t*p.PermTol > xmax0 && e.col <= icut {
					xmax, imax = t, k
				}
			}
			if imax >= 0 {
				j := off[imax].col
				diag.val, off[imax].val = off[imax].val, diag.val
				perm[i], perm[j] = perm[j], perm[i]
				iperm[perm[i]] = i
				iperm[perm[j]] = j
				f.Pivots++
			}
		}

		d := diag.val + milu
		if d == 0 {
			d = (zeroPivotShift + p.DropU) * tnorm
		}
		diag.val = 1 / d
		cols, vals = packRow(&diag, off, colOf)
		_ = u.SetRow(i, cols, vals)
	}

	if p.Pivot {
		// U rows carry original column labels; move them to pivoted positions.
		if err := u.PermuteCols(iperm); err != nil {
			return nil, ilutErrorf(opFactorize, err)
		}
		f.Perm = perm
	}

	return f, nil
}

// N returns the dimension of the factored matrix.
func (f *Factors) N() int { return f.L.Rows() }

// NNZ returns the entries stored in L and U, pivots included.
func (f *Factors) NNZ() int { return f.L.NNZ() + f.U.NNZ() }

// Release drops the factor storage.
func (f *Factors) Release() {
	f.L.Release()
	f.U.Release()
	f.Perm, f.work = nil, nil
}

// Solve computes dst ≈ A⁻¹·rhs: forward substitution with L, backward
// substitution with U, then the column permutation is undone. dst and rhs
// may alias. Solve reuses an internal buffer and is not safe for concurrent
// use.
func (f *Factors) Solve(dst, rhs []float64) error {
	n := f.N()
	for _, v := range [][]float64{dst, rhs} {
		if err := sparse.ValidateVecLen(v, n); err != nil {
			return ilutErrorf(opSolve, fmt.Errorf("%w: %w", ErrDimensionMismatch, err))
		}
	}
	z := dst
	if f.Perm != nil {
		if len(f.work) != n {
			f.work = make([]float64, n)
		}
		z = f.work
	}
	copy(z, rhs)
	LUSolve(f.L, f.U, z)

	if f.Perm != nil {
		for k, c := range f.Perm {
			dst[c] = z[k]
		}
	}

	return nil
}

// LUSolve overwrites x with U⁻¹·L⁻¹·x for factors stored in the layout of
// Factors: L unit lower triangular, U with the reciprocal pivot first.
// It panics if len(x) differs from the factor dimension.
func LUSolve(l, u *sparse.Matrix, x []float64) {
	n := l.Rows()
	if len(x) != n || u.Rows() != n {
		panic(ilutErrorf(opSolve, ErrDimensionMismatch))
	}
	for i := 0; i < n; i++ {
		r := l.Row(i)
		s := x[i]
		for k, c := range r.Cols {
			s -= r.Vals[k] * x[c]
		}
		x[i] = s
	}
	for i := n - 1; i >= 0; i-- {
		r := u.Row(i)
		s := x[i]
		for k := 1; k < len(r.Cols); k++ {
			s -= r.Vals[k] * x[r.Cols[k]]
		}
		x[i] = s * r.Vals[0]
	}
}

// Dense returns the factors as dense matrices, L with its unit diagonal and
// U with its pivots restored. Intended for small problems and tests.
func (f *Factors) Dense() (l, u *mat.Dense) {
	return denseFactors(f.L, f.U)
}

func denseFactors(ls, us *sparse.Matrix) (l, u *mat.Dense) {
	n := ls.Rows()
	if n == 0 {
		return &mat.Dense{}, &mat.Dense{}
	}
	l = ls.Dense()
	for i := 0; i < n; i++ {
		l.Set(i, i, 1)
	}
	u = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		r := us.Row(i)
		for k, c := range r.Cols {
			v := r.Vals[k]
			if k == 0 {
				v = 1 / v
			}
			u.Set(i, c, v)
		}
	}

	return l, u
}

// rowNorm returns the Euclidean norm of the concatenated value slices.
func rowNorm(parts ...[]float64) float64 {
	t := 0.0
	for _, v := range parts {
		if len(v) > 0 {
			t = math.Hypot(t, floats.Norm(v, 2))
		}
	}

	return t
}
