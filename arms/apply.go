// SPDX-License-Identifier: MIT

package arms

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/arms/ilut"
	"github.com/katalvlaran/arms/sparse"
)

// Apply computes dst ≈ A⁻¹·rhs with the multilevel factorization. dst and
// rhs may alias.
//
// At every level the right-hand side is scaled and permuted, split into
// (yB, yC), and the block system is solved in two sweeps:
//
//	yC ← yC - E·U⁻¹L⁻¹·yB,  yC ← S⁻¹·yC  (next level),
//	yB ← U⁻¹L⁻¹·(yB - F·yC),
//
// after which the permutation and scaling are undone. The last S⁻¹ is the
// coarse factorization.
func (p *Preconditioner) Apply(dst, rhs []float64) error {
	if p.coarse == nil {
		return ErrReleased
	}
	for _, v := range [][]float64{dst, rhs} {
		if err := sparse.ValidateVecLen(v, p.n); err != nil {
			return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
		}
	}
	copy(dst, rhs)
	p.solve(0, dst)

	return nil
}

// solve overwrites x, the right-hand side of level lev, with the solution.
func (p *Preconditioner) solve(lev int, x []float64) {
	if lev == len(p.levels) {
		p.coarse.solve(x)
		return
	}
	l := p.levels[lev]
	nB := l.NB()

	scaleVec(x, l.D1)
	y := l.work
	for i, r := range l.Partition.Rows {
		y[r] = x[i]
	}
	yB, yC := y[:nB], y[nB:]

	// x is free until the final unpermute; its head holds U⁻¹L⁻¹·yB.
	z := x[:nB]
	copy(z, yB)
	ilut.LUSolve(l.L, l.U, z)
	l.E.MulVecSub(yC, z)

	p.solve(lev+1, yC)

	l.F.MulVecSub(yB, yC)
	ilut.LUSolve(l.L, l.U, yB)

	for c, pos := range l.Partition.ColumnPerm() {
		x[c] = y[pos]
	}
	scaleVec(x, l.D2)
}

func (c *Coarse) solve(x []float64) {
	scaleVec(x, c.D1)
	z := c.work
	if c.Rows != nil {
		for i, r := range c.Rows {
			z[r] = x[i]
		}
	} else {
		copy(z, x)
	}
	// lengths match by construction
	_ = c.Factors.Solve(z, z)
	if c.Cols != nil {
		for col, pos := range c.Cols {
			x[col] = z[pos]
		}
	} else {
		copy(x, z)
	}
	scaleVec(x, c.D2)
}

// scaleVec multiplies x elementwise by d; a nil d is the identity.
func scaleVec(x, d []float64) {
	if d != nil {
		floats.Mul(x, d)
	}
}
