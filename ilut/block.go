// SPDX-License-Identifier: MIT

package ilut

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/arms/sparse"
)

// Block is one reduction step: the incomplete factors of B, stored like
// Factors.L and Factors.U, and the approximate Schur complement
// S ≈ C - E·U⁻¹·L⁻¹·F.
type Block struct {
	L     *sparse.Matrix
	U     *sparse.Matrix
	Schur *sparse.Matrix
}

// BlockFactor performs one reduction step on the 2×2 block matrix
//
//	| B  F |   | L       0 |   | U  L⁻¹F |
//	| E  C | ≈ | E·U⁻¹   I | × | 0   S   |
//
// Rows of [B F] are eliminated together, so each finished row yields a row
// of U (slot SlotU) and a row of L⁻¹F (slot SlotLF), with multipliers going
// to L (slot SlotL). Each row of [E C] is then reduced in two phases: the
// row of E·U⁻¹ is formed and truncated (slot SlotEU), and the Schur row is
// accumulated from C and the retained L⁻¹F rows (slot SlotSchur). The Schur
// diagonal is always kept. L⁻¹F and E·U⁻¹ exist only row by row inside this
// call. Drop tolerances are relative to the norm of the whole input row.
func BlockFactor(b, f, e, c *sparse.Matrix, p BlockParams) (*Block, error) {
	for _, m := range []*sparse.Matrix{b, f, e, c} {
		if m == nil {
			return nil, ilutErrorf(opBlock, ErrNilMatrix)
		}
	}
	nB, nC := b.Rows(), c.Rows()
	if b.Cols() != nB || c.Cols() != nC {
		return nil, ilutErrorf(opBlock, ErrNonSquare)
	}
	if f.Rows() != nB || f.Cols() != nC || e.Rows() != nC || e.Cols() != nB {
		return nil, ilutErrorf(opBlock, ErrDimensionMismatch)
	}
	if err := p.Validate(); err != nil {
		return nil, ilutErrorf(opBlock, err)
	}

	l, _ := sparse.NewSquare(nB)
	u, _ := sparse.NewSquare(nB)
	lf, _ := sparse.New(nB, nC, true)
	schur, _ := sparse.NewSquare(nC)
	w := newWorkRow(nB + nC)
	unshift := func(col int) int { return col - nB }

	for i := 0; i < nB; i++ {
		br, fr := b.Row(i), f.Row(i)
		tnorm := rowNorm(br.Vals, fr.Vals)
		if tnorm == 0 {
			return nil, ilutErrorf(opBlock, &RowError{Row: i, Err: ErrZeroRow})
		}
		w.reset(i, i)
		if err := w.addRow(br, 1, 0); err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: i, Err: err})
		}
		if err := w.addRow(fr, 1, nB); err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: i, Err: err})
		}
		mult, milu, err := w.eliminate(u, lf, nil, p.Drop[SlotL]*tnorm)
		if err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: i, Err: err})
		}
		w.clear()

		mult = keepLargest(mult, p.Fill[SlotL])
		cols, vals := packRow(nil, mult, identity)
		_ = l.SetRow(i, cols, vals)

		diag := w.upper[0]
		uPart, lfPart := splitAt(w.upper[1:], nB)
		uPart = keepLargest(dropSmall(uPart, p.Drop[SlotU]*tnorm), p.Fill[SlotU])
		lfPart = keepLargest(dropSmall(lfPart, p.Drop[SlotLF]*tnorm), p.Fill[SlotLF])

		d := diag.val + milu
		if d == 0 {
			d = (zeroPivotShift + p.Drop[SlotU]) * tnorm
		}
		diag.val = 1 / d
		cols, vals = packRow(&diag, uPart, identity)
		_ = u.SetRow(i, cols, vals)
		cols, vals = packRow(nil, lfPart, unshift)
		_ = lf.SetRow(i, cols, vals)
	}

	for i := 0; i < nC; i++ {
		er, cr := e.Row(i), c.Row(i)
		tnorm := rowNorm(er.Vals, cr.Vals)
		if tnorm == 0 {
			return nil, ilutErrorf(opBlock, &RowError{Row: nB + i, Err: ErrZeroRow})
		}

		// phase 1: the row of E·U⁻¹
		w.reset(nB, -1)
		if err := w.addRow(er, 1, 0); err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: nB + i, Err: err})
		}
		mult, _, err := w.eliminate(u, nil, nil, p.Drop[SlotEU]*tnorm)
		if err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: nB + i, Err: err})
		}
		w.clear()
		mult = keepLargest(mult, p.Fill[SlotEU])

		// phase 2: the Schur row C - (E·U⁻¹)(L⁻¹F)
		w.reset(nB, nB+i)
		if err := w.addRow(cr, 1, nB); err != nil {
			return nil, ilutErrorf(opBlock, &RowError{Row: nB + i, Err: err})
		}
		for _, m := range mult {
			if err := w.addRow(lf.Row(m.col), -m.val, nB); err != nil {
				return nil, ilutErrorf(opBlock, &RowError{Row: nB + i, Err: err})
			}
		}
		w.clear()

		diag := w.upper[0]
		off := keepLargest(dropSmall(w.upper[1:], p.Drop[SlotSchur]*tnorm), p.Fill[SlotSchur])
		cols, vals := packRow(&diag, off, unshift)
		_ = schur.SetRow(i, cols, vals)
	}

	return &Block{L: l, U: u, Schur: schur}, nil
}

// Dense returns the factors of B as dense matrices, as Factors.Dense does.
func (b *Block) Dense() (l, u *mat.Dense) {
	return denseFactors(b.L, b.U)
}

// NNZ returns the entries stored in the factors of B.
func (b *Block) NNZ() int { return b.L.NNZ() + b.U.NNZ() }
