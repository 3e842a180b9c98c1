// SPDX-License-Identifier: MIT

package ilut

import "math"

// zeroPivotShift is the constant part of the replacement used for an
// exactly zero pivot: (zeroPivotShift + DropU)·‖row‖₂.
const zeroPivotShift = 1e-4

// Params configures one threshold factorization.
//
// Drop tolerances are relative: an entry of row i is discarded when its
// magnitude is at most tol·‖row i‖₂. Fill counts bound the number of
// retained off-diagonal entries per row of L and of U.
type Params struct {
	DropL float64
	DropU float64
	FillL int
	FillU int

	// Pivot enables column pivoting (ILUTP).
	Pivot bool
	// PermTol: a candidate c replaces diagonal d only when |c|·PermTol > |d|.
	PermTol float64
	// Band limits the pivot search of row i to columns <= i-1+Band.
	// Band <= 0 searches the whole row.
	Band int
}

// Validate checks the fill counts and drop tolerances.
func (p Params) Validate() error {
	if p.FillL < 0 || p.FillU < 0 {
		return ErrIllegalFill
	}
	if !validDrop(p.DropL) || !validDrop(p.DropU) {
		return ErrIllegalDrop
	}

	return nil
}

func validDrop(t float64) bool {
	return t >= 0 && !math.IsInf(t, 0) && !math.IsNaN(t)
}

// BlockParams configures one reduction step. The slots are, in order:
// L of B, U of B, L⁻¹F, E·U⁻¹, and the Schur complement.
type BlockParams struct {
	Drop [5]float64
	Fill [5]int
}

// Slot indices of BlockParams.
const (
	SlotL = iota
	SlotU
	SlotLF
	SlotEU
	SlotSchur
)

// Validate checks every slot.
func (p BlockParams) Validate() error {
	for k := range p.Fill {
		if p.Fill[k] < 0 {
			return ErrIllegalFill
		}
		if !validDrop(p.Drop[k]) {
			return ErrIllegalDrop
		}
	}

	return nil
}
