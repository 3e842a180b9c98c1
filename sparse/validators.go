// SPDX-License-Identifier: MIT
// Package: sparse
//
// Purpose:
//   - Single source of truth for structural checks (shape, permutation, row content).
//   - Kernels call these before mutating anything so a failure leaves no partial state.
//
// Determinism & Performance:
//   - All checks are pure; CheckPerm and Validate allocate one marker slice.

package sparse

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying sentinel with the validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("sparse: %s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
func ValidateNotNil(m *Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
func ValidateSquare(m *Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.rows != m.cols {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateVecLen ensures len(x) == n.
func ValidateVecLen(x []float64, n int) error {
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// CheckPerm verifies that p is a bijection on [0,n). Permuting with anything
// else corrupts indices silently, so every in-place permutation calls it first.
// Complexity: O(n) time, O(n) space.
func CheckPerm(p []int, n int) error {
	if len(p) != n {
		return validatorErrorf("CheckPerm", fmt.Errorf("length %d want %d: %w", len(p), n, ErrBadPermutation))
	}
	seen := make([]bool, n)
	for i, v := range p {
		if v < 0 || v >= n {
			return validatorErrorf("CheckPerm", fmt.Errorf("p[%d]=%d out of range: %w", i, v, ErrBadPermutation))
		}
		if seen[v] {
			return validatorErrorf("CheckPerm", fmt.Errorf("p[%d]=%d repeated: %w", i, v, ErrBadPermutation))
		}
		seen[v] = true
	}

	return nil
}

// InversePerm returns q with q[p[i]] = i. p must be a valid permutation.
func InversePerm(p []int) []int {
	q := make([]int, len(p))
	for i, v := range p {
		q[v] = i
	}

	return q
}

// Validate checks every row: column indices in range and unique, values
// finite. It reports the first offending row.
// Complexity: O(nnz + cols).
func (m *Matrix) Validate() error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	mark := make([]int, m.cols)
	for j := range mark {
		mark[j] = -1
	}
	for i, r := range m.data {
		if m.values && len(r.Vals) != len(r.Cols) {
			return validatorErrorf("Validate", fmt.Errorf("row %d: %w", i, ErrDimensionMismatch))
		}
		for k, c := range r.Cols {
			if c < 0 || c >= m.cols {
				return validatorErrorf("Validate", fmt.Errorf("row %d col %d: %w", i, c, ErrOutOfRange))
			}
			if mark[c] == i {
				return validatorErrorf("Validate", fmt.Errorf("row %d col %d: %w", i, c, ErrDuplicateColumn))
			}
			mark[c] = i
			if m.values && (math.IsNaN(r.Vals[k]) || math.IsInf(r.Vals[k], 0)) {
				return validatorErrorf("Validate", fmt.Errorf("row %d col %d: %w", i, c, ErrNaNInf))
			}
		}
	}

	return nil
}
