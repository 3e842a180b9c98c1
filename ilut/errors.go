// SPDX-License-Identifier: MIT
// Package ilut: sentinel error set.
// Every message is prefixed with "ilut: ..." so log lines stay greppable.
// Callers match with errors.Is; row-level failures additionally carry the
// offending row through *RowError (errors.As).

package ilut

import (
	"errors"
	"fmt"
)

var (
	// ErrRowOverflow reports a working row that grew beyond the matrix width.
	// It cannot happen for valid input and signals an internal fault.
	ErrRowOverflow = errors.New("ilut: working row overflow")

	// ErrIllegalFill is returned for a negative fill count, before any work.
	ErrIllegalFill = errors.New("ilut: fill counts must be >= 0")

	// ErrIllegalDrop is returned for a negative or non-finite drop tolerance.
	ErrIllegalDrop = errors.New("ilut: drop tolerances must be finite and >= 0")

	// ErrZeroRow is returned when a row has no nonzero value.
	ErrZeroRow = errors.New("ilut: zero row encountered")

	// ErrNilMatrix is returned when an input matrix is nil.
	ErrNilMatrix = errors.New("ilut: matrix is nil")

	// ErrNonSquare is returned when a square operand is required.
	ErrNonSquare = errors.New("ilut: matrix is not square")

	// ErrDimensionMismatch is returned when block shapes or vector lengths
	// disagree.
	ErrDimensionMismatch = errors.New("ilut: dimension mismatch")
)

// RowError attaches the failing row index to a factorization error.
type RowError struct {
	Row int
	Err error
}

// Error implements error.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap exposes the sentinel to errors.Is.
func (e *RowError) Unwrap() error { return e.Err }

func ilutErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
