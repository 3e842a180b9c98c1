// SPDX-License-Identifier: MIT
// Package sparse: sentinel error set.
// All operations return these sentinels (optionally wrapped with context via
// fmt.Errorf("...: %w", ErrX)); callers and tests match them with errors.Is.
// Panics are reserved for programmer errors in private helpers.

package sparse

import "errors"

var (
	// ErrBadShape is returned when a requested shape is negative.
	ErrBadShape = errors.New("sparse: invalid shape")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	ErrOutOfRange = errors.New("sparse: index out of range")

	// ErrDimensionMismatch indicates incompatible operand dimensions.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("sparse: matrix is not square")

	// ErrBadPermutation signals that a permutation is not a bijection on [0,n).
	ErrBadPermutation = errors.New("sparse: invalid permutation")

	// ErrDuplicateColumn signals two entries with the same column in one row.
	ErrDuplicateColumn = errors.New("sparse: duplicate column in row")

	// ErrNaNInf signals a NaN or ±Inf value.
	ErrNaNInf = errors.New("sparse: NaN or Inf encountered")

	// ErrZeroRow signals a row whose norm is zero where a scale is required.
	ErrZeroRow = errors.New("sparse: zero row")

	// ErrZeroCol signals a column whose norm is zero where a scale is required.
	ErrZeroCol = errors.New("sparse: zero column")

	// ErrNilMatrix indicates that a nil *Matrix was used.
	ErrNilMatrix = errors.New("sparse: nil matrix")

	// ErrNoValues is returned when a numeric operation meets a pattern-only matrix.
	ErrNoValues = errors.New("sparse: matrix holds pattern only")
)
