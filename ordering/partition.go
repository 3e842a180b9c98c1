// SPDX-License-Identifier: MIT

// Package ordering implements the two level-reordering strategies of the
// multilevel preconditioner. Both split the rows of the current Schur
// complement into a leading block B (eliminated at this level) and a
// complement C (carried to the next level):
//
//   - IndependentSet: greedy block independent sets grown breadth-first over
//     the nonzero pattern, filtered by a diagonal-dominance weight. Symmetric:
//     one permutation serves rows and columns.
//   - DDPQ: diagonal-dominance maximising nonsymmetric ordering; rows and
//     columns get independent permutations so that B is as dominant and as
//     sparse as possible.
//
// Permutations are new-index-for-old-index, the convention of
// sparse.Matrix.PermuteRows/PermuteCols.
package ordering

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/arms/sparse"
)

// Sentinel errors.
var (
	// ErrNilMatrix is returned for a nil input matrix.
	ErrNilMatrix = errors.New("ordering: matrix is nil")

	// ErrNonSquare is returned when the input matrix is not square.
	ErrNonSquare = errors.New("ordering: matrix is not square")

	// ErrBadBlockSize is returned for a negative target block size.
	ErrBadBlockSize = errors.New("ordering: block size must be >= 0")

	// ErrUnknownStrategy is returned by Select for an unknown Strategy.
	ErrUnknownStrategy = errors.New("ordering: unknown strategy")
)

// Kind tags a Partition as symmetric (one permutation) or nonsymmetric.
type Kind int

const (
	// Symmetric reorderings permute rows and columns identically.
	Symmetric Kind = iota
	// Nonsymmetric reorderings carry a separate column permutation.
	Nonsymmetric
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Nonsymmetric {
		return "nonsymmetric"
	}
	return "symmetric"
}

// Partition is the result of a reordering pass.
//
// Rows is the row permutation. Cols is only set for Nonsymmetric partitions;
// use ColumnPerm to obtain the permutation to apply to columns, so that one
// buffer never plays two roles.
type Partition struct {
	Kind Kind
	NB   int
	NC   int
	Rows []int
	Cols []int
}

// Degenerate reports an empty B block or an empty complement. The
// multilevel loop treats it as its stopping signal, not as an error.
func (p Partition) Degenerate() bool { return p.NB == 0 || p.NC == 0 }

// ColumnPerm returns the column permutation: Cols for nonsymmetric
// partitions, Rows otherwise.
func (p Partition) ColumnPerm() []int {
	if p.Kind == Nonsymmetric {
		return p.Cols
	}
	return p.Rows
}

// Apply permutes m in place: rows by Rows, columns by ColumnPerm.
func (p Partition) Apply(m *sparse.Matrix) error {
	return m.Permute(p.Rows, p.ColumnPerm())
}

// Func is the signature shared by both strategies.
type Func func(m *sparse.Matrix, bsize int, tol float64) (Partition, error)

// Strategy selects a reordering algorithm.
type Strategy int

const (
	// IndSet selects IndependentSet.
	IndSet Strategy = iota
	// DiagDominance selects DDPQ.
	DiagDominance
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case IndSet:
		return "indset"
	case DiagDominance:
		return "ddpq"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps "indset" / "ddpq" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "indset", "":
		return IndSet, nil
	case "ddpq":
		return DiagDominance, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Select returns the reordering function for s.
func Select(s Strategy) (Func, error) {
	switch s {
	case IndSet:
		return IndependentSet, nil
	case DiagDominance:
		return DDPQ, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
	}
}

func validate(m *sparse.Matrix, bsize int) error {
	if m == nil {
		return ErrNilMatrix
	}
	if m.Rows() != m.Cols() {
		return ErrNonSquare
	}
	if bsize < 0 {
		return ErrBadBlockSize
	}
	return nil
}
