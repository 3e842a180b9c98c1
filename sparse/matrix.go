// SPDX-License-Identifier: MIT

// Package sparse provides the row-oriented general sparse matrix used by the
// ARMS preconditioner: every row is a variable-length list of (column, value)
// pairs, rows are independently owned, and the structural operations the
// multilevel reduction needs (permutation, 2×2 block split, transpose,
// diagonal scaling) run in place in O(nnz).
//
// Purpose:
//   - Hold the evolving Schur complement and the per-level blocks.
//   - Keep every mutating operation in place; allocate only what results need.
//
// Contract:
//   - Columns of a row are unique and lie in [0, Cols()).
//   - Row order of entries is not significant.
//   - A pattern-only matrix (withValues=false) has nil Vals in every row.
//
// Determinism:
//   - All loops run in fixed row→entry order; results are reproducible.
package sparse

import (
	"fmt"
	"math"
)

// opTag constants keep error prefixes uniform across the package.
const (
	opNew       = "New"
	opSet       = "Set"
	opAt        = "At"
	opSetRow    = "SetRow"
	opMulVec    = "MulVec"
	opTranspose = "Transpose"
)

// Row is one row of a sparse matrix: parallel column and value slices.
// Vals is nil for pattern-only matrices.
type Row struct {
	Cols []int
	Vals []float64
}

// Len returns the number of stored entries.
func (r Row) Len() int { return len(r.Cols) }

// Matrix is a rows×cols general sparse matrix stored by rows.
type Matrix struct {
	rows, cols int
	values     bool
	data       []Row
}

// sparseErrorf wraps err with an operation tag, preserving it for errors.Is.
func sparseErrorf(tag string, err error) error {
	return fmt.Errorf("sparse: %s: %w", tag, err)
}

// New allocates an empty rows×cols matrix. When withValues is false the
// matrix carries only a nonzero pattern.
func New(rows, cols int, withValues bool) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, sparseErrorf(opNew, ErrBadShape)
	}

	return &Matrix{
		rows:   rows,
		cols:   cols,
		values: withValues,
		data:   make([]Row, rows),
	}, nil
}

// NewSquare is New(n, n, true).
func NewSquare(n int) (*Matrix, error) { return New(n, n, true) }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// HasValues reports whether the matrix stores numeric values.
func (m *Matrix) HasValues() bool { return m.values }

// Row returns row i. The slices alias the matrix storage; callers must not
// retain them across mutating operations.
func (m *Matrix) Row(i int) Row { return m.data[i] }

// RowLen returns the number of entries stored in row i.
func (m *Matrix) RowLen(i int) int { return len(m.data[i].Cols) }

// SetRow replaces row i, taking ownership of cols and vals. vals must be nil
// for pattern-only matrices and len(cols) otherwise.
func (m *Matrix) SetRow(i int, cols []int, vals []float64) error {
	if i < 0 || i >= m.rows {
		return sparseErrorf(opSetRow, ErrOutOfRange)
	}
	if m.values && len(vals) != len(cols) {
		return sparseErrorf(opSetRow, ErrDimensionMismatch)
	}
	if !m.values {
		vals = nil
	}
	m.data[i] = Row{Cols: cols, Vals: vals}

	return nil
}

// Set stores v at (i, j), overwriting an existing entry or appending a new
// one. Explicit zeros are stored; use it to build fixtures, not in kernels.
// Complexity: O(len(row i)).
func (m *Matrix) Set(i, j int, v float64) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return sparseErrorf(opSet, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sparseErrorf(opSet, ErrNaNInf)
	}
	r := &m.data[i]
	for k, c := range r.Cols {
		if c == j {
			if m.values {
				r.Vals[k] = v
			}
			return nil
		}
	}
	r.Cols = append(r.Cols, j)
	if m.values {
		r.Vals = append(r.Vals, v)
	}

	return nil
}

// At returns the value stored at (i, j), zero when absent.
// Complexity: O(len(row i)).
func (m *Matrix) At(i, j int) (float64, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, sparseErrorf(opAt, ErrOutOfRange)
	}
	r := m.data[i]
	for k, c := range r.Cols {
		if c == j {
			if !m.values {
				return 1, nil
			}
			return r.Vals[k], nil
		}
	}

	return 0, nil
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	nnz := 0
	for i := range m.data {
		nnz += len(m.data[i].Cols)
	}

	return nnz
}

// Clone returns a deep copy; row storage is never shared.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, values: m.values, data: make([]Row, m.rows)}
	for i, r := range m.data {
		out.data[i] = r.clone()
	}

	return out
}

func (r Row) clone() Row {
	out := Row{}
	if len(r.Cols) > 0 {
		out.Cols = append(make([]int, 0, len(r.Cols)), r.Cols...)
	}
	if r.Vals != nil {
		out.Vals = append(make([]float64, 0, len(r.Vals)), r.Vals...)
	}

	return out
}

// Release drops all row storage. The matrix becomes an empty 0×0 shell.
func (m *Matrix) Release() {
	m.data = nil
	m.rows, m.cols = 0, 0
}

// MulVec computes dst = m·x. dst and x must not alias.
// Complexity: O(nnz).
func (m *Matrix) MulVec(dst, x []float64) {
	if len(dst) != m.rows || len(x) != m.cols {
		panic(sparseErrorf(opMulVec, ErrDimensionMismatch))
	}
	for i, r := range m.data {
		var s float64
		for k, c := range r.Cols {
			s += r.Vals[k] * x[c]
		}
		dst[i] = s
	}
}

// MulVecSub computes dst -= m·x, the update used by the block solves.
func (m *Matrix) MulVecSub(dst, x []float64) {
	if len(dst) != m.rows || len(x) != m.cols {
		panic(sparseErrorf(opMulVec, ErrDimensionMismatch))
	}
	for i, r := range m.data {
		var s float64
		for k, c := range r.Cols {
			s += r.Vals[k] * x[c]
		}
		dst[i] -= s
	}
}

// Transpose returns mᵀ as a new matrix. When withValues is false (or m is
// pattern-only) only the nonzero pattern is produced.
// Complexity: O(nnz + rows + cols).
func (m *Matrix) Transpose(withValues bool) (*Matrix, error) {
	withValues = withValues && m.values
	t, err := New(m.cols, m.rows, withValues)
	if err != nil {
		return nil, sparseErrorf(opTranspose, err)
	}

	// count entries per column first so every row is allocated exactly once
	counts := make([]int, m.cols)
	for _, r := range m.data {
		for _, c := range r.Cols {
			counts[c]++
		}
	}
	for j, cnt := range counts {
		if cnt == 0 {
			continue
		}
		t.data[j].Cols = make([]int, 0, cnt)
		if withValues {
			t.data[j].Vals = make([]float64, 0, cnt)
		}
	}
	for i, r := range m.data {
		for k, c := range r.Cols {
			t.data[c].Cols = append(t.data[c].Cols, i)
			if withValues {
				t.data[c].Vals = append(t.data[c].Vals, r.Vals[k])
			}
		}
	}

	return t, nil
}
