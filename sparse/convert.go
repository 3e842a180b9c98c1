// SPDX-License-Identifier: MIT

package sparse

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FromCSR builds an n×n matrix from 0-based compressed sparse row arrays:
// row i holds ja[ia[i]:ia[i+1]] / a[ia[i]:ia[i+1]]. The input slices are
// copied. The result is validated.
func FromCSR(n int, ia, ja []int, a []float64) (*Matrix, error) {
	if n < 0 || len(ia) != n+1 {
		return nil, sparseErrorf("FromCSR", ErrBadShape)
	}
	if ia[0] != 0 || ia[n] != len(ja) || len(ja) != len(a) {
		return nil, sparseErrorf("FromCSR", ErrDimensionMismatch)
	}
	m, _ := New(n, n, true)
	for i := 0; i < n; i++ {
		lo, hi := ia[i], ia[i+1]
		if lo > hi {
			return nil, sparseErrorf("FromCSR", fmt.Errorf("row %d: %w", i, ErrOutOfRange))
		}
		m.data[i] = Row{
			Cols: append(make([]int, 0, hi-lo), ja[lo:hi]...),
			Vals: append(make([]float64, 0, hi-lo), a[lo:hi]...),
		}
	}
	if err := m.Validate(); err != nil {
		return nil, sparseErrorf("FromCSR", err)
	}

	return m, nil
}

// FromCOO builds an n×n matrix from 0-based coordinate triplets. Duplicate
// (row, col) pairs are summed, which is the usual assembly convention.
func FromCOO(n int, rows, cols []int, vals []float64) (*Matrix, error) {
	if n < 0 {
		return nil, sparseErrorf("FromCOO", ErrBadShape)
	}
	if len(rows) != len(cols) || len(cols) != len(vals) {
		return nil, sparseErrorf("FromCOO", ErrDimensionMismatch)
	}
	m, _ := New(n, n, true)
	pos := make([]int, n)
	for j := range pos {
		pos[j] = -1
	}
	// bucket by row, then merge duplicates with a column marker per row
	counts := make([]int, n)
	for k, i := range rows {
		if i < 0 || i >= n || cols[k] < 0 || cols[k] >= n {
			return nil, sparseErrorf("FromCOO", fmt.Errorf("entry %d (%d,%d): %w", k, i, cols[k], ErrOutOfRange))
		}
		counts[i]++
	}
	for i, cnt := range counts {
		m.data[i] = newRow(cnt, true)
	}
	for k, i := range rows {
		r := &m.data[i]
		r.Cols = append(r.Cols, cols[k])
		r.Vals = append(r.Vals, vals[k])
	}
	for i := range m.data {
		r := &m.data[i]
		kept := 0
		for k, c := range r.Cols {
			if p := pos[c]; p >= 0 {
				r.Vals[p] += r.Vals[k]
				continue
			}
			pos[c] = kept
			r.Cols[kept], r.Vals[kept] = c, r.Vals[k]
			kept++
		}
		r.Cols, r.Vals = r.Cols[:kept], r.Vals[:kept]
		for _, c := range r.Cols {
			pos[c] = -1
		}
	}
	if err := m.Validate(); err != nil {
		return nil, sparseErrorf("FromCOO", err)
	}

	return m, nil
}

// FromDense copies the nonzero entries of a gonum matrix.
func FromDense(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m, _ := New(r, c, true)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); v != 0 {
				m.data[i].Cols = append(m.data[i].Cols, j)
				m.data[i].Vals = append(m.data[i].Vals, v)
			}
		}
	}

	return m
}

// Dense expands m into a gonum dense matrix. Meant for small blocks and
// reference checks; pattern-only entries become 1.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	for i, r := range m.data {
		for k, c := range r.Cols {
			v := 1.0
			if m.values {
				v = r.Vals[k]
			}
			d.Set(i, c, d.At(i, c)+v)
		}
	}

	return d
}
