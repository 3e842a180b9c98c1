// SPDX-License-Identifier: MIT

package sparse

import "fmt"

// Split4 partitions m into the 2×2 block form
//
//	| B  F |
//	| E  C |
//
// where B is nB×nB. Rows [0,nB) feed B and F, rows [nB,rows) feed E and C;
// inside each row, columns below nB go left and the rest go right, shifted
// by nB. The four blocks own fresh storage and m is left untouched; the
// caller releases m when it no longer needs it.
// Complexity: O(nnz).
func (m *Matrix) Split4(nB int) (b, f, e, c *Matrix, err error) {
	if err = ValidateSquare(m); err != nil {
		return nil, nil, nil, nil, sparseErrorf("Split4", err)
	}
	if nB < 0 || nB > m.rows {
		return nil, nil, nil, nil, sparseErrorf("Split4", fmt.Errorf("nB=%d n=%d: %w", nB, m.rows, ErrOutOfRange))
	}
	nC := m.rows - nB

	b, _ = New(nB, nB, m.values)
	f, _ = New(nB, nC, m.values)
	e, _ = New(nC, nB, m.values)
	c, _ = New(nC, nC, m.values)

	for i, r := range m.data {
		left, right := b, f
		row := i
		if i >= nB {
			left, right = e, c
			row = i - nB
		}
		nl := 0
		for _, col := range r.Cols {
			if col < nB {
				nl++
			}
		}
		lr := newRow(nl, m.values)
		rr := newRow(len(r.Cols)-nl, m.values)
		for k, col := range r.Cols {
			if col < nB {
				lr.Cols = append(lr.Cols, col)
				if m.values {
					lr.Vals = append(lr.Vals, r.Vals[k])
				}
			} else {
				rr.Cols = append(rr.Cols, col-nB)
				if m.values {
					rr.Vals = append(rr.Vals, r.Vals[k])
				}
			}
		}
		left.data[row] = lr
		right.data[row] = rr
	}

	return b, f, e, c, nil
}

// Join4 reassembles blocks produced by Split4 into one matrix. It is the
// exact inverse of Split4: the pattern and values of the source come back.
func Join4(b, f, e, c *Matrix) (*Matrix, error) {
	for _, blk := range []*Matrix{b, f, e, c} {
		if err := ValidateNotNil(blk); err != nil {
			return nil, sparseErrorf("Join4", err)
		}
	}
	nB, nC := b.rows, c.rows
	if b.cols != nB || c.cols != nC || f.rows != nB || f.cols != nC || e.rows != nC || e.cols != nB {
		return nil, sparseErrorf("Join4", ErrDimensionMismatch)
	}
	values := b.values && f.values && e.values && c.values
	out, _ := New(nB+nC, nB+nC, values)
	for i := 0; i < nB+nC; i++ {
		left, right, row := b, f, i
		if i >= nB {
			left, right, row = e, c, i-nB
		}
		lr, rr := left.data[row], right.data[row]
		r := newRow(len(lr.Cols)+len(rr.Cols), values)
		r.Cols = append(r.Cols, lr.Cols...)
		for _, col := range rr.Cols {
			r.Cols = append(r.Cols, col+nB)
		}
		if values {
			r.Vals = append(r.Vals, lr.Vals...)
			r.Vals = append(r.Vals, rr.Vals...)
		}
		out.data[i] = r
	}

	return out, nil
}

func newRow(capacity int, values bool) Row {
	r := Row{Cols: make([]int, 0, capacity)}
	if values {
		r.Vals = make([]float64, 0, capacity)
	}

	return r
}
