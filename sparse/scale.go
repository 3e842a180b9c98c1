// SPDX-License-Identifier: MIT

package sparse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Norm selects the vector norm used by the diagonal scalings.
type Norm int

const (
	// NormInf scales by the largest magnitude.
	NormInf Norm = iota
	// NormL1 scales by the sum of magnitudes.
	NormL1
	// NormL2 scales by the Euclidean norm.
	NormL2
)

func (nrm Norm) order() float64 {
	switch nrm {
	case NormL1:
		return 1
	case NormL2:
		return 2
	default:
		return math.Inf(1)
	}
}

// ScaleRows replaces every row i by d[i]·row i with d[i] = 1/‖row i‖ and
// returns d. A zero row stops the scaling before any row is modified and
// is reported with its index.
// Complexity: O(nnz).
func (m *Matrix) ScaleRows(nrm Norm) ([]float64, error) {
	if !m.values {
		return nil, sparseErrorf("ScaleRows", ErrNoValues)
	}
	d := make([]float64, m.rows)
	for i, r := range m.data {
		t := 0.0
		if len(r.Vals) > 0 {
			t = floats.Norm(r.Vals, nrm.order())
		}
		if t == 0 {
			return nil, sparseErrorf("ScaleRows", fmt.Errorf("row %d: %w", i, ErrZeroRow))
		}
		d[i] = 1 / t
	}
	for i, r := range m.data {
		floats.Scale(d[i], r.Vals)
	}

	return d, nil
}

// ScaleCols replaces every column j by d[j]·column j with d[j] = 1/‖column j‖
// and returns d. A zero column is reported with its index and leaves m
// untouched.
// Complexity: O(nnz + cols).
func (m *Matrix) ScaleCols(nrm Norm) ([]float64, error) {
	if !m.values {
		return nil, sparseErrorf("ScaleCols", ErrNoValues)
	}
	d := make([]float64, m.cols)
	p := nrm.order()
	for _, r := range m.data {
		for k, c := range r.Cols {
			a := math.Abs(r.Vals[k])
			switch {
			case math.IsInf(p, 1):
				d[c] = math.Max(d[c], a)
			case p == 1:
				d[c] += a
			default:
				d[c] += a * a
			}
		}
	}
	for j := range d {
		if p == 2 {
			d[j] = math.Sqrt(d[j])
		}
		if d[j] == 0 {
			return nil, sparseErrorf("ScaleCols", fmt.Errorf("column %d: %w", j, ErrZeroCol))
		}
		d[j] = 1 / d[j]
	}
	for _, r := range m.data {
		for k, c := range r.Cols {
			r.Vals[k] *= d[c]
		}
	}

	return d, nil
}
