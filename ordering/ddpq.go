// SPDX-License-Identifier: MIT

package ordering

import (
	"math"
	"sort"

	"github.com/katalvlaran/arms/sparse"
)

// Candidate is a preselected diagonal entry: row Row paired with column Col
// (the entry of largest magnitude in that row), ranked by Score.
type Candidate struct {
	Row   int
	Col   int
	Score float64
	nnz   int
}

// Preselect ranks one candidate per row, best to worst. The score of row i
// is max_j |a_ij| / Σ_j |a_ij|, normalised by the best row; rows scoring
// below tol, and empty rows, are left out. Ties go to the sparser row, then
// to the lower row index.
// Complexity: O(nnz + n log n).
func Preselect(m *sparse.Matrix, tol float64) []Candidate {
	n := m.Rows()
	cands := make([]Candidate, 0, n)
	best := 0.0
	for i := 0; i < n; i++ {
		r := m.Row(i)
		jmax, amax, sum := -1, 0.0, 0.0
		for k, c := range r.Cols {
			a := math.Abs(r.Vals[k])
			sum += a
			// prefer the diagonal on exact ties so symmetric inputs stay symmetric
			if a > amax || (a == amax && c == i) {
				jmax, amax = c, a
			}
		}
		if jmax < 0 || sum == 0 || amax == 0 {
			continue
		}
		s := amax / sum
		best = math.Max(best, s)
		cands = append(cands, Candidate{Row: i, Col: jmax, Score: s, nnz: len(r.Cols)})
	}
	if best == 0 {
		return nil
	}

	kept := cands[:0]
	for _, c := range cands {
		c.Score /= best
		if c.Score >= tol {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool {
		ca, cb := kept[a], kept[b]
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		if ca.nnz != cb.nnz {
			return ca.nnz < cb.nnz
		}
		return ca.Row < cb.Row
	})

	return kept
}

// DDPQ computes the diagonal-dominance maximising nonsymmetric ordering.
//
// Candidates from Preselect are visited best first. A candidate (i, j) is
// accepted when column j is still free; row i then becomes row NB of the
// permuted matrix, column j becomes column NB, and every other column of
// row i is blocked. Blocking keeps later B columns out of earlier B rows,
// so B stays sparse with its selected entries on the diagonal. Rows and
// columns that were not accepted fill the trailing positions in index
// order.
//
// bsize is not a cap on NB: for this strategy the driver only uses it as
// the size below which reduction stops.
// Complexity: O(nnz + n log n).
func DDPQ(m *sparse.Matrix, bsize int, tol float64) (Partition, error) {
	if err := validate(m, bsize); err != nil {
		return Partition{}, err
	}
	const (
		free    = -1
		blocked = -2
	)
	n := m.Rows()
	pord := make([]int, n)
	qord := make([]int, n)
	for i := range pord {
		pord[i], qord[i] = free, free
	}

	nB := 0
	for _, c := range Preselect(m, tol) {
		if qord[c.Col] != free {
			continue
		}
		pord[c.Row] = nB
		qord[c.Col] = nB
		nB++
		for _, col := range m.Row(c.Row).Cols {
			if qord[col] == free {
				qord[col] = blocked
			}
		}
	}

	next := nB
	for i := range pord {
		if pord[i] < 0 {
			pord[i] = next
			next++
		}
	}
	next = nB
	for j := range qord {
		if qord[j] < 0 {
			qord[j] = next
			next++
		}
	}

	return Partition{Kind: Nonsymmetric, NB: nB, NC: n - nB, Rows: pord, Cols: qord}, nil
}
