// SPDX-License-Identifier: MIT

package ordering

import (
	"math"

	"github.com/katalvlaran/arms/sparse"
)

// Weights returns, for every row, |a_ii| / Σ_j |a_ij| normalised by the
// largest such ratio, so the best row scores 1. Rows without a diagonal or
// without entries score 0.
// Complexity: O(nnz).
func Weights(m *sparse.Matrix) []float64 {
	n := m.Rows()
	w := make([]float64, n)
	wmax := 0.0
	for i := 0; i < n; i++ {
		r := m.Row(i)
		diag, sum := 0.0, 0.0
		for k, c := range r.Cols {
			a := math.Abs(r.Vals[k])
			if c == i {
				diag = a
			}
			sum += a
		}
		if sum != 0 {
			w[i] = diag / sum
		}
		wmax = math.Max(wmax, w[i])
	}
	if wmax > 0 {
		for i := range w {
			w[i] /= wmax
		}
	}

	return w
}

// indsetWalker holds the state of one independent-set pass.
//
// iord[v] is the new position of row v (-1 while unvisited); riord is its
// inverse. The independent set fills positions from the front, the
// complement from the back.
type indsetWalker struct {
	m, mt *sparse.Matrix
	iord  []int
	riord []int
	last  int // last position used by the independent set
	back  int // next free position for the complement
}

func (w *indsetWalker) toSet(v int) {
	w.last++
	w.iord[v] = w.last
	w.riord[w.last] = v
}

func (w *indsetWalker) toComplement(v int) {
	w.iord[v] = w.back
	w.riord[w.back] = v
	w.back--
}

// neighbors calls fn for every row adjacent to v in A or Aᵀ; fn returns
// false to stop early.
func (w *indsetWalker) neighbors(v int, fn func(u int) bool) {
	for _, u := range w.m.Row(v).Cols {
		if u != v && !fn(u) {
			return
		}
	}
	for _, u := range w.mt.Row(v).Cols {
		if u != v && !fn(u) {
			return
		}
	}
}

// grow extends the block seeded at position start breadth-first until it
// holds bsize rows or no unvisited neighbour is left.
func (w *indsetWalker) grow(start, bsize int) {
	count := 1
	begin := start
	for count < bsize {
		mid := w.last
		for pos := begin; pos <= mid && count < bsize; pos++ {
			w.neighbors(w.riord[pos], func(u int) bool {
				if w.iord[u] == -1 {
					w.toSet(u)
					count++
				}
				return count < bsize
			})
		}
		if w.last == mid {
			return
		}
		begin = mid + 1
	}
}

// seal sends every unvisited neighbour of the block [start, last] to the
// complement, so no later block can touch it.
func (w *indsetWalker) seal(start int) {
	for pos := start; pos <= w.last; pos++ {
		w.neighbors(w.riord[pos], func(u int) bool {
			if w.iord[u] == -1 {
				w.toComplement(u)
			}
			return true
		})
	}
}

// IndependentSet computes a greedy block independent-set ordering.
//
// Rows whose Weights value is below tol are sent to the complement up
// front. The remaining rows are scanned in index order; every unvisited row
// seeds a block that grows breadth-first through the pattern of A and Aᵀ up
// to bsize rows, after which all its unvisited neighbours are sent to the
// complement. Consequently rows of different blocks are never adjacent, and
// for bsize <= 1 the accepted rows form a true independent set. A block
// reaches bsize unless its reachable unvisited neighbourhood runs out. The
// values of the matrix are only used through the weights.
//
// The ordering is symmetric: Rows is used for both rows and columns.
// Complexity: O(nnz) plus one pattern transpose.
func IndependentSet(m *sparse.Matrix, bsize int, tol float64) (Partition, error) {
	if err := validate(m, bsize); err != nil {
		return Partition{}, err
	}
	n := m.Rows()
	mt, err := m.Transpose(false)
	if err != nil {
		return Partition{}, err
	}
	w := &indsetWalker{
		m:     m,
		mt:    mt,
		iord:  make([]int, n),
		riord: make([]int, n),
		last:  -1,
		back:  n - 1,
	}
	for v := range w.iord {
		w.iord[v] = -1
	}

	weights := Weights(m)
	for v, wt := range weights {
		if wt < tol {
			w.toComplement(v)
		}
	}
	for v := 0; v < n; v++ {
		if w.iord[v] != -1 {
			continue
		}
		start := w.last + 1
		w.toSet(v)
		w.grow(start, bsize)
		w.seal(start)
	}

	nB := w.last + 1

	return Partition{Kind: Symmetric, NB: nB, NC: n - nB, Rows: w.iord}, nil
}
