// SPDX-License-Identifier: MIT

package arms

import (
	"github.com/katalvlaran/arms/ilut"
	"github.com/katalvlaran/arms/ordering"
	"github.com/katalvlaran/arms/sparse"
)

// Level is one reduction step. Its system is the Schur complement entering
// the step (the input matrix for level 0), scaled by D1 and D2 when those
// are set and reordered by Partition:
//
//	P·D1·S·D2·Q = | B  F |,   B ≈ L·U
//	              | E  C |
//
// C itself is not kept; the next level starts from the approximate Schur
// complement of B.
type Level struct {
	Index     int
	N         int
	Partition ordering.Partition
	D1, D2    []float64

	L, U *sparse.Matrix
	E, F *sparse.Matrix

	work []float64
}

// NB returns the size of the eliminated block.
func (l *Level) NB() int { return l.Partition.NB }

// NC returns the size of the Schur complement passed on.
func (l *Level) NC() int { return l.Partition.NC }

// NNZ returns the entries retained by the level: L, U, E and F.
func (l *Level) NNZ() int {
	return l.L.NNZ() + l.U.NNZ() + l.E.NNZ() + l.F.NNZ()
}

func (l *Level) release() {
	for _, m := range []*sparse.Matrix{l.L, l.U, l.E, l.F} {
		if m != nil {
			m.Release()
		}
	}
	l.D1, l.D2, l.work = nil, nil, nil
}

// Coarse is the factorization of the last Schur complement, after optional
// scaling (D1, D2) and an optional ddPQ reordering (Rows, Cols; nil when
// skipped). C is the C block of the last level, kept for inspection; it is
// nil when no level was built.
type Coarse struct {
	N          int
	D1, D2     []float64
	Rows, Cols []int
	Factors    *ilut.Factors
	C          *sparse.Matrix

	work []float64
}

// NNZ returns the entries of the coarse factors.
func (c *Coarse) NNZ() int { return c.Factors.NNZ() }

func (c *Coarse) release() {
	if c.Factors != nil {
		c.Factors.Release()
	}
	if c.C != nil {
		c.C.Release()
	}
	c.D1, c.D2, c.work = nil, nil, nil
}
