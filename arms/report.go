// SPDX-License-Identifier: MIT

package arms

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// LevelStats summarises one reduction level.
type LevelStats struct {
	Level int
	N     int
	NB    int
	NC    int
	NNZ   int
}

// Stats summarises the storage of a preconditioner.
type Stats struct {
	N         int
	InputNNZ  int
	Levels    []LevelStats
	CoarseN   int
	CoarseNNZ int
	Pivots    int
	// TotalNNZ counts every retained entry: levels plus coarse factors.
	TotalNNZ int
	// FillRatio is TotalNNZ / InputNNZ (0 for an empty input).
	FillRatio float64
}

// Stats returns the level table and nonzero counts. It returns the zero
// value after Release.
func (p *Preconditioner) Stats() Stats {
	if p.coarse == nil {
		return Stats{}
	}
	s := Stats{
		N:         p.n,
		InputNNZ:  p.inputNNZ,
		Levels:    make([]LevelStats, 0, len(p.levels)),
		CoarseN:   p.coarse.N,
		CoarseNNZ: p.coarse.NNZ(),
		Pivots:    p.coarse.Factors.Pivots,
	}
	for _, l := range p.levels {
		ls := LevelStats{Level: l.Index + 1, N: l.N, NB: l.NB(), NC: l.NC(), NNZ: l.NNZ()}
		s.Levels = append(s.Levels, ls)
		s.TotalNNZ += ls.NNZ
	}
	s.TotalNNZ += s.CoarseNNZ
	if s.InputNNZ > 0 {
		s.FillRatio = float64(s.TotalNNZ) / float64(s.InputNNZ)
	}

	return s
}

// WriteReport writes the level table (level, unknowns at entry, B-block
// size, coarse set size) followed by the nonzero summary.
func (p *Preconditioner) WriteReport(w io.Writer) error {
	s := p.Stats()
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Level\tTotal Unknowns\tB-block\tCoarse set\t")
	fmt.Fprintln(tw, "=====\t==============\t=======\t==========\t")
	for _, l := range s.Levels {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t\n", l.Level, l.N, l.NB, l.NC)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		"levels: %d  coarse n: %d  nnz(levels+coarse): %d  nnz(A): %d  fill ratio: %.3f  pivots: %d\n",
		len(s.Levels), s.CoarseN, s.TotalNNZ, s.InputNNZ, s.FillRatio, s.Pivots)

	return err
}
