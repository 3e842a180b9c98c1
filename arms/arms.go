// SPDX-License-Identifier: MIT

// Package arms builds and applies the algebraic recursive multilevel solver
// (ARMS) preconditioner.
//
// Build repeatedly reorders the current Schur complement (starting from
// the input matrix), splits it into 2×2 blocks, factors the leading block
// incompletely and forms the next Schur complement. When the complement is
// small enough, the reordering degenerates or the level budget is spent,
// the last complement is factored with the threshold kernel (optionally
// pivoted). Apply then performs the recursive block solve.
//
// Ownership:
//   - Build never modifies its input; it works on a copy.
//   - Each intermediate Schur complement is released as soon as its blocks
//     are split off. Only the last C block survives, inside Coarse.
//   - A failed Build releases everything it allocated and returns no
//     partial preconditioner.
//
// Concurrency: a Preconditioner keeps per-level scratch buffers; Apply must
// not be called concurrently on the same value.
package arms

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/arms/ilut"
	"github.com/katalvlaran/arms/ordering"
	"github.com/katalvlaran/arms/sparse"
)

// Preconditioner is the complete multilevel factorization.
type Preconditioner struct {
	n        int
	inputNNZ int
	levels   []*Level
	coarse   *Coarse
	opts     Options
}

type state int

const (
	stateReducing state = iota
	stateCoarse
	stateDone
	stateFailed
)

// builder holds the mutable state of one Build call.
type builder struct {
	opts      Options
	partition ordering.Func
	log       *zap.Logger
	bsize     int

	schur  *sparse.Matrix
	lastC  *sparse.Matrix
	levels []*Level
	coarse *Coarse
	err    error
}

// Build constructs the preconditioner of the square matrix a.
//
// Options are validated before any work; a violation is returned wrapped
// in ErrOptionViolation. Kernel failures are returned as *LevelError.
func Build(a *sparse.Matrix, opts ...Option) (*Preconditioner, error) {
	if a == nil {
		return nil, ErrNilMatrix
	}
	if a.Rows() != a.Cols() {
		return nil, ErrNonSquare
	}
	o, err := gatherOptions(opts...)
	if err != nil {
		return nil, err
	}
	partition, err := ordering.Select(o.Strategy)
	if err != nil {
		return nil, err
	}

	n, nnz := a.Rows(), a.NNZ()
	if o.FillFactor > 0 {
		per := 1
		if n > 0 && nnz/n > 1 {
			per = nnz / n
		}
		for s := range o.Fill {
			o.Fill[s] = o.FillFactor * per
		}
	}

	b := &builder{
		opts:      o,
		partition: partition,
		log:       o.Logger,
		bsize:     o.BlockSize,
		schur:     a.Clone(),
	}
	b.log.Debug("arms build started",
		zap.Int("n", n),
		zap.Int("nnz", nnz),
		zap.Stringer("strategy", o.Strategy),
		zap.Int("bsize", b.bsize),
		zap.Int("maxLevels", o.Levels))

	st := stateReducing
	for st != stateDone && st != stateFailed {
		switch st {
		case stateReducing:
			st = b.reduce()
		case stateCoarse:
			st = b.factorCoarse()
		}
	}
	if st == stateFailed {
		b.release()
		b.log.Debug("arms build failed", zap.Error(b.err))
		return nil, b.err
	}

	p := &Preconditioner{
		n:        n,
		inputNNZ: nnz,
		levels:   b.levels,
		coarse:   b.coarse,
		opts:     o,
	}
	stats := p.Stats()
	b.log.Info("arms preconditioner built",
		zap.Int("levels", len(p.levels)),
		zap.Int("coarseN", p.coarse.N),
		zap.Int("nnz", stats.TotalNNZ),
		zap.Float64("fillRatio", stats.FillRatio),
		zap.Int("pivots", stats.Pivots))
	if o.Report != nil {
		if err := p.WriteReport(o.Report); err != nil {
			b.log.Warn("arms report not written", zap.Error(err))
		}
	}

	return p, nil
}

func (b *builder) fail(level int, stage Stage, err error) state {
	b.err = &LevelError{Level: level, Stage: stage, Err: err}
	return stateFailed
}

// scale applies the row and column scalings of m to a copy when either is
// requested; m itself is returned untouched otherwise.
func scale(m *sparse.Matrix, meth Method) (out *sparse.Matrix, d1, d2 []float64, err error) {
	if !meth.RowScale && !meth.ColScale {
		return m, nil, nil, nil
	}
	out = m.Clone()
	if meth.RowScale {
		if d1, err = out.ScaleRows(sparse.NormL1); err != nil {
			return nil, nil, nil, err
		}
	}
	if meth.ColScale {
		if d2, err = out.ScaleCols(sparse.NormL1); err != nil {
			return nil, nil, nil, err
		}
	}

	return out, d1, d2, nil
}

// reduce performs one ReducingLevel step.
func (b *builder) reduce() state {
	lev := len(b.levels)
	n := b.schur.Rows()
	if lev >= b.opts.Levels || n <= b.bsize {
		return stateCoarse
	}

	work, d1, d2, err := scale(b.schur, b.opts.Interior)
	if err != nil {
		return b.fail(lev, StageScale, err)
	}
	part, err := b.partition(work, b.bsize, b.opts.IndependenceTol)
	if err != nil {
		return b.fail(lev, StagePartition, err)
	}
	if part.Degenerate() {
		// the unscaled complement goes to the coarse level unchanged
		b.log.Debug("arms partition degenerate",
			zap.Int("level", lev), zap.Int("nB", part.NB), zap.Int("nC", part.NC))
		if work != b.schur {
			work.Release()
		}
		return stateCoarse
	}
	if err := part.Apply(work); err != nil {
		return b.fail(lev, StagePermute, err)
	}
	bb, f, e, c, err := work.Split4(part.NB)
	if err != nil {
		return b.fail(lev, StageSplit, err)
	}
	if work != b.schur {
		work.Release()
	}
	b.schur.Release()
	b.schur = nil

	blk, err := ilut.BlockFactor(bb, f, e, c, b.opts.blockParams())
	bb.Release()
	if err != nil {
		e.Release()
		f.Release()
		c.Release()
		return b.fail(lev, StageFactor, err)
	}
	if b.lastC != nil {
		b.lastC.Release()
	}
	b.lastC = c
	b.schur = blk.Schur

	l := &Level{
		Index:     lev,
		N:         n,
		Partition: part,
		D1:        d1,
		D2:        d2,
		L:         blk.L,
		U:         blk.U,
		E:         e,
		F:         f,
		work:      make([]float64, n),
	}
	b.levels = append(b.levels, l)
	b.log.Debug("arms level built",
		zap.Int("level", lev),
		zap.Int("n", n),
		zap.Int("nB", part.NB),
		zap.Int("nC", part.NC),
		zap.Stringer("kind", part.Kind),
		zap.Int("nnz", l.NNZ()),
		zap.Int("schurNNZ", blk.Schur.NNZ()))

	return stateReducing
}

// factorCoarse performs the CoarseFactorize step on the last complement.
func (b *builder) factorCoarse() state {
	lev := len(b.levels)
	last := b.opts.Last

	m, d1, d2, err := scale(b.schur, last)
	if err != nil {
		return b.fail(lev, StageScale, err)
	}
	if m != b.schur {
		b.schur.Release()
		b.schur = m
	}
	c := &Coarse{N: m.Rows(), D1: d1, D2: d2, work: make([]float64, m.Rows())}

	if last.NonsymPerm {
		part, err := ordering.DDPQ(m, b.bsize, 0)
		if err != nil {
			return b.fail(lev, StagePartition, err)
		}
		if err := part.Apply(m); err != nil {
			return b.fail(lev, StagePermute, err)
		}
		c.Rows, c.Cols = part.Rows, part.Cols
	}

	f, err := ilut.Factorize(m, b.opts.coarseParams())
	if err != nil {
		return b.fail(lev, StageCoarse, err)
	}
	m.Release()
	b.schur = nil

	c.Factors = f
	c.C, b.lastC = b.lastC, nil
	b.coarse = c
	b.log.Debug("arms coarse factorization built",
		zap.Int("n", c.N),
		zap.Bool("ddpq", last.NonsymPerm),
		zap.Bool("pivot", last.Pivot),
		zap.Int("pivots", f.Pivots),
		zap.Int("nnz", f.NNZ()))

	return stateDone
}

func (b *builder) release() {
	for _, l := range b.levels {
		l.release()
	}
	b.levels = nil
	for _, m := range []*sparse.Matrix{b.schur, b.lastC} {
		if m != nil {
			m.Release()
		}
	}
	b.schur, b.lastC = nil, nil
	if b.coarse != nil {
		b.coarse.release()
		b.coarse = nil
	}
}

// N returns the dimension of the preconditioned system.
func (p *Preconditioner) N() int { return p.n }

// Levels returns the number of reduction levels.
func (p *Preconditioner) Levels() int { return len(p.levels) }

// Level returns reduction level i, or nil when out of range.
func (p *Preconditioner) Level(i int) *Level {
	if i < 0 || i >= len(p.levels) {
		return nil
	}
	return p.levels[i]
}

// Coarse returns the coarse factorization, nil after Release.
func (p *Preconditioner) Coarse() *Coarse { return p.coarse }

// Options returns the configuration the preconditioner was built with.
func (p *Preconditioner) Options() Options { return p.opts }

// Release frees the level chain and the coarse factorization together.
// Apply returns ErrReleased afterwards.
func (p *Preconditioner) Release() {
	for _, l := range p.levels {
		l.release()
	}
	p.levels = nil
	if p.coarse != nil {
		p.coarse.release()
		p.coarse = nil
	}
}
