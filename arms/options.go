// SPDX-License-Identifier: MIT

package arms

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/arms/ilut"
	"github.com/katalvlaran/arms/ordering"
)

// Slot indexes the seven fill-count and drop-tolerance pairs.
type Slot int

const (
	// SlotL is the L factor of each B block.
	SlotL Slot = iota
	// SlotU is the U factor of each B block.
	SlotU
	// SlotLF is the intermediate L⁻¹F.
	SlotLF
	// SlotEU is the intermediate E·U⁻¹.
	SlotEU
	// SlotSchur is the Schur complement update.
	SlotSchur
	// SlotCoarseL is the L factor of the coarse factorization.
	SlotCoarseL
	// SlotCoarseU is the U factor of the coarse factorization.
	SlotCoarseU

	// NumSlots is the number of slots.
	NumSlots = 7
)

// Method holds the per-level method flags. NonsymPerm and Pivot only
// affect the coarse level; the scalings apply wherever the Method is used.
type Method struct {
	// NonsymPerm runs a ddPQ reordering (tolerance 0) before the coarse
	// factorization.
	NonsymPerm bool
	// Pivot selects the column-pivoted coarse factorization.
	Pivot bool
	// RowScale scales rows by their inverse 1-norms before factoring.
	RowScale bool
	// ColScale scales columns by their inverse 1-norms before factoring.
	ColScale bool
}

// Defaults.
const (
	DefaultLevels          = 10
	DefaultBlockSize       = 30
	DefaultFill            = 50
	DefaultBaseDropTol     = 1e-3
	DefaultPermTol         = 0.99
	DefaultIndependenceTol = 0.7
)

// dropCoef scales the base drop tolerance per slot: the interlevel factors
// drop more aggressively than the Schur update and the coarse factors.
var dropCoef = [NumSlots]float64{1.6, 1.6, 1.6, 1.6, 0.004, 0.004, 0.004}

// Options is the immutable configuration of one Build call.
type Options struct {
	Levels    int
	Strategy  ordering.Strategy
	BlockSize int

	Interior Method
	Last     Method

	Fill [NumSlots]int
	Drop [NumSlots]float64
	// FillFactor, when > 0, overrides Fill with FillFactor·⌊nnz/n⌋ per slot.
	FillFactor int

	PermTol         float64
	Band            int
	IndependenceTol float64

	Logger *zap.Logger
	Report io.Writer

	err error
}

// Option configures Build.
// An invalid Option is recorded and surfaced as ErrOptionViolation.
type Option func(*Options)

// DefaultOptions returns the configuration used when no Option is given:
// independent-set reordering, row and column scaling everywhere, ddPQ and
// pivoting at the coarse level, fill 50 per slot and drop tolerances
// 1e-3 scaled by the per-slot coefficients.
func DefaultOptions() Options {
	o := Options{
		Levels:          DefaultLevels,
		Strategy:        ordering.IndSet,
		BlockSize:       DefaultBlockSize,
		Interior:        Method{RowScale: true, ColScale: true},
		Last:            Method{NonsymPerm: true, Pivot: true, RowScale: true, ColScale: true},
		PermTol:         DefaultPermTol,
		IndependenceTol: DefaultIndependenceTol,
		Logger:          zap.NewNop(),
	}
	for k := range o.Fill {
		o.Fill[k] = DefaultFill
		o.Drop[k] = DefaultBaseDropTol * dropCoef[k]
	}

	return o
}

func (o *Options) violate(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("%w: "+format, append([]any{ErrOptionViolation}, args...)...)
	}
}

func (o *Options) violateWrap(cause error, format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("%w: %w: "+format, append([]any{ErrOptionViolation, cause}, args...)...)
	}
}

func validSlot(s Slot) bool { return s >= 0 && s < NumSlots }

// WithLevels caps the number of reduction levels. 0 factors the whole
// matrix at the coarse level.
func WithLevels(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.violate("levels cannot be negative (%d)", n)
			return
		}
		o.Levels = n
	}
}

// WithStrategy selects the interior reordering.
func WithStrategy(s ordering.Strategy) Option {
	return func(o *Options) {
		if _, err := ordering.Select(s); err != nil {
			o.violateWrap(err, "strategy %v", s)
			return
		}
		o.Strategy = s
	}
}

// WithBlockSize sets the target block size. Reduction stops once the
// Schur complement is no larger than it.
func WithBlockSize(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.violate("block size must be >= 1 (%d)", n)
			return
		}
		o.BlockSize = n
	}
}

// WithInteriorMethod sets the method flags of the reduction levels.
func WithInteriorMethod(m Method) Option {
	return func(o *Options) { o.Interior = m }
}

// WithLastMethod sets the method flags of the coarse level.
func WithLastMethod(m Method) Option {
	return func(o *Options) { o.Last = m }
}

// WithFill sets the fill count of one slot.
func WithFill(s Slot, k int) Option {
	return func(o *Options) {
		switch {
		case !validSlot(s):
			o.violate("unknown slot %d", s)
		case k < 0:
			o.violateWrap(ilut.ErrIllegalFill, "slot %d fill %d", s, k)
		default:
			o.Fill[s] = k
		}
	}
}

// WithFillAll sets every fill count to k.
func WithFillAll(k int) Option {
	return func(o *Options) {
		if k < 0 {
			o.violateWrap(ilut.ErrIllegalFill, "fill %d", k)
			return
		}
		for s := range o.Fill {
			o.Fill[s] = k
		}
	}
}

// WithFillFactor derives every fill count from the input density at Build
// time: k·⌊nnz/n⌋ (at least k).
func WithFillFactor(k int) Option {
	return func(o *Options) {
		if k < 0 {
			o.violateWrap(ilut.ErrIllegalFill, "fill factor %d", k)
			return
		}
		o.FillFactor = k
	}
}

// WithDropTol sets the relative drop tolerance of one slot.
func WithDropTol(s Slot, t float64) Option {
	return func(o *Options) {
		switch {
		case !validSlot(s):
			o.violate("unknown slot %d", s)
		case !finiteNonNegative(t):
			o.violateWrap(ilut.ErrIllegalDrop, "slot %d drop %v", s, t)
		default:
			o.Drop[s] = t
		}
	}
}

// WithDropTolAll sets every drop tolerance to t.
func WithDropTolAll(t float64) Option {
	return func(o *Options) {
		if !finiteNonNegative(t) {
			o.violateWrap(ilut.ErrIllegalDrop, "drop %v", t)
			return
		}
		for s := range o.Drop {
			o.Drop[s] = t
		}
	}
}

// WithBaseDropTol sets every drop tolerance to t scaled by the per-slot
// coefficient (1.6 for the interlevel factors, 0.004 for the Schur update
// and the coarse factors).
func WithBaseDropTol(t float64) Option {
	return func(o *Options) {
		if !finiteNonNegative(t) {
			o.violateWrap(ilut.ErrIllegalDrop, "base drop %v", t)
			return
		}
		for s := range o.Drop {
			o.Drop[s] = t * dropCoef[s]
		}
	}
}

// WithPermTol sets the pivoting tolerance of the coarse factorization.
func WithPermTol(t float64) Option {
	return func(o *Options) {
		if !finiteNonNegative(t) {
			o.violate("permutation tolerance %v", t)
			return
		}
		o.PermTol = t
	}
}

// WithBand limits the coarse pivot search of row i to columns <= i-1+band.
// 0 searches the whole row.
func WithBand(band int) Option {
	return func(o *Options) {
		if band < 0 {
			o.violate("band cannot be negative (%d)", band)
			return
		}
		o.Band = band
	}
}

// WithIndependenceTol sets the diagonal-dominance threshold in [0,1] used
// by both reorderings.
func WithIndependenceTol(t float64) Option {
	return func(o *Options) {
		if !(t >= 0 && t <= 1) {
			o.violate("independence tolerance %v outside [0,1]", t)
			return
		}
		o.IndependenceTol = t
	}
}

// WithLogger routes construction events to l. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithReport writes the level table to w once Build succeeds.
func WithReport(w io.Writer) Option {
	return func(o *Options) { o.Report = w }
}

func finiteNonNegative(t float64) bool {
	return t >= 0 && !math.IsInf(t, 0) && !math.IsNaN(t)
}

// gatherOptions applies opts over DefaultOptions and returns the first
// recorded violation.
func gatherOptions(opts ...Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.err != nil {
		return Options{}, o.err
	}

	return o, nil
}

// blockParams returns the kernel configuration of the reduction levels.
func (o Options) blockParams() ilut.BlockParams {
	var p ilut.BlockParams
	for k := range p.Fill {
		p.Fill[k] = o.Fill[k]
		p.Drop[k] = o.Drop[k]
	}

	return p
}

// coarseParams returns the kernel configuration of the coarse level.
func (o Options) coarseParams() ilut.Params {
	return ilut.Params{
		DropL:   o.Drop[SlotCoarseL],
		DropU:   o.Drop[SlotCoarseU],
		FillL:   o.Fill[SlotCoarseL],
		FillU:   o.Fill[SlotCoarseU],
		Pivot:   o.Last.Pivot,
		PermTol: o.PermTol,
		Band:    o.Band,
	}
}
