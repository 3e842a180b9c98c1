// SPDX-License-Identifier: MIT
package ilut_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/arms/gallery"
	"github.com/katalvlaran/arms/ilut"
	"github.com/katalvlaran/arms/sparse"
)

const exactTol = 1e-10

func exact(n int) ilut.Params {
	return ilut.Params{FillL: n, FillU: n}
}

// weakDiagonal returns a dense random n×n matrix whose diagonal is tiny, so
// column pivoting has work to do.
func weakDiagonal(n int, seed int64) *sparse.Matrix {
	rng := rand.New(rand.NewSource(seed))
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				d.Set(i, j, 1e-3*(1+rng.Float64()))
				continue
			}
			d.Set(i, j, 2*rng.Float64()-1)
		}
	}
	return sparse.FromDense(d)
}

// permutedCols returns A with column k replaced by column perm[k].
func permutedCols(a *mat.Dense, perm []int) *mat.Dense {
	n, _ := a.Dims()
	out := mat.NewDense(n, n, nil)
	for k, c := range perm {
		for i := 0; i < n; i++ {
			out.Set(i, k, a.At(i, c))
		}
	}
	return out
}

func product(l, u *mat.Dense) *mat.Dense {
	var p mat.Dense
	p.Mul(l, u)
	return &p
}

func TestFactorizeExactLU(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		gen  func() (*sparse.Matrix, error)
	}{
		{"laplace", func() (*sparse.Matrix, error) { return gallery.Laplace2D(5, 4) }},
		{"convdiff", func() (*sparse.Matrix, error) { return gallery.ConvectionDiffusion2D(4, 4, 40) }},
		{"random", func() (*sparse.Matrix, error) { return gallery.RandomDominant(25, 0.2, 11) }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := tc.gen()
			require.NoError(t, err)
			f, err := ilut.Factorize(a, exact(a.Rows()))
			require.NoError(t, err)
			assert.Nil(t, f.Perm)
			assert.Zero(t, f.Pivots)

			l, u := f.Dense()
			assert.True(t, mat.EqualApprox(product(l, u), a.Dense(), exactTol))
		})
	}
}

func TestFactorizePivotedExactLU(t *testing.T) {
	t.Parallel()

	a := weakDiagonal(8, 5)
	p := exact(8)
	p.Pivot = true
	p.PermTol = 1
	f, err := ilut.Factorize(a, p)
	require.NoError(t, err)
	require.NoError(t, sparse.CheckPerm(f.Perm, 8))
	assert.Positive(t, f.Pivots)

	l, u := f.Dense()
	assert.True(t, mat.EqualApprox(product(l, u), permutedCols(a.Dense(), f.Perm), exactTol))
}

// TestPivotMagnitude checks that with PermTol = 1 and an unlimited band the
// kept diagonal dominates every other retained entry of its U row.
func TestPivotMagnitude(t *testing.T) {
	t.Parallel()

	a := weakDiagonal(12, 17)
	// DropL = 0 leaves the pivots uncompensated so they can be read back.
	p := ilut.Params{FillL: 4, FillU: 4, DropU: 1e-3, Pivot: true, PermTol: 1}
	f, err := ilut.Factorize(a, p)
	require.NoError(t, err)

	for i := 0; i < f.N(); i++ {
		r := f.U.Row(i)
		require.Equal(t, i, r.Cols[0])
		pivot := math.Abs(1 / r.Vals[0])
		for k := 1; k < r.Len(); k++ {
			assert.GreaterOrEqual(t, pivot, math.Abs(r.Vals[k]), "row %d col %d", i, r.Cols[k])
		}
	}
}

func TestPivotBandLimit(t *testing.T) {
	t.Parallel()

	a := weakDiagonal(8, 5)
	p := exact(8)
	p.Pivot = true
	p.PermTol = 1
	p.Band = 1 // window [i, i-1+1] excludes every off-diagonal
	f, err := ilut.Factorize(a, p)
	require.NoError(t, err)
	assert.Zero(t, f.Pivots)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, f.Perm)
}

func TestSolveMatchesDirect(t *testing.T) {
	t.Parallel()

	for _, pivot := range []bool{false, true} {
		a := weakDiagonal(10, 23)
		p := exact(10)
		p.Pivot, p.PermTol = pivot, 1
		if !pivot {
			var err error
			a, err = gallery.RandomDominant(10, 0.4, 23)
			require.NoError(t, err)
		}
		f, err := ilut.Factorize(a, p)
		require.NoError(t, err)

		b := make([]float64, 10)
		for i := range b {
			b[i] = float64(i + 1)
		}
		x := make([]float64, 10)
		require.NoError(t, f.Solve(x, b))

		r := make([]float64, 10)
		a.MulVec(r, x)
		assert.InDeltaSlice(t, b, r, 1e-9, "pivot=%v", pivot)
	}

	f, err := ilut.Factorize(weakDiagonal(3, 1), exact(3))
	require.NoError(t, err)
	err = f.Solve(make([]float64, 2), make([]float64, 3))
	require.ErrorIs(t, err, ilut.ErrDimensionMismatch)
	require.ErrorIs(t, err, sparse.ErrDimensionMismatch)
	require.ErrorIs(t, f.Solve(make([]float64, 3), make([]float64, 4)), sparse.ErrDimensionMismatch)
}

func TestZeroRow(t *testing.T) {
	t.Parallel()

	a, err := sparse.NewSquare(3)
	require.NoError(t, err)
	require.NoError(t, a.Set(0, 0, 2))
	require.NoError(t, a.Set(0, 1, 1))
	require.NoError(t, a.Set(1, 1, 0)) // explicit zero row
	require.NoError(t, a.Set(2, 2, 5))

	for _, pivot := range []bool{false, true} {
		p := exact(3)
		p.Pivot, p.PermTol = pivot, 1
		f, err := ilut.Factorize(a, p)
		require.Nil(t, f)
		require.ErrorIs(t, err, ilut.ErrZeroRow)
		var re *ilut.RowError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, 1, re.Row)
		assert.Contains(t, err.Error(), "row 1")
	}
}

// TestFillLimit keeps only the largest of three eligible L entries.
func TestFillLimit(t *testing.T) {
	t.Parallel()

	a, err := sparse.NewSquare(4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, a.Set(i, i, 1))
	}
	require.NoError(t, a.Set(3, 0, 0.9))
	require.NoError(t, a.Set(3, 1, 0.5))
	require.NoError(t, a.Set(3, 2, 0.1))

	f, err := ilut.Factorize(a, ilut.Params{FillL: 1, FillU: 4})
	require.NoError(t, err)
	row := f.L.Row(3)
	require.Equal(t, 1, row.Len())
	assert.Equal(t, 0, row.Cols[0])
	assert.InDelta(t, 0.9, row.Vals[0], 1e-15)
}

// TestModifiedCompensation drops the only multiplier of row 1 and checks the
// eliminated working value lands on the pivot.
func TestModifiedCompensation(t *testing.T) {
	t.Parallel()

	a := sparse.FromDense(mat.NewDense(2, 2, []float64{
		2, 0,
		1, 3,
	}))
	f, err := ilut.Factorize(a, ilut.Params{DropL: 1, FillL: 2, FillU: 2})
	require.NoError(t, err)
	assert.Zero(t, f.L.RowLen(1))
	assert.InDelta(t, 1.0/4.0, f.U.Row(1).Vals[0], 1e-15)
}

func TestZeroPivotReplaced(t *testing.T) {
	t.Parallel()

	a := sparse.FromDense(mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	}))
	f, err := ilut.Factorize(a, ilut.Params{FillL: 2, FillU: 2})
	require.NoError(t, err)
	// ‖row 0‖ = 1 so the replacement pivot is 1e-4
	assert.InDelta(t, 1e4, f.U.Row(0).Vals[0], 1e-8)
	for _, v := range f.U.Row(1).Vals {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	a, err := gallery.Laplace2D(2, 2)
	require.NoError(t, err)

	_, err = ilut.Factorize(a, ilut.Params{FillL: -1})
	require.ErrorIs(t, err, ilut.ErrIllegalFill)
	_, err = ilut.Factorize(a, ilut.Params{DropU: math.NaN()})
	require.ErrorIs(t, err, ilut.ErrIllegalDrop)
	_, err = ilut.Factorize(nil, exact(1))
	require.ErrorIs(t, err, ilut.ErrNilMatrix)
	rect, _ := sparse.New(2, 3, true)
	_, err = ilut.Factorize(rect, exact(3))
	require.ErrorIs(t, err, ilut.ErrNonSquare)

	b, f, e, c, err := a.Split4(1)
	require.NoError(t, err)
	bp := ilut.BlockParams{}
	bp.Fill[ilut.SlotSchur] = -3
	_, err = ilut.BlockFactor(b, f, e, c, bp)
	require.ErrorIs(t, err, ilut.ErrIllegalFill)
	_, err = ilut.BlockFactor(b, e, f, c, ilut.BlockParams{})
	require.ErrorIs(t, err, ilut.ErrDimensionMismatch)
}

func fullBlock(n int) ilut.BlockParams {
	var p ilut.BlockParams
	for k := range p.Fill {
		p.Fill[k] = n
	}
	return p
}

// TestBlockFactorExactSchur compares the reduction step against
// C - E·B⁻¹·F computed densely.
func TestBlockFactorExactSchur(t *testing.T) {
	t.Parallel()

	a, err := gallery.RandomDominant(20, 0.25, 9)
	require.NoError(t, err)
	const nB = 8
	b, f, e, c, err := a.Split4(nB)
	require.NoError(t, err)

	blk, err := ilut.BlockFactor(b, f, e, c, fullBlock(20))
	require.NoError(t, err)

	l, u := blk.Dense()
	assert.True(t, mat.EqualApprox(product(l, u), b.Dense(), exactTol))

	var binvF, ebf, want mat.Dense
	require.NoError(t, binvF.Solve(b.Dense(), f.Dense()))
	ebf.Mul(e.Dense(), &binvF)
	want.Sub(c.Dense(), &ebf)
	assert.True(t, mat.EqualApprox(blk.Schur.Dense(), &want, exactTol))
}

func TestBlockFactorKeepsSchurDiagonal(t *testing.T) {
	t.Parallel()

	a, err := gallery.Laplace2D(4, 4)
	require.NoError(t, err)
	b, f, e, c, err := a.Split4(6)
	require.NoError(t, err)

	p := fullBlock(16)
	p.Fill[ilut.SlotSchur] = 0
	blk, err := ilut.BlockFactor(b, f, e, c, p)
	require.NoError(t, err)
	for i := 0; i < blk.Schur.Rows(); i++ {
		r := blk.Schur.Row(i)
		require.Equal(t, 1, r.Len(), "row %d", i)
		assert.Equal(t, i, r.Cols[0])
	}
}

func TestBlockFactorZeroRow(t *testing.T) {
	t.Parallel()

	a := sparse.FromDense(mat.NewDense(3, 3, []float64{
		4, 0, 1,
		0, 4, 1,
		0, 0, 0,
	}))
	b, f, e, c, err := a.Split4(2)
	require.NoError(t, err)
	_, err = ilut.BlockFactor(b, f, e, c, fullBlock(3))
	var re *ilut.RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 2, re.Row)
	require.ErrorIs(t, err, ilut.ErrZeroRow)
}
