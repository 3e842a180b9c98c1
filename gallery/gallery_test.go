// SPDX-License-Identifier: MIT
package gallery_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/arms/gallery"
)

func TestLaplace2D(t *testing.T) {
	t.Parallel()

	m, err := gallery.Laplace2D(3, 2)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 6, m.Rows())
	// 6 diagonals + 2*(2*2 horizontal + 3 vertical) couplings
	assert.Equal(t, 6+2*(4+3), m.NNZ())

	d := m.Dense()
	assert.True(t, mat.Equal(d, d.T()), "Laplacian must be symmetric")
}

func TestGridErrorsNameTheGenerator(t *testing.T) {
	t.Parallel()

	_, err := gallery.Laplace2D(0, 3)
	require.ErrorIs(t, err, gallery.ErrTooSmall)
	assert.True(t, strings.HasPrefix(err.Error(), "Laplace2D:"), err.Error())

	_, err = gallery.ConvectionDiffusion2D(3, 0, 1)
	require.ErrorIs(t, err, gallery.ErrTooSmall)
	assert.True(t, strings.HasPrefix(err.Error(), "ConvectionDiffusion2D:"), err.Error())
}

func TestConvectionDiffusionNonsymmetric(t *testing.T) {
	t.Parallel()

	m, err := gallery.ConvectionDiffusion2D(4, 4, 30)
	require.NoError(t, err)
	d := m.Dense()
	assert.False(t, mat.Equal(d, d.T()))
}

func TestBanded(t *testing.T) {
	t.Parallel()

	m, err := gallery.Banded(5, 4, []int{1, 2}, -1)
	require.NoError(t, err)
	want := mat.NewDense(5, 5, []float64{
		4, -1, -1, 0, 0,
		-1, 4, -1, -1, 0,
		-1, -1, 4, -1, -1,
		0, -1, -1, 4, -1,
		0, 0, -1, -1, 4,
	})
	assert.True(t, mat.Equal(want, m.Dense()))

	_, err = gallery.Banded(0, 1, nil, 0)
	require.ErrorIs(t, err, gallery.ErrTooSmall)
	_, err = gallery.Banded(3, 1, []int{0}, 0)
	require.ErrorIs(t, err, gallery.ErrInvalidOffset)
}

func TestRandomDominantDeterministic(t *testing.T) {
	t.Parallel()

	a, err := gallery.RandomDominant(30, 0.2, 42)
	require.NoError(t, err)
	b, err := gallery.RandomDominant(30, 0.2, 42)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	assert.Empty(t, cmp.Diff(a.Dense().RawMatrix().Data, b.Dense().RawMatrix().Data))

	for i := 0; i < a.Rows(); i++ {
		r := a.Row(i)
		diag, off := 0.0, 0.0
		for k, c := range r.Cols {
			v := r.Vals[k]
			if v < 0 {
				v = -v
			}
			if c == i {
				diag = v
			} else {
				off += v
			}
		}
		assert.Greater(t, diag, off, "row %d must be diagonally dominant", i)
	}

	_, err = gallery.RandomDominant(3, 1.5, 1)
	require.ErrorIs(t, err, gallery.ErrInvalidDensity)
}
