// SPDX-License-Identifier: MIT
package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/arms/gallery"
	"github.com/katalvlaran/arms/ordering"
	"github.com/katalvlaran/arms/sparse"
)

func adjacent(t *testing.T, m *sparse.Matrix, u, v int) bool {
	t.Helper()
	a, err := m.At(u, v)
	require.NoError(t, err)
	b, err := m.At(v, u)
	require.NoError(t, err)
	return a != 0 || b != 0
}

// accepted returns the original row indices placed in the B block.
func accepted(p ordering.Partition) []int {
	var out []int
	for v, pos := range p.Rows {
		if pos < p.NB {
			out = append(out, v)
		}
	}
	return out
}

func TestWeights(t *testing.T) {
	t.Parallel()

	m, err := gallery.Banded(5, 4, []int{1, 2}, -1)
	require.NoError(t, err)
	w := ordering.Weights(m)
	// raw ratios 4/6, 4/7, 4/8, 4/7, 4/6 normalised by 4/6
	assert.InDeltaSlice(t, []float64{1, 6.0 / 7.0, 0.75, 6.0 / 7.0, 1}, w, 1e-15)
}

// TestIndependentSetProperties checks the two acceptance invariants on a
// batch of problems: weight >= tol for every accepted row, and no two
// accepted rows adjacent when blocks have size one.
func TestIndependentSetProperties(t *testing.T) {
	t.Parallel()

	lap, err := gallery.Laplace2D(7, 6)
	require.NoError(t, err)
	cd, err := gallery.ConvectionDiffusion2D(6, 6, 20)
	require.NoError(t, err)
	rnd, err := gallery.RandomDominant(60, 0.08, 7)
	require.NoError(t, err)

	for name, m := range map[string]*sparse.Matrix{"laplace": lap, "convdiff": cd, "random": rnd} {
		for _, tol := range []float64{0, 0.5, 0.9} {
			p, err := ordering.IndependentSet(m, 1, tol)
			require.NoError(t, err)
			require.NoError(t, sparse.CheckPerm(p.Rows, m.Rows()))
			require.Equal(t, ordering.Symmetric, p.Kind)
			require.Nil(t, p.Cols)
			require.Equal(t, m.Rows(), p.NB+p.NC)

			w := ordering.Weights(m)
			set := accepted(p)
			require.Len(t, set, p.NB)
			for _, v := range set {
				assert.GreaterOrEqual(t, w[v], tol, "%s: row %d weight", name, v)
			}
			for a := 0; a < len(set); a++ {
				for b := a + 1; b < len(set); b++ {
					assert.False(t, adjacent(t, m, set[a], set[b]),
						"%s tol=%v: rows %d and %d adjacent", name, tol, set[a], set[b])
				}
			}
		}
	}
}

// TestIndependentSetBlocks checks that with bsize > 1 rows of distinct
// blocks never touch and blocks fill up to bsize.
func TestIndependentSetBlocks(t *testing.T) {
	t.Parallel()

	m, err := gallery.Laplace2D(10, 10)
	require.NoError(t, err)
	const bsize = 4
	p, err := ordering.IndependentSet(m, bsize, 0)
	require.NoError(t, err)
	require.Positive(t, p.NB)
	require.Positive(t, p.NC)

	// recover blocks: consecutive B positions, a new block starts at each seed.
	// Build connected components of B restricted to the pattern instead.
	set := accepted(p)
	inB := make(map[int]bool, len(set))
	for _, v := range set {
		inB[v] = true
	}
	comp := make(map[int]int, len(set))
	id := 0
	for _, s := range set {
		if _, ok := comp[s]; ok {
			continue
		}
		stack := []int{s}
		comp[s] = id
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, u := range m.Row(v).Cols {
				if inB[u] {
					if _, ok := comp[u]; !ok {
						comp[u] = id
						stack = append(stack, u)
					}
				}
			}
		}
		id++
	}
	sizes := make([]int, id)
	for _, c := range comp {
		sizes[c]++
	}
	for _, sz := range sizes {
		assert.LessOrEqual(t, sz, bsize)
	}
	// the very first block starts at row 0 in a connected grid and must be full
	assert.Equal(t, bsize, sizes[comp[0]])
}

func TestDDPQ(t *testing.T) {
	t.Parallel()

	m, err := gallery.Banded(5, 4, []int{1, 2}, -1)
	require.NoError(t, err)
	p, err := ordering.DDPQ(m, 2, 0)
	require.NoError(t, err)
	require.Equal(t, ordering.Nonsymmetric, p.Kind)
	require.NoError(t, sparse.CheckPerm(p.Rows, 5))
	require.NoError(t, sparse.CheckPerm(p.Cols, 5))

	// rows 0 and 4 are the most dominant and share no column
	assert.Equal(t, 2, p.NB)
	assert.Equal(t, 3, p.NC)
	assert.Equal(t, 0, p.Rows[0])
	assert.Equal(t, 1, p.Rows[4])

	pm := m.Clone()
	require.NoError(t, p.Apply(pm))
	for k := 0; k < p.NB; k++ {
		v, err := pm.At(k, k)
		require.NoError(t, err)
		assert.NotZero(t, v, "B diagonal %d", k)
	}
	// B is lower triangular in acceptance order
	for i := 0; i < p.NB; i++ {
		for j := i + 1; j < p.NB; j++ {
			v, _ := pm.At(i, j)
			assert.Zero(t, v)
		}
	}
}

func TestPreselectOrder(t *testing.T) {
	t.Parallel()

	m, err := gallery.RandomDominant(40, 0.1, 3)
	require.NoError(t, err)
	c := ordering.Preselect(m, 0.2)
	require.NotEmpty(t, c)
	assert.InDelta(t, 1.0, c[0].Score, 1e-15)
	for k := 1; k < len(c); k++ {
		assert.GreaterOrEqual(t, c[k-1].Score, c[k].Score)
		assert.GreaterOrEqual(t, c[k].Score, 0.2)
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	_, err := ordering.IndependentSet(nil, 1, 0)
	require.ErrorIs(t, err, ordering.ErrNilMatrix)

	rect, _ := sparse.New(2, 3, true)
	_, err = ordering.DDPQ(rect, 1, 0)
	require.ErrorIs(t, err, ordering.ErrNonSquare)

	sq, _ := sparse.NewSquare(2)
	_, err = ordering.IndependentSet(sq, -1, 0)
	require.ErrorIs(t, err, ordering.ErrBadBlockSize)

	_, err = ordering.Select(ordering.Strategy(9))
	require.ErrorIs(t, err, ordering.ErrUnknownStrategy)

	s, err := ordering.ParseStrategy("ddpq")
	require.NoError(t, err)
	assert.Equal(t, ordering.DiagDominance, s)
}
