// SPDX-License-Identifier: MIT
package ilut

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepLargest(t *testing.T) {
	t.Parallel()

	vals := []float64{0.1, -0.9, 0.5, 0.05, -0.7, 0.3}
	for k := 0; k <= len(vals)+1; k++ {
		es := make([]entry, len(vals))
		for i, v := range vals {
			es[i] = entry{col: i, val: v}
		}
		got := keepLargest(es, k)
		require.Len(t, got, min(k, len(vals)))

		mags := make([]float64, 0, len(got))
		for _, e := range got {
			mags = append(mags, math.Abs(e.val))
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(mags)))
		want := []float64{0.9, 0.7, 0.5, 0.3, 0.1, 0.05}[:len(got)]
		assert.Equal(t, want, mags, "k=%d", k)
		for _, e := range got {
			assert.Equal(t, vals[e.col], e.val, "column and value travel together")
		}
	}
}

func TestNextLowerOrder(t *testing.T) {
	t.Parallel()

	w := newWorkRow(10)
	w.reset(8, 8)
	for _, c := range []int{5, 1, 7, 0, 3} {
		require.NoError(t, w.add(c, float64(c)))
	}
	var order []int
	for k := range w.lower {
		w.nextLower(k)
		order = append(order, w.lower[k].col)
		assert.Equal(t, k, w.pos[w.lower[k].col])
	}
	assert.Equal(t, []int{0, 1, 3, 5, 7}, order)

	w.clear()
	for _, p := range w.pos {
		assert.Equal(t, -1, p)
	}
}

func TestWorkRowOverflow(t *testing.T) {
	t.Parallel()

	w := newWorkRow(3)
	w.reset(3, -1)
	require.NoError(t, w.add(0, 1))
	require.NoError(t, w.add(1, 1))
	w.width = 2 // simulate a layout fault
	require.NoError(t, w.add(1, 1), "existing columns still accumulate")
	require.ErrorIs(t, w.add(2, 1), ErrRowOverflow)
}

func TestSplitAt(t *testing.T) {
	t.Parallel()

	es := []entry{{col: 9}, {col: 2}, {col: 7}, {col: 1}}
	lo, hi := splitAt(es, 5)
	assert.ElementsMatch(t, []entry{{col: 2}, {col: 1}}, lo)
	assert.ElementsMatch(t, []entry{{col: 9}, {col: 7}}, hi)
}
