// SPDX-License-Identifier: MIT

package ilut

import (
	"math"

	"github.com/katalvlaran/arms/sparse"
)

type entry struct {
	col int
	val float64
}

// workRow is the sparse accumulator of one elimination pass.
//
// Columns below split live in lower (the part still to be eliminated), the
// rest in upper. pos[col] indexes the entry inside its half, -1 when absent.
// When a diagonal is reserved it always sits at upper[0].
type workRow struct {
	width int
	split int
	lower []entry
	upper []entry
	mult  []entry
	pos   []int
}

func newWorkRow(width int) *workRow {
	w := &workRow{
		width: width,
		lower: make([]entry, 0, width),
		upper: make([]entry, 0, width),
		mult:  make([]entry, 0, width),
		pos:   make([]int, width),
	}
	for i := range w.pos {
		w.pos[i] = -1
	}

	return w
}

// reset starts a new row. diag < 0 reserves no diagonal slot.
func (w *workRow) reset(split, diag int) {
	w.split = split
	w.lower = w.lower[:0]
	w.upper = w.upper[:0]
	if diag >= 0 {
		w.upper = append(w.upper, entry{col: diag})
		w.pos[diag] = 0
	}
}

// add accumulates v into column col, creating the entry when needed.
func (w *workRow) add(col int, v float64) error {
	if p := w.pos[col]; p >= 0 {
		if col < w.split {
			w.lower[p].val += v
		} else {
			w.upper[p].val += v
		}
		return nil
	}
	if len(w.lower)+len(w.upper) >= w.width {
		return ErrRowOverflow
	}
	if col < w.split {
		w.pos[col] = len(w.lower)
		w.lower = append(w.lower, entry{col: col, val: v})
	} else {
		w.pos[col] = len(w.upper)
		w.upper = append(w.upper, entry{col: col, val: v})
	}

	return nil
}

// addRow accumulates scale·r with every column shifted by shift.
func (w *workRow) addRow(r sparse.Row, scale float64, shift int) error {
	for k, c := range r.Cols {
		if err := w.add(c+shift, scale*r.Vals[k]); err != nil {
			return err
		}
	}

	return nil
}

// nextLower moves the smallest column of lower[k:] to position k.
// A linear scan keeps the elimination order strictly increasing without
// sorting the whole row.
func (w *workRow) nextLower(k int) {
	m := k
	for q := k + 1; q < len(w.lower); q++ {
		if w.lower[q].col < w.lower[m].col {
			m = q
		}
	}
	if m == k {
		return
	}
	w.lower[k], w.lower[m] = w.lower[m], w.lower[k]
	w.pos[w.lower[k].col] = k
	w.pos[w.lower[m].col] = m
}

// eliminate reduces the lower part against the finished rows of u, whose
// entry 0 holds the reciprocal pivot. When lf is non-nil its rows continue
// those of u, shifted by u.Cols(). colmap, when non-nil, maps the stored
// column labels of u to working positions.
//
// A multiplier with magnitude <= tol is dropped and its working value is
// added to the returned compensation sum. The returned slice is reused by
// the next call.
func (w *workRow) eliminate(u, lf *sparse.Matrix, colmap []int, tol float64) ([]entry, float64, error) {
	mult := w.mult[:0]
	milu := 0.0
	for k := 0; k < len(w.lower); k++ {
		w.nextLower(k)
		e := w.lower[k]
		ur := u.Row(e.col)
		fact := e.val * ur.Vals[0]
		if math.Abs(fact) <= tol {
			milu += e.val
			continue
		}
		for q := 1; q < len(ur.Cols); q++ {
			c := ur.Cols[q]
			if colmap != nil {
				c = colmap[c]
			}
			if err := w.add(c, -fact*ur.Vals[q]); err != nil {
				return nil, 0, err
			}
		}
		if lf != nil {
			if err := w.addRow(lf.Row(e.col), -fact, u.Cols()); err != nil {
				return nil, 0, err
			}
		}
		mult = append(mult, entry{col: e.col, val: fact})
	}
	w.mult = mult

	return mult, milu, nil
}

// clear resets the position markers. The entry slices stay readable until
// the next reset.
func (w *workRow) clear() {
	for _, e := range w.lower {
		w.pos[e.col] = -1
	}
	for _, e := range w.upper {
		w.pos[e.col] = -1
	}
}

// dropSmall keeps, in place, the entries with |val| > tol.
func dropSmall(es []entry, tol float64) []entry {
	out := es[:0]
	for _, e := range es {
		if math.Abs(e.val) > tol {
			out = append(out, e)
		}
	}

	return out
}

// keepLargest truncates es to its k entries of largest magnitude.
func keepLargest(es []entry, k int) []entry {
	if len(es) <= k {
		return es
	}
	qsplit(es, k)

	return es[:k]
}

// qsplit reorders es so that its first k entries have the largest
// magnitudes, in no particular order. Expected O(len(es)).
func qsplit(es []entry, k int) {
	cut := k - 1
	first, last := 0, len(es)-1
	if cut < first || cut > last {
		return
	}
	for {
		mid := first
		key := math.Abs(es[mid].val)
		for j := first + 1; j <= last; j++ {
			if math.Abs(es[j].val) > key {
				mid++
				es[mid], es[j] = es[j], es[mid]
			}
		}
		es[mid], es[first] = es[first], es[mid]
		switch {
		case mid == cut:
			return
		case mid > cut:
			last = mid - 1
		default:
			first = mid + 1
		}
	}
}

// splitAt reorders es so entries with col < limit come first.
func splitAt(es []entry, limit int) (lo, hi []entry) {
	k := 0
	for q := range es {
		if es[q].col < limit {
			es[k], es[q] = es[q], es[k]
			k++
		}
	}

	return es[:k], es[k:]
}

// packRow copies es into fresh row storage, mapping each column through
// colOf.
func packRow(head *entry, es []entry, colOf func(int) int) ([]int, []float64) {
	n := len(es)
	if head != nil {
		n++
	}
	cols := make([]int, 0, n)
	vals := make([]float64, 0, n)
	if head != nil {
		cols = append(cols, colOf(head.col))
		vals = append(vals, head.val)
	}
	for _, e := range es {
		cols = append(cols, colOf(e.col))
		vals = append(vals, e.val)
	}

	return cols, vals
}

func identity(c int) int { return c }
