// SPDX-License-Identifier: MIT

package sparse

// PermuteRows moves row i to position perm[i], in place.
// perm is new-index-for-old-index and must be a bijection on [0, Rows()).
// Complexity: O(rows); row storage is moved, not copied.
func (m *Matrix) PermuteRows(perm []int) error {
	if err := CheckPerm(perm, m.rows); err != nil {
		return sparseErrorf("PermuteRows", err)
	}
	moved := make([]Row, m.rows)
	for i, p := range perm {
		moved[p] = m.data[i]
	}
	m.data = moved

	return nil
}

// PermuteCols relabels every column j as perm[j], in place.
// perm is new-index-for-old-index and must be a bijection on [0, Cols()).
// Complexity: O(nnz).
func (m *Matrix) PermuteCols(perm []int) error {
	if err := CheckPerm(perm, m.cols); err != nil {
		return sparseErrorf("PermuteCols", err)
	}
	for i := range m.data {
		cols := m.data[i].Cols
		for k, c := range cols {
			cols[k] = perm[c]
		}
	}

	return nil
}

// Permute applies rperm to rows and cperm to columns. For a symmetric
// reordering pass the same permutation twice.
func (m *Matrix) Permute(rperm, cperm []int) error {
	if err := m.PermuteRows(rperm); err != nil {
		return err
	}

	return m.PermuteCols(cperm)
}
