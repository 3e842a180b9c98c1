// SPDX-License-Identifier: MIT
// Package gallery builds deterministic model-problem matrices used by tests,
// examples and the armsrun command.
//
// Contract:
//   - Every constructor validates its parameters first and returns a sentinel
//     error (wrapped with the constructor tag) without allocating on failure.
//   - Entries are emitted in a fixed order, so equal inputs give equal matrices.
//   - RandomDominant is deterministic for a fixed seed.
package gallery

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/arms/sparse"
)

// Sentinel errors.
var (
	// ErrTooSmall is returned when a dimension is below 1.
	ErrTooSmall = errors.New("gallery: dimension must be >= 1")

	// ErrInvalidDensity is returned when a density is outside [0,1].
	ErrInvalidDensity = errors.New("gallery: density must lie in [0,1]")

	// ErrInvalidOffset is returned for a non-positive band offset.
	ErrInvalidOffset = errors.New("gallery: band offsets must be > 0")
)

const (
	methodLaplace2D  = "Laplace2D"
	methodConvDiff2D = "ConvectionDiffusion2D"
	methodBanded     = "Banded"
	methodRandom     = "RandomDominant"
)

func galleryErrorf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}

// Laplace2D returns the 5-point finite-difference Laplacian on an nx×ny
// grid with Dirichlet boundaries: 4 on the diagonal, -1 for each grid
// neighbour. Unknowns are numbered row by row.
func Laplace2D(nx, ny int) (*sparse.Matrix, error) {
	if nx < 1 || ny < 1 {
		return nil, galleryErrorf(methodLaplace2D, ErrTooSmall)
	}
	m, err := ConvectionDiffusion2D(nx, ny, 0)
	if err != nil {
		return nil, galleryErrorf(methodLaplace2D, err)
	}

	return m, nil
}

// ConvectionDiffusion2D discretises -Δu + beta·(u_x + u_y) on an nx×ny grid
// with mesh size h = 1/(max(nx,ny)+1) using centred differences, scaled by h².
// beta = 0 gives Laplace2D; larger beta makes the matrix more nonsymmetric.
func ConvectionDiffusion2D(nx, ny int, beta float64) (*sparse.Matrix, error) {
	if nx < 1 || ny < 1 {
		return nil, galleryErrorf(methodConvDiff2D, ErrTooSmall)
	}
	h := 1 / float64(max(nx, ny)+1)
	c := beta * h / 2
	n := nx * ny
	m, err := sparse.NewSquare(n)
	if err != nil {
		return nil, galleryErrorf(methodConvDiff2D, err)
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			i := iy*nx + ix
			cols := make([]int, 0, 5)
			vals := make([]float64, 0, 5)
			if iy > 0 {
				cols, vals = append(cols, i-nx), append(vals, -1-c)
			}
			if ix > 0 {
				cols, vals = append(cols, i-1), append(vals, -1-c)
			}
			cols, vals = append(cols, i), append(vals, 4)
			if ix < nx-1 {
				cols, vals = append(cols, i+1), append(vals, -1+c)
			}
			if iy < ny-1 {
				cols, vals = append(cols, i+nx), append(vals, -1+c)
			}
			if err := m.SetRow(i, cols, vals); err != nil {
				return nil, galleryErrorf(methodConvDiff2D, err)
			}
		}
	}

	return m, nil
}

// Banded returns an n×n matrix with diag on the diagonal and off at every
// position (i, i±o) for o in offsets. Banded(5, 4, []int{1, 2}, -1) is the
// symmetric positive-definite pentadiagonal fixture.
func Banded(n int, diag float64, offsets []int, off float64) (*sparse.Matrix, error) {
	if n < 1 {
		return nil, galleryErrorf(methodBanded, ErrTooSmall)
	}
	for _, o := range offsets {
		if o <= 0 {
			return nil, galleryErrorf(methodBanded, ErrInvalidOffset)
		}
	}
	m, err := sparse.NewSquare(n)
	if err != nil {
		return nil, galleryErrorf(methodBanded, err)
	}
	for i := 0; i < n; i++ {
		cols := []int{i}
		vals := []float64{diag}
		for _, o := range offsets {
			if i-o >= 0 {
				cols, vals = append(cols, i-o), append(vals, off)
			}
			if i+o < n {
				cols, vals = append(cols, i+o), append(vals, off)
			}
		}
		if err := m.SetRow(i, cols, vals); err != nil {
			return nil, galleryErrorf(methodBanded, err)
		}
	}

	return m, nil
}

// RandomDominant returns an n×n nonsymmetric matrix whose off-diagonal
// entries appear independently with probability density, uniform in
// [-1,1), and whose diagonal is 1 plus the row's off-diagonal magnitude sum
// (strict row diagonal dominance). The same seed gives the same matrix.
func RandomDominant(n int, density float64, seed int64) (*sparse.Matrix, error) {
	if n < 1 {
		return nil, galleryErrorf(methodRandom, ErrTooSmall)
	}
	if density < 0 || density > 1 {
		return nil, galleryErrorf(methodRandom, ErrInvalidDensity)
	}
	rng := rand.New(rand.NewSource(seed))
	m, err := sparse.NewSquare(n)
	if err != nil {
		return nil, galleryErrorf(methodRandom, err)
	}
	for i := 0; i < n; i++ {
		cols := []int{i}
		vals := []float64{0}
		sum := 0.0
		for j := 0; j < n; j++ {
			if j == i || rng.Float64() >= density {
				continue
			}
			v := 2*rng.Float64() - 1
			if v < 0 {
				sum -= v
			} else {
				sum += v
			}
			cols, vals = append(cols, j), append(vals, v)
		}
		vals[0] = 1 + sum
		if err := m.SetRow(i, cols, vals); err != nil {
			return nil, galleryErrorf(methodRandom, err)
		}
	}

	return m, nil
}
