// SPDX-License-Identifier: MIT
package arms_test

import (
	"testing"

	"github.com/katalvlaran/arms/arms"
	"github.com/katalvlaran/arms/gallery"
	"github.com/katalvlaran/arms/ordering"
)

// BenchmarkBuild measures construction on a 64×64 convection-diffusion grid.
func BenchmarkBuild(b *testing.B) {
	a, err := gallery.ConvectionDiffusion2D(64, 64, 20)
	if err != nil {
		b.Fatal(err)
	}
	for _, s := range []ordering.Strategy{ordering.IndSet, ordering.DiagDominance} {
		b.Run(s.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p, err := arms.Build(a, arms.WithStrategy(s))
				if err != nil {
					b.Fatal(err)
				}
				p.Release()
			}
		})
	}
}

// BenchmarkApply measures one preconditioner application on the same grid.
func BenchmarkApply(b *testing.B) {
	a, err := gallery.ConvectionDiffusion2D(64, 64, 20)
	if err != nil {
		b.Fatal(err)
	}
	p, err := arms.Build(a)
	if err != nil {
		b.Fatal(err)
	}
	n := a.Rows()
	x, rhs := make([]float64, n), make([]float64, n)
	for i := range rhs {
		rhs[i] = 1
	}

	b.ReportAllocs()
	b.SetBytes(int64(8 * n))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Apply(x, rhs)
	}
}
