// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/arms/arms"
	"github.com/katalvlaran/arms/gallery"
	"github.com/katalvlaran/arms/krylov"
	"github.com/katalvlaran/arms/ordering"
	"github.com/katalvlaran/arms/sparse"
)

var errUnknownProblem = errors.New("unknown problem")

func makeProblem(cfg *config) (*sparse.Matrix, error) {
	switch cfg.Problem {
	case "laplace":
		return gallery.Laplace2D(cfg.NX, cfg.NY)
	case "convdiff":
		return gallery.ConvectionDiffusion2D(cfg.NX, cfg.NY, cfg.Beta)
	case "banded":
		return gallery.Banded(cfg.N, 4, []int{1, 2}, -1)
	case "random":
		return gallery.RandomDominant(cfg.N, cfg.Density, cfg.Seed)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownProblem, cfg.Problem)
	}
}

func buildOptions(cfg *config, l *zap.Logger, report io.Writer) ([]arms.Option, error) {
	strategy, err := ordering.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	interior := arms.Method{RowScale: cfg.Scale, ColScale: cfg.Scale}
	last := arms.Method{NonsymPerm: cfg.DDPQ, Pivot: cfg.Pivot, RowScale: cfg.Scale, ColScale: cfg.Scale}

	return []arms.Option{
		arms.WithLevels(cfg.Levels),
		arms.WithStrategy(strategy),
		arms.WithBlockSize(cfg.BlockSize),
		arms.WithFillFactor(cfg.FillFactor),
		arms.WithBaseDropTol(cfg.DropTol),
		arms.WithIndependenceTol(cfg.IndTol),
		arms.WithPermTol(cfg.PermTol),
		arms.WithInteriorMethod(interior),
		arms.WithLastMethod(last),
		arms.WithLogger(l),
		arms.WithReport(report),
	}, nil
}

// run builds the preconditioner for the configured problem, prints its level
// report to out and solves A·x = b with b = A·1 so the error is known.
func run(cfg *config, l *zap.Logger, out io.Writer) error {
	a, err := makeProblem(cfg)
	if err != nil {
		return err
	}
	n := a.Rows()
	l.Info("problem generated", zap.String("problem", cfg.Problem), zap.Int("n", n), zap.Int("nnz", a.NNZ()))

	opts, err := buildOptions(cfg, l, out)
	if err != nil {
		return err
	}
	start := time.Now()
	p, err := arms.Build(a, opts...)
	if err != nil {
		return err
	}
	defer p.Release()
	l.Info("preconditioner ready", zap.Duration("elapsed", time.Since(start)))

	want := make([]float64, n)
	for i := range want {
		want[i] = 1
	}
	b := make([]float64, n)
	a.MulVec(b, want)
	x := make([]float64, n)

	start = time.Now()
	res, err := krylov.FGMRES(krylov.Matrix(a), p, b, x, krylov.Settings{
		Restart: cfg.Restart,
		MaxIter: cfg.MaxIter,
		Tol:     cfg.Tol,
		Logger:  l,
	})
	if err != nil && !errors.Is(err, krylov.ErrNotConverged) {
		return err
	}
	floats.Sub(x, want)
	errNorm := floats.Norm(x, 2) / floats.Norm(want, 2)
	l.Info("solve finished",
		zap.Bool("converged", res.Converged),
		zap.Int("iterations", res.Iterations),
		zap.Float64("residual", res.Residual),
		zap.Float64("error", errNorm),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Fprintf(out, "fgmres: converged=%t iterations=%d residual=%.3e error=%.3e\n",
		res.Converged, res.Iterations, res.Residual, errNorm)

	return err
}
