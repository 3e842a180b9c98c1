// Package arms is the root of a sparse preconditioning toolkit built
// around the algebraic recursive multilevel solver (ARMS).
//
// The module is organised by concern:
//
//	sparse/    row-compressed sparse matrix, permutations, scaling, 2×2 block split
//	ordering/  independent-set and ddPQ reorderings producing the B/C partition
//	ilut/      threshold incomplete LU (ILUT, ILUTP) and the block reduction step
//	arms/      multilevel construction (Build), recursive solve (Apply), reports
//	krylov/    flexible GMRES driven by any preconditioner with Apply
//	gallery/   model matrices: 2D Laplacian, convection-diffusion, banded, random
//	cmd/armsrun  CLI: generate a problem, build, report, solve
//
// A level splits the current matrix as
//
//	| B  F |     B ≈ L·U,  S = C - E·U⁻¹·L⁻¹·F
//	| E  C |
//
// and recurses on S until it is small, after which S is factored with
// ILUTP. Errors are package sentinels wrapped with context; structured
// failures carry the row (ilut.RowError) or the level and stage
// (arms.LevelError). Libraries log through an optional *zap.Logger.
//
//	go get github.com/katalvlaran/arms
package arms
