// SPDX-License-Identifier: MIT

package arms

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	// The concrete violation is wrapped alongside it.
	ErrOptionViolation = errors.New("arms: invalid option supplied")

	// ErrNilMatrix is returned when Build receives a nil matrix.
	ErrNilMatrix = errors.New("arms: matrix is nil")

	// ErrNonSquare is returned when Build receives a non-square matrix.
	ErrNonSquare = errors.New("arms: matrix is not square")

	// ErrDimensionMismatch is returned by Apply for vectors of the wrong
	// length.
	ErrDimensionMismatch = errors.New("arms: dimension mismatch")

	// ErrReleased is returned by Apply after Release.
	ErrReleased = errors.New("arms: preconditioner released")
)

// Stage names the construction step that failed.
type Stage int

const (
	// StageScale is the optional row/column scaling of a level.
	StageScale Stage = iota
	// StagePartition is the reordering pass.
	StagePartition
	// StagePermute applies the partition to the Schur complement.
	StagePermute
	// StageSplit extracts the B, F, E, C blocks.
	StageSplit
	// StageFactor is the block reduction step.
	StageFactor
	// StageCoarse is the factorization of the last Schur complement.
	StageCoarse
)

var stageNames = [...]string{"scale", "partition", "permute", "split", "factor", "coarse"}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// LevelError reports the level and stage at which Build failed. Level
// counts reduction steps from 0; the coarse factorization carries the
// number of completed levels.
type LevelError struct {
	Level int
	Stage Stage
	Err   error
}

// Error implements error.
func (e *LevelError) Error() string {
	return fmt.Sprintf("arms: level %d: %s: %v", e.Level, e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *LevelError) Unwrap() error { return e.Err }
