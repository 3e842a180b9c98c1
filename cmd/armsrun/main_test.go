// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/arms/ordering"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()

	return out.String(), err
}

func TestRunLaplace(t *testing.T) {
	out, err := execute(t, "--problem", "laplace", "--nx", "12", "--ny", "12", "--bsize", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "B-block")
	assert.Contains(t, out, "converged=true")
}

func TestRunDDPQRandom(t *testing.T) {
	out, err := execute(t, "--problem", "random", "--n", "400", "--density", "0.01", "--strategy", "ddpq", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "converged=true")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problem: banded\nn: 50\nstrategy: ddpq\nbsize: 8\n"), 0o600))

	out, err := execute(t, "--config", path)
	require.NoError(t, err)
	// 50 diagonal entries plus two pairs of off-diagonals
	assert.Contains(t, out, "nnz(A): 244")
	assert.Contains(t, out, "converged=true")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEnvironmentAndFlagPrecedence(t *testing.T) {
	t.Setenv("ARMS_LEVELS", "0")
	t.Setenv("ARMS_PROBLEM", "laplace")
	t.Setenv("ARMS_NX", "6")
	t.Setenv("ARMS_NY", "6")

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--nx", "7"}))
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Levels)
	assert.Equal(t, "laplace", cfg.Problem)
	assert.Equal(t, 7, cfg.NX, "flag beats environment")
	assert.Equal(t, 6, cfg.NY)
	assert.Equal(t, 30, cfg.BlockSize, "flag default")

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "levels: 0")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "--problem", "poisson3d")
	require.ErrorIs(t, err, errUnknownProblem)

	_, err = execute(t, "--strategy", "rcm", "--nx", "4", "--ny", "4")
	require.ErrorIs(t, err, ordering.ErrUnknownStrategy)

	_, err = execute(t, "--problem", "laplace", "--nx", "4", "--ny", "4", "--bsize", "0")
	require.Error(t, err)

	_, err = execute(t, "--log-level", "loud", "--nx", "4", "--ny", "4")
	require.ErrorContains(t, err, "log level")
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(withLogLevel("debug"), withLogFormat(logFormatConsole))
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger(withLogLevel("loud"))
	require.ErrorContains(t, err, `unrecognized level: "loud"`)
}
