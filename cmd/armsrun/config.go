// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "arms"

// config is the resolved run configuration: flags, then ARMS_* variables,
// then the optional YAML file, then the flag defaults.
type config struct {
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	Problem string  `mapstructure:"problem"`
	NX      int     `mapstructure:"nx"`
	NY      int     `mapstructure:"ny"`
	Beta    float64 `mapstructure:"beta"`
	N       int     `mapstructure:"n"`
	Density float64 `mapstructure:"density"`
	Seed    int64   `mapstructure:"seed"`

	Levels     int     `mapstructure:"levels"`
	Strategy   string  `mapstructure:"strategy"`
	BlockSize  int     `mapstructure:"bsize"`
	FillFactor int     `mapstructure:"fill-factor"`
	DropTol    float64 `mapstructure:"droptol"`
	IndTol     float64 `mapstructure:"indtol"`
	PermTol    float64 `mapstructure:"permtol"`
	Scale      bool    `mapstructure:"scale"`
	Pivot      bool    `mapstructure:"pivot"`
	DDPQ       bool    `mapstructure:"coarse-ddpq"`

	Restart int     `mapstructure:"restart"`
	MaxIter int     `mapstructure:"maxits"`
	Tol     float64 `mapstructure:"tol"`
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML configuration file")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", logFormatConsole, "log format: console or json")

	fs.String("problem", "convdiff", "test matrix: laplace, convdiff, banded or random")
	fs.Int("nx", 32, "grid points in x (laplace, convdiff)")
	fs.Int("ny", 32, "grid points in y (laplace, convdiff)")
	fs.Float64("beta", 20, "convection strength (convdiff)")
	fs.Int("n", 1000, "dimension (banded, random)")
	fs.Float64("density", 0.005, "off-diagonal density (random)")
	fs.Int64("seed", 1, "random seed (random)")

	fs.Int("levels", 10, "maximum number of reduction levels")
	fs.String("strategy", "indset", "level ordering: indset or ddpq")
	fs.Int("bsize", 30, "block size and coarse size threshold")
	fs.Int("fill-factor", 20, "fill per row as a multiple of nnz/n")
	fs.Float64("droptol", 1e-3, "base drop tolerance")
	fs.Float64("indtol", 0.7, "diagonal dominance threshold for independent sets")
	fs.Float64("permtol", 0.99, "column pivoting tolerance")
	fs.Bool("scale", true, "scale rows and columns at every level")
	fs.Bool("pivot", true, "column pivoting in the coarse factorization")
	fs.Bool("coarse-ddpq", true, "ddPQ ordering before the coarse factorization")

	fs.Int("restart", 30, "FGMRES restart length")
	fs.Int("maxits", 1000, "FGMRES iteration limit")
	fs.Float64("tol", 1e-8, "FGMRES relative residual tolerance")
}

// loadConfig resolves the configuration of cmd with viper.
func loadConfig(cmd *cobra.Command) (*config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
