// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

type logOption func(*zap.Config) error

func withLogLevel(level string) logOption {
	return func(c *zap.Config) error {
		ll, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		c.Level.SetLevel(ll)
		return nil
	}
}

func withLogFormat(format string) logOption {
	return func(c *zap.Config) error {
		switch format {
		case logFormatConsole:
			c.Encoding = logFormatConsole
			c.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		default:
			c.Encoding = logFormatJSON
		}
		return nil
	}
}

// newLogger builds a production logger writing to stderr, without sampling
// or stack traces.
func newLogger(opts ...logOption) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.DisableStacktrace = true
	for _, opt := range opts {
		if err := opt(&zc); err != nil {
			return nil, err
		}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	l.Debug("logger created", zap.String("log_level", zc.Level.String()))

	return l, nil
}
