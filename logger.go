package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Output goes to stderr so it never
// mixes with rendered tables on stdout.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Development = false
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}
