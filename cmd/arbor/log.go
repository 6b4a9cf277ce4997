package main

import (
	"go.uber.org/zap"
)

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}

func (rcc *rootCmdConfig) Logger() *zap.Logger {
	if rcc.logger == nil {
		return zap.NewNop()
	}
	return rcc.logger
}

func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	rcc.Logger().Sugar().Infof(format, a...)
}
