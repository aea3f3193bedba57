// Package logging holds the process-wide structured logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is silent until Init is called, so library use and tests stay quiet.
var Logger = zap.NewNop().Sugar()

// Init builds a console logger. Verbose enables debug output; otherwise only
// warnings and errors are written.
func Init(verbose bool) error {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
