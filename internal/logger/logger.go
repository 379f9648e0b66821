// Package logger provides structured logging functionality
// using the Uber zap logging library. It supports log levels and
// adapters for the HTTP client and the migration library.
package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// Log is a global SugaredLogger instance from the zap logging library.
// It discards everything until Init is called, so packages can log
// from tests without setting it up.
var Log = zap.NewNop().Sugar()

// Init initializes the global logger configuration.
// It sets the output destination and global log level.
func Init(level string) error {
	if level == "warning" {
		level = "warn"
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries to the output.
// It should be called when shutting down to ensure all logs are written.
func Sync() error {
	err := Log.Sync()
	if err != nil && !errors.Is(err, os.ErrInvalid) && !errors.Is(err, syscall.ENOTTY) {
		return err
	}

	return nil
}

// RestyAdapter satisfies resty.Logger on top of the global logger.
type RestyAdapter struct{}

// Errorf logs a resty error.
func (RestyAdapter) Errorf(format string, v ...interface{}) {
	Log.Errorf("http client: "+format, v...)
}

// Warnf logs a resty warning.
func (RestyAdapter) Warnf(format string, v ...interface{}) {
	Log.Warnf("http client: "+format, v...)
}

// Debugf logs resty debug output, such as request and response dumps.
func (RestyAdapter) Debugf(format string, v ...interface{}) {
	Log.Debugf("http client: "+format, v...)
}

// GooseAdapter satisfies goose.Logger on top of the global logger.
// Fatalf does not terminate the process; goose errors are returned to callers anyway.
type GooseAdapter struct{}

func (GooseAdapter) Fatalf(format string, v ...interface{}) {
	Log.Errorf("migrations: "+format, v...)
}

func (GooseAdapter) Printf(format string, v ...interface{}) {
	Log.Infof("migrations: %s", strings.TrimSpace(fmt.Sprintf(format, v...)))
}
