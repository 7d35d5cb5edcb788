// Package logging configures the process-wide zerolog logger used by all
// sendnotification packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Log is the package-global logger configured by Init. Before Init it
// writes to stderr at the default level so library callers that never call
// Init still get error output.
var Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Get returns a pointer to the package-global logger.
func Get() *zerolog.Logger {
	return &Log
}

// Init initializes the global logger. level accepts zerolog level strings
// ("debug", "info", "warn", "error"). When logFile is non-empty, log lines
// are written to both stderr and the file. The returned cleanup func closes
// the log file and must be called on shutdown.
func Init(logFile, level string) (func(), error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)

	writers := []io.Writer{os.Stderr}
	var f *os.File
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	Log = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	return func() {
		if f != nil {
			_ = f.Close()
		}
	}, nil
}
