// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog logger that owns its log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a text logger writing to path (if set) and, when stdout is
// true, to standard output. With neither, output is discarded.
func New(level slog.Level, path string, stdout bool) (*Logger, error) {
	var writers []io.Writer
	if stdout {
		writers = append(writers, os.Stdout)
	}

	var file *os.File
	if path != "" {
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
