// Package logging builds the zerolog loggers shared by the CLI, the
// simulation engine and the terminal UI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
	// Out defaults to stderr. The TUI passes io.Discard so the terminal
	// stays owned by the UI.
	Out io.Writer
}

// ParseLevel maps a case-insensitive level name to a zerolog level,
// falling back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO", "":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger and a closer for its file sink, if any. The closer
// is never nil.
func New(opts Options) (zerolog.Logger, func() error, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	closer := func() error { return nil }
	writers := []io.Writer{formatWriter(out, opts.Format, false)}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, formatWriter(f, opts.Format, true))
		closer = f.Close
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(w).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().
		Logger()
	return logger, closer, nil
}

func formatWriter(out io.Writer, format string, file bool) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    file,
	}
}

// LogFilePath returns dir/name_YYYYMMDD_HHMMSS.log.
func LogFilePath(dir, name string, start time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, start.Format("20060102_150405")))
}
