package logger

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// Options configures the file logger.
type Options struct {
	// File is the log file path. Empty disables logging.
	File  string
	Debug bool
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
}

// Slog adapts a *slog.Logger to domain.Logger.
type Slog struct {
	logger *slog.Logger
	closer io.Closer
}

var _ domain.Logger = (*Slog)(nil)

// New creates a JSON logger writing to a rotating file. Without a file it
// returns a logger that drops everything. Errors are always recorded, debug
// output only when opts.Debug is set.
func New(opts Options) *Slog {
	if opts.File == "" {
		return Nop()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB, // megabytes
		MaxBackups: 2,
		MaxAge:     14, // days
		Compress:   false,
	}

	level := slog.LevelError
	if opts.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	})
	return &Slog{logger: slog.New(handler), closer: rotator}
}

// Nop returns a logger that discards every record.
func Nop() *Slog {
	return &Slog{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (s *Slog) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *Slog) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// With returns a logger that adds args to every record.
func (s *Slog) With(args ...any) *Slog {
	return &Slog{logger: s.logger.With(args...), closer: s.closer}
}

// Close releases the log file.
func (s *Slog) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// RecoverPanic logs a panic with its stack trace and runs fallback. It must be
// deferred directly.
func (s *Slog) RecoverPanic(name string, fallback func()) {
	if r := recover(); r != nil {
		s.logger.Error("panic recovered",
			"in", name,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()),
		)
		if fallback != nil {
			fallback()
		}
	}
}
