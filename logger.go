package gridding

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Sookie3mo/ASC15-Gridding/engine"
)

// Logger wraps slog.Logger with benchmark-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPhase adds a phase field to the logger.
func (l *Logger) WithPhase(p Phase) *Logger {
	return &Logger{
		Logger: l.Logger.With("phase", string(p)),
	}
}

// WithConfig adds the benchmark geometry to the logger.
func (l *Logger) WithConfig(cfg Config) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"samples", cfg.Samples,
			"channels", cfg.Channels,
			"grid_size", cfg.GridSize,
			"w_planes", cfg.WPlanes,
		),
	}
}

// LogPhase logs the completion of a phase.
func (l *Logger) LogPhase(ctx context.Context, p Phase, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "phase failed",
			"phase", string(p),
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "phase completed",
		"phase", string(p),
		"elapsed", elapsed,
	)
}

// LogRun logs the statistics of a gridding pass.
func (l *Logger) LogRun(ctx context.Context, stats engine.RunStats) {
	l.InfoContext(ctx, "gridding pass",
		"samples", stats.Samples,
		"partitions", stats.Partitions,
		"executors", stats.Executors,
		"scratch_bytes", stats.ScratchBytes,
		"accumulate", stats.Accumulate,
		"reduce", stats.Reduce,
	)
}
