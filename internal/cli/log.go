package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// levelFor maps the --verbose flag to a log level.
func levelFor(verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return LogInfo
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// opTimer logs one command operation on a layout file: its start at debug
// level and its completion, with the elapsed time, at info level.
type opTimer struct {
	logger *log.Logger
	start  time.Time
}

func startOp(ctx context.Context, op, file string) *opTimer {
	l := loggerFromContext(ctx).With("op", op, "file", file)
	l.Debug("started")
	return &opTimer{logger: l, start: time.Now()}
}

// done logs msg with kv and the elapsed time rounded to milliseconds.
func (o *opTimer) done(msg string, kv ...any) {
	kv = append(kv, "elapsed", time.Since(o.start).Round(time.Millisecond))
	o.logger.Info(msg, kv...)
}
