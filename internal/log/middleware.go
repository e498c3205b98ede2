package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey holds the request-scoped *Logger installed by the trace
// middleware.
const LoggerContextKey ContextKey = "logger"

// FromContext returns the request logger, or a default app logger when none
// was installed.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
	}
}

// StructuredLogger emits the fixed-shape events: request start/end and
// saved sales.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func requestAttrs(r *http.Request, clientIP string) attrs {
	return attrs{}.
		add(FieldComponent, ComponentHTTP).
		add(FieldMethod, r.Method).
		add(FieldPath, r.URL.Path).
		addIf(FieldQuery, r.URL.RawQuery).
		addIf(FieldClientIP, clientIP)
}

// LogHTTPStart logs at debug so normal traffic stays one line per request.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	a := requestAttrs(r, clientIP).addIf(FieldUserAgent, r.UserAgent())
	sl.logger.Logger.Log(ctx, slog.LevelDebug, "HTTP request started", a...)
}

// LogHTTPEnd picks the level from the status class.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	a := requestAttrs(r, clientIP).
		add(FieldStatusCode, statusCode).
		add(FieldDuration, durationMs)
	sl.logger.Logger.Log(ctx, level, "HTTP request completed", a...)
}

func (sl *StructuredLogger) LogTransactionSaved(ctx context.Context, id, product string, qty int, total string, update bool) {
	op := OpCreate
	if update {
		op = OpUpdate
	}
	a := attrs{}.
		add(FieldComponent, ComponentTransaction).
		add(FieldOperation, op).
		addIf(FieldTransactionID, id).
		add(FieldProduct, product).
		add(FieldQty, qty).
		add(FieldTotal, total)
	sl.logger.Logger.InfoContext(ctx, "Transaction saved", a...)
}
