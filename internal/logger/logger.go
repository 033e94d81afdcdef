// Package logger provides structured event logging for the pipeline.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger emits structured events. Every entry carries a human message, a
// machine-readable event name and an optional field map.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

// zapLogger implements Logger on top of zap.
type zapLogger struct {
	log *zap.Logger
}

// New builds a zap-backed Logger at the given level. Unknown levels fall back
// to info.
func New(level string) Logger {
	lvl := zapcore.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return NopLogger{}
	}
	return &zapLogger{log: log}
}

// fields converts the event name and field map into zap fields.
func fields(event string, m map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(m)+1)
	out = append(out, zap.String("event", event))
	for k, v := range m {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *zapLogger) DebugObj(msg, event string, m map[string]any) {
	l.log.Debug(msg, fields(event, m)...)
}

func (l *zapLogger) InfoObj(msg, event string, m map[string]any) {
	l.log.Info(msg, fields(event, m)...)
}

func (l *zapLogger) WarnObj(msg, event string, m map[string]any) {
	l.log.Warn(msg, fields(event, m)...)
}

func (l *zapLogger) ErrorObj(msg, event string, m map[string]any) {
	l.log.Error(msg, fields(event, m)...)
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
