package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger emits action-oriented JSON log entries tagged with the owning
// service. Every entry carries "action" plus whatever fields the call site
// attaches.
type Logger struct {
	service string
	s       *zap.SugaredLogger
}

func New(service string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	z, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{
		service: service,
		s:       z.Sugar().With("service", service, "hostname", hostname()),
	}
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.s.Infow(action, kvs(action, fields, nil)...)
}

func (l *Logger) Debug(action string, fields map[string]any) {
	l.s.Debugw(action, kvs(action, fields, nil)...)
}

func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.s.Errorw(action, kvs(action, fields, err)...)
}

func (l *Logger) Sync() { _ = l.s.Sync() }

func kvs(action string, fields map[string]any, err error) []any {
	out := make([]any, 0, 2*len(fields)+4)
	out = append(out, "action", action)
	for k, v := range fields {
		out = append(out, k, v)
	}
	if err != nil {
		out = append(out, "error", err.Error())
	}
	return out
}

func hostname() string { h, _ := os.Hostname(); return h }
