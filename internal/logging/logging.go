// Package logging provides the small structured logger used by the recovery
// client, strategies and batch engine. The arithmetic packages never log.
//
// The default implementation is backed by go-log (zap). Key/value pairs follow
// zap's sugared convention:
//
//	logger := logging.New()
//	logger.Info(ctx, "batch finished", "records", 12, "failed", 0)
//	logger.Debug(ctx, "signing", logging.Redacted("private_key"))
package logging

import (
	"context"

	golog "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

// Subsystem is the go-log subsystem name used by New.
const Subsystem = "ecrecover"

const redactedPlaceholder = "[redacted]"

// base registers the subsystem with go-log so SetLevel works before New.
var base = golog.Logger(Subsystem)

// Logger is the subset of structured logging used in this module.
type Logger interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) Logger
}

// New returns a Logger bound to the module's go-log subsystem.
func New() Logger {
	return &zapLogger{l: &base.SugaredLogger}
}

// FromZap wraps an existing sugared logger.
func FromZap(l *zap.SugaredLogger) Logger {
	if l == nil {
		return Nop()
	}
	return &zapLogger{l: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zapLogger{l: zap.NewNop().Sugar()}
}

// SetLevel sets the level of the module's subsystem ("debug", "info", ...).
func SetLevel(level string) error {
	return golog.SetLogLevel(Subsystem, level)
}

// Redacted marks a field whose value was intentionally left out.
func Redacted(key string) zap.Field {
	return zap.String(key, redactedPlaceholder)
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func (z *zapLogger) Debug(_ context.Context, msg string, kv ...any) {
	z.l.Debugw(msg, kv...)
}

func (z *zapLogger) Info(_ context.Context, msg string, kv ...any) {
	z.l.Infow(msg, kv...)
}

func (z *zapLogger) Warn(_ context.Context, msg string, kv ...any) {
	z.l.Warnw(msg, kv...)
}

func (z *zapLogger) Error(_ context.Context, msg string, kv ...any) {
	z.l.Errorw(msg, kv...)
}

func (z *zapLogger) With(kv ...any) Logger {
	return &zapLogger{l: z.l.With(kv...)}
}
