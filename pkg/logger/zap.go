// Package logger owns the process-wide zap logger and the request-scoped
// loggers carried through context.
package logger

import (
	"context"
	"os"
	"runtime"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	once   sync.Once
	logger *zap.Logger
)

// Get returns the process logger, building it on first use.
//
// LOG_LEVEL selects the level (debug, info, warn, error). APP_ENV=development
// switches to the colored console encoder; anything else logs JSON to stdout.
func Get() *zap.Logger {
	once.Do(func() {
		level := zap.InfoLevel
		rawLevel := os.Getenv("LOG_LEVEL")
		var levelErr error
		if rawLevel != "" {
			parsed, err := zapcore.ParseLevel(rawLevel)
			if err != nil {
				levelErr = err
			} else {
				level = parsed
			}
		}

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder := zapcore.NewJSONEncoder(encoderCfg)

		if os.Getenv("APP_ENV") == "development" {
			devCfg := zap.NewDevelopmentEncoderConfig()
			devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(devCfg)
		}

		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(level))
		logger = zap.New(core, zap.AddCaller()).With(buildFields()...)

		if levelErr != nil {
			logger.Warn("Invalid LOG_LEVEL, falling back to info",
				zap.String("log_level", rawLevel),
				zap.Error(levelErr),
			)
		}
	})

	return logger
}

func buildFields() []zap.Field {
	revision := "unknown"
	goVersion := runtime.Version()
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
			}
		}
	}
	return []zap.Field{
		zap.String("git_revision", revision),
		zap.String("go_version", goVersion),
	}
}

// FromCtx returns the logger stored in ctx, or the process logger.
func FromCtx(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	} else if l := logger; l != nil {
		return l
	}

	return Get()
}

// WithCtx returns a copy of ctx carrying l.
func WithCtx(ctx context.Context, l *zap.Logger) context.Context {
	if lp, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		if lp == l {
			return ctx
		}
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// ResetForTest drops the process logger so the next Get rebuilds it from
// the current environment.
func ResetForTest() {
	once = sync.Once{}
	logger = nil
}
