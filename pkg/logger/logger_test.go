package logger_test

import (
	"context"
	"log/slog"
	"testing"
	"validator/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantDebug   bool
	}{
		{name: "development defaults to debug", environment: logger.DevelopmentEnvironment, wantDebug: true},
		{name: "production defaults to info", environment: logger.ProductionEnvironment, wantDebug: false},
		{name: "level override", environment: logger.DevelopmentEnvironment, level: "warn", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, logger.Setup(tt.environment, tt.level))
			require.Equal(t, tt.wantDebug, logger.IsDebug(context.Background()))
		})
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	require.Error(t, logger.Setup(logger.DevelopmentEnvironment, "chatty"))
}

func TestGet(t *testing.T) {
	require.NoError(t, logger.Setup(logger.DevelopmentEnvironment, ""))

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx), "should return default logger when context has no logger")

	custom := zap.NewNop()
	require.Equal(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("requestID", "abc"))
	logger.Info(ctx, "validated")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "validated", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["requestID"])
}

func TestStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.StdLogger(ctx, slog.LevelError).Print("http: TLS handshake error")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.Contains(t, entries[0].Message, "TLS handshake error")
}

func TestLoggingFunctions(t *testing.T) {
	require.NoError(t, logger.Setup(logger.DevelopmentEnvironment, ""))
	ctx := context.Background()

	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", zap.String("key", "value"))
		logger.Info(ctx, "info message", zap.String("key", "value"))
		logger.Warn(ctx, "warn message", zap.String("key", "value"))
		logger.Error(ctx, "error message", zap.String("key", "value"))
	})
}
