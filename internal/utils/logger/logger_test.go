package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hostdesk/internal/utils/logger/slogpretty"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           envLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           envDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           envProd,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "unknown environment",
			env:           "staging",
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	opts := slogpretty.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With("component", "sync")

	log.Info("Синхронизация завершена", "synced", 2, Err(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "Синхронизация завершена")
	assert.Contains(t, out, `"component": "sync"`)
	assert.Contains(t, out, `"synced": 2`)
	assert.Contains(t, out, `"error": "boom"`)
}
