package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/snaplead-api/internal/config"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tt.level})
			require.NoError(t, err)
			require.NotNil(t, log)

			assert.True(t, log.Enabled(context.Background(), tt.enabled))
			if tt.enabled > slog.LevelDebug {
				assert.False(t, log.Enabled(context.Background(), tt.enabled-4))
			}
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	def := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("empty context falls back to default", func(t *testing.T) {
		t.Parallel()
		assert.Same(t, def, FromContextOrDefault(context.Background(), def))
	})

	t.Run("nil default falls back to slog default", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	})

	t.Run("stored logger wins", func(t *testing.T) {
		t.Parallel()
		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithLogger(context.Background(), stored)
		assert.Same(t, stored, FromContextOrDefault(ctx, def))
		assert.Same(t, stored, FromContext(ctx))
	})
}
