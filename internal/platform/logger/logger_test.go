package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	cases := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Setenv("GYMPASS_LOG_LEVEL", tc.value)
		require.Equal(t, tc.want, levelFromEnv(), "GYMPASS_LOG_LEVEL=%q", tc.value)
	}
}

func TestNewHonorsLevel(t *testing.T) {
	t.Setenv("GYMPASS_LOG_LEVEL", "warn")
	log := New()

	ctx := context.Background()
	require.False(t, log.Enabled(ctx, slog.LevelInfo))
	require.True(t, log.Enabled(ctx, slog.LevelWarn))
}
