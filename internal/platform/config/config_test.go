package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"GYMPASS_ADDR", "GYMPASS_SHARE_BASE_URL", "GYMPASS_CLIENT_TOKEN_TTL",
		"GYMPASS_SHARE_TTL_HOURS", "GYMPASS_SHARE_MAX_TTL_HOURS", "GYMPASS_CLEANUP_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	require.Equal(t, ":8080", cfg.Addr)
	// The router mounts share resolution under /shares/{shareID}; the base
	// URL must not carry a path of its own.
	require.Equal(t, "http://localhost:8080", cfg.ShareBaseURL)
	require.Equal(t, 60*time.Second, cfg.ClientTokenTTL)
	require.Equal(t, 24*time.Hour, cfg.ShareTTL)
	require.Equal(t, 168*time.Hour, cfg.ShareMaxTTL)
	require.Equal(t, 5*time.Minute, cfg.CleanupEvery)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GYMPASS_ADDR", ":9090")
	t.Setenv("GYMPASS_SHARE_BASE_URL", "https://pass.example.com")
	t.Setenv("GYMPASS_CLIENT_TOKEN_TTL", "90s")
	t.Setenv("GYMPASS_SHARE_TTL_HOURS", "12")
	t.Setenv("GYMPASS_SHARE_MAX_TTL_HOURS", "48")

	cfg := FromEnv()

	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "https://pass.example.com", cfg.ShareBaseURL)
	require.Equal(t, 90*time.Second, cfg.ClientTokenTTL)
	require.Equal(t, 12*time.Hour, cfg.ShareTTL)
	require.Equal(t, 48*time.Hour, cfg.ShareMaxTTL)
}
