package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 8888, cfg.Server.Port)
	require.Equal(t, 2, cfg.Subscription.RequiredCycles)
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("APP_SUBSCRIPTION_REQUIRED_CYCLES", "3")
	t.Setenv("APP_SERVER_PORT", "9999")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Subscription.RequiredCycles)
	require.Equal(t, 9999, cfg.Server.Port)
}
