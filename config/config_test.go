package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `ListenAddress = ":9090"
DataDir = "/var/lib/arnsd"
GenesisFile = "/etc/arnsd/genesis.json"
NetworkName = "arns-testnet"
LogFile = "/var/log/arnsd.log"
LogEnv = "production"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddress)
	require.Equal(t, "/var/lib/arnsd", cfg.DataDir)
	require.Equal(t, "arns-testnet", cfg.NetworkName)
	require.Equal(t, "production", cfg.LogEnv)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("LogEnv = \"development\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddress)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, "./genesis.json", cfg.GenesisFile)
	require.Equal(t, "arns-local", cfg.NetworkName)
	require.Equal(t, "development", cfg.LogEnv)
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddress)
	require.FileExists(t, path)

	// A second load reads the materialized file back unchanged.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("ListenAddress = [broken\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}
