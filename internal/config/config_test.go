package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("CERTEN_KERNEL_VALIDATOR_ID", "validator-1")
	t.Setenv("CERTEN_KERNEL_ED25519_KEY_PATH", "/tmp/key")
	t.Setenv("CERTEN_KERNEL_KERNEL_HASH_HEX", "0000000000000000000000000000000000000000000000000000000000000000"[:64])

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	require.Equal(t, "goleveldb", cfg.DBBackend)
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsMalformedKernelHash(t *testing.T) {
	t.Setenv("CERTEN_KERNEL_VALIDATOR_ID", "validator-1")
	t.Setenv("CERTEN_KERNEL_ED25519_KEY_PATH", "/tmp/key")
	t.Setenv("CERTEN_KERNEL_KERNEL_HASH_HEX", "not-hex")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsPostgresRequiredWithoutURL(t *testing.T) {
	t.Setenv("CERTEN_KERNEL_VALIDATOR_ID", "validator-1")
	t.Setenv("CERTEN_KERNEL_ED25519_KEY_PATH", "/tmp/key")
	t.Setenv("CERTEN_KERNEL_KERNEL_HASH_HEX", "0000000000000000000000000000000000000000000000000000000000000000"[:64])
	t.Setenv("CERTEN_KERNEL_POSTGRES_REQUIRED", "true")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.yaml")
	contents := "validator_id: validator-file\n" +
		"ed25519_key_path: /tmp/key\n" +
		"kernel_hash_hex: \"" + "1111111111111111111111111111111111111111111111111111111111111111"[:64] + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "validator-file", cfg.ValidatorID)
}
