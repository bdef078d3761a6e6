package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsThenFileThenCliOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[spam]
target_tps = 75

[utxo]
target_utxo_count = 250
`), 0644))

	cli := &Cli{
		ConfigFile: configPath,
		PrivateKey: "ab000000000000000000000000000000000000000000000000000000000000cd",
		TargetTPS:  200, // should win over the file's 75
	}

	cfg, key, err := Load(cli)
	require.NoError(t, err)
	require.Equal(t, "ab000000000000000000000000000000000000000000000000000000000000cd", key)
	require.Equal(t, uint64(200), cfg.Spam.TargetTPS)
	require.Equal(t, 250, cfg.UTXO.TargetUTXOCount)
	require.Equal(t, 10, cfg.UTXO.OutputsPerTransaction) // untouched default survives
}

func TestLoadRejectsMissingPrivateKey(t *testing.T) {
	t.Setenv("PRIVATE_KEY_HEX", "")
	cli := &Cli{}
	_, _, err := Load(cli)
	require.Error(t, err)
}

func TestLoadRejectsMalformedPrivateKey(t *testing.T) {
	cli := &Cli{PrivateKey: "not-hex"}
	_, _, err := Load(cli)
	require.Error(t, err)
}

func TestResolveNetworkRejectsUnknownName(t *testing.T) {
	cfg := Default()
	cfg.Network.Network = "sidechain"
	_, err := cfg.ResolveNetwork()
	require.Error(t, err)
}
