package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"text/template"

	"github.com/sisu-network/drelay/config"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg := config.Drelay{
		DbHost:                    "localhost",
		DbPort:                    3306,
		ServerPort:                31001,
		RouterUrl:                 "http://localhost:8080",
		RouterPollMs:              2000,
		SweepSchedule:             "@every 30s",
		ConfirmationTimeoutMs:     60000,
		PendingOperationTimeoutMs: 600000,
		Chains: map[string]config.Chain{
			"ganache1": {
				ChainId:     1337,
				RpcUrl:      "http://localhost:7545",
				ExplorerUrl: "http://localhost:4000/tx",
			},
		},
	}

	tmpl, err := template.New("relayConfig").Parse(config.RelayConfigTemplate)
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "relay.toml")
	f, err := os.Create(path)
	require.Nil(t, err)
	require.Nil(t, tmpl.Execute(f, cfg))
	require.Nil(t, f.Close())

	loaded, err := config.Load(path)
	require.Nil(t, err)

	require.Equal(t, cfg.RouterUrl, loaded.RouterUrl)
	require.Equal(t, cfg.ConfirmationTimeoutMs, loaded.ConfirmationTimeoutMs)
	require.Equal(t, cfg.PendingOperationTimeoutMs, loaded.PendingOperationTimeoutMs)
	require.Equal(t, int64(1337), loaded.Chains["ganache1"].ChainId)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NotNil(t, err)
}
