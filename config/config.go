package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Chain struct {
	Chain       string `toml:"chain"`
	ChainId     int64  `toml:"chain_id"`
	RpcUrl      string `toml:"rpc_url"`
	ExplorerUrl string `toml:"explorer_url"`
}

type Drelay struct {
	DbHost     string `toml:"db_host"`
	DbPort     int    `toml:"db_port"`
	DbUsername string `toml:"db_username"`
	DbPassword string `toml:"db_password"`
	DbSchema   string `toml:"db_schema"`
	InMemory   bool   `toml:"in_memory"`

	ServerPort     int    `toml:"server_port"`
	RouterUrl      string `toml:"router_url"`
	RouterPollMs   int64  `toml:"router_poll_ms"`
	SweepSchedule  string `toml:"sweep_schedule"`
	QuoteCacheSize int    `toml:"quote_cache_size"`

	// Confirmation coordination. A zero confirmation timeout means an
	// unbounded wait for the handler.
	AutoConfirmTransactions   bool  `toml:"auto_confirm_transactions"`
	ConfirmationTimeoutMs     int64 `toml:"confirmation_timeout_ms"`
	PendingOperationTimeoutMs int64 `toml:"pending_operation_timeout_ms"`

	Chains map[string]Chain `toml:"chains"`
}

func (c Drelay) ConfirmationTimeout() time.Duration {
	return time.Duration(c.ConfirmationTimeoutMs) * time.Millisecond
}

func (c Drelay) PendingOperationTimeout() time.Duration {
	return time.Duration(c.PendingOperationTimeoutMs) * time.Millisecond
}

func (c Drelay) RouterPollInterval() time.Duration {
	return time.Duration(c.RouterPollMs) * time.Millisecond
}

// Load reads a TOML config file.
func Load(path string) (Drelay, error) {
	cfg := Drelay{}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return cfg, nil
}
