// Package config loads a network's YAML configuration and its preapproved
// student roster. Both are external collaborators by design — the engine
// only needs a populated Network value back.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// BotConfig seeds one bot account at network bootstrap. Bots never
// register — they come to life from configuration alone.
type BotConfig struct {
	StartingBalance uint16 `yaml:"starting_balance"`
}

// Network is one network's full static configuration, loaded from one YAML
// file per network.
type Network struct {
	Name                  string               `yaml:"name"`
	URLPrefix             string               `yaml:"url_prefix"`
	PreapprovedUsers      string               `yaml:"preapproved_users"`
	BlockTransactionCount uint8                `yaml:"block_transaction_count"`
	HashZeros             uint8                `yaml:"hash_zeros"`
	RegisterBonus         uint16               `yaml:"register_bonus"`
	BlockReward           uint16               `yaml:"block_reward"`
	TxUpperLimit          uint16               `yaml:"tx_upper_limit"`
	TxLowerLimit          uint16               `yaml:"tx_lower_limit"`
	TxTrafficReward       uint16               `yaml:"tx_traffic_reward"`
	Bots                  map[string]BotConfig `yaml:"bots"`
}

// Load reads and parses one network configuration file, validating the
// invariants the engine depends on before a single request is served.
func Load(path string) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Network
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// validate resolves spec.md's open question on the traffic-reward/amount
// subtraction: a configuration that could ever underflow uint16 at block
// application is rejected outright, rather than silently saturating a
// student's balance mid-semester.
func (c *Network) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if c.URLPrefix == "" {
		return fmt.Errorf("url_prefix must not be empty")
	}
	if c.TxLowerLimit > c.TxUpperLimit {
		return fmt.Errorf("tx_lower_limit (%d) exceeds tx_upper_limit (%d)", c.TxLowerLimit, c.TxUpperLimit)
	}
	if c.TxTrafficReward > c.TxLowerLimit {
		return fmt.Errorf("tx_traffic_reward (%d) exceeds tx_lower_limit (%d), the smallest admissible transactions could underflow on application", c.TxTrafficReward, c.TxLowerLimit)
	}
	if c.BlockTransactionCount == 0 {
		return fmt.Errorf("block_transaction_count must be at least 1 (the coinbase slot)")
	}
	return nil
}
