package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mintforge/crypto"
)

// Backend names accepted for DataBackend.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Config is the daemon configuration, persisted as TOML.
type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	DataBackend string `toml:"DataBackend"`
	Environment string `toml:"Environment"`

	// Authority is the bech32 account allowed to change program
	// configuration and mint administratively.
	Authority string `toml:"Authority"`
	// EngineAddress is the identity the engine presents to the auction
	// shares source.
	EngineAddress string `toml:"EngineAddress"`
	// MaxSupply is the decimal supply ceiling shared by every mint path.
	MaxSupply string `toml:"MaxSupply"`

	LogPath       string `toml:"LogPath"`
	LogMaxSizeMB  int    `toml:"LogMaxSizeMB"`
	LogMaxBackups int    `toml:"LogMaxBackups"`
	LogMaxAgeDays int    `toml:"LogMaxAgeDays"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = ":8545"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./forge-data"
	}
	if strings.TrimSpace(c.DataBackend) == "" {
		c.DataBackend = BackendLevelDB
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if strings.TrimSpace(c.MaxSupply) == "" {
		c.MaxSupply = "0"
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups <= 0 {
		c.LogMaxBackups = 3
	}
}

// Validate checks the configuration for obvious misconfiguration.
func (c *Config) Validate() error {
	switch strings.TrimSpace(c.DataBackend) {
	case BackendLevelDB, BackendBolt:
	default:
		return fmt.Errorf("unknown DataBackend %q", c.DataBackend)
	}
	if strings.TrimSpace(c.Authority) != "" {
		if _, err := crypto.DecodeAddress(c.Authority); err != nil {
			return fmt.Errorf("invalid Authority: %w", err)
		}
	}
	if strings.TrimSpace(c.EngineAddress) != "" {
		if _, err := crypto.DecodeAddress(c.EngineAddress); err != nil {
			return fmt.Errorf("invalid EngineAddress: %w", err)
		}
	}
	if _, err := c.MaxSupplyBig(); err != nil {
		return err
	}
	return nil
}

// MaxSupplyBig parses the configured supply ceiling.
func (c *Config) MaxSupplyBig() (*big.Int, error) {
	trimmed := strings.TrimSpace(c.MaxSupply)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid MaxSupply: %q", c.MaxSupply)
	}
	return value, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
