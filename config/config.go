package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime knob. All fields come from the environment;
// env var names follow the conventions the ecosystem already uses
// (ETHEREUM_MAINNET_NODE, ETHERSCAN_API_KEY) so existing setups keep working.
type Config struct {
	NodeURL        string        `envconfig:"ETHEREUM_MAINNET_NODE"   default:"https://ethereum-rpc.publicnode.com"`
	ExplorerDomain string        `envconfig:"EXPLORER_DOMAIN"         default:"https://api.etherscan.io"`
	ExplorerAPIKey string        `envconfig:"ETHERSCAN_API_KEY"`
	IPFSGateway    string        `envconfig:"IPFS_GATEWAY"            default:"https://ipfs.io/ipfs/"`
	ArweaveGateway string        `envconfig:"ARWEAVE_GATEWAY"         default:"https://arweave.net/"`
	DatabasePath   string        `envconfig:"CHAINSTASH_DB"`
	IndexPath      string        `envconfig:"CHAINSTASH_INDEX"`
	RequestTimeout time.Duration `envconfig:"CHAINSTASH_TIMEOUT"      default:"10s"`
	RetryAttempts  uint64        `envconfig:"CHAINSTASH_RETRIES"      default:"3"`
	TxPageSize     int           `envconfig:"CHAINSTASH_TX_PAGE_SIZE" default:"5"`
}

// Load reads the configuration from the environment and fills in the
// home-directory defaults for paths that were not set explicitly.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("chainstash", cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home dir: %w", err)
	}
	dataDir := filepath.Join(home, ".chainstash")
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(dataDir, "chainstash.db")
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(dataDir, "metadata.bleve")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return cfg, nil
}
