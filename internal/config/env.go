package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Profile names a deployment network
type Profile string

const (
	ProfileLocal   Profile = "local"
	ProfilePreview Profile = "preview"
	ProfilePreprod Profile = "preprod"
)

// GenesisMintWalletSeed gives access to tokens minted in the genesis block of a local
// development node. Only used with the local profile.
const GenesisMintWalletSeed = "0000000000000000000000000000000000000000000000000000000000000001"

// Endpoints is the network endpoint set selected by a profile
type Endpoints struct {
	NetworkID   string
	Indexer     string
	IndexerWS   string
	Node        string
	ProofServer string
}

var profiles = map[Profile]Endpoints{
	ProfileLocal: {
		NetworkID:   "undeployed",
		Indexer:     "http://127.0.0.1:8088/api/v3/graphql",
		IndexerWS:   "ws://127.0.0.1:8088/api/v3/graphql/ws",
		Node:        "http://127.0.0.1:9944",
		ProofServer: "http://127.0.0.1:6300",
	},
	ProfilePreview: {
		NetworkID:   "preview",
		Indexer:     "https://indexer.preview.midnight.network/api/v3/graphql",
		IndexerWS:   "wss://indexer.preview.midnight.network/api/v3/graphql/ws",
		Node:        "https://rpc.preview.midnight.network",
		ProofServer: "http://127.0.0.1:6300",
	},
	ProfilePreprod: {
		NetworkID:   "preprod",
		Indexer:     "https://indexer.preprod.midnight.network/api/v3/graphql",
		IndexerWS:   "wss://indexer.preprod.midnight.network/api/v3/graphql/ws",
		Node:        "https://rpc.preprod.midnight.network",
		ProofServer: "http://127.0.0.1:6300",
	},
}

// ProfileEndpoints returns the static endpoint set for a profile.
func ProfileEndpoints(p Profile) (Endpoints, error) {
	e, ok := profiles[p]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown profile %q (expected local, preview or preprod)", p)
	}
	return e, nil
}

// Config contains all configuration parameters for the application.
// Endpoint fields left empty fall back to the selected profile.
type Config struct {
	Profile     Profile `envconfig:"WILL_PROFILE" default:"local"`
	Port        string  `envconfig:"PORT" default:"8080"`
	IndexerURL  string  `envconfig:"INDEXER_URL"`
	IndexerWS   string  `envconfig:"INDEXER_WS_URL"`
	NodeURL     string  `envconfig:"NODE_URL"`
	ProofServer string  `envconfig:"PROOF_SERVER_URL"`
	ZkConfigURL string  `envconfig:"ZK_CONFIG_URL" default:"http://127.0.0.1:8080/assets"`

	WalletConnectorURL string `envconfig:"WALLET_CONNECTOR_URL"`
	WalletConnectorAPI string `envconfig:"WALLET_CONNECTOR_API" default:"modern"`

	ContractAddress   string `envconfig:"CONTRACT_ADDRESS"`
	CheckBeforeProve  bool   `envconfig:"CHECK_BEFORE_PROVE" default:"true"`
	SessionBusyPolicy string `envconfig:"SESSION_BUSY_POLICY" default:"queue"`
	KeyCacheSize      int    `envconfig:"KEY_CACHE_SIZE" default:"16"`

	JoinTimeout         time.Duration `envconfig:"JOIN_TIMEOUT" default:"30s"`
	SyncPollInterval    time.Duration `envconfig:"SYNC_POLL_INTERVAL" default:"2s"`
	FundingPollInterval time.Duration `envconfig:"FUNDING_POLL_INTERVAL" default:"10s"`
	MonitorInterval     time.Duration `envconfig:"MONITOR_INTERVAL" default:"5s"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"5m"`

	PrivateStateDir string `envconfig:"PRIVATE_STATE_DIR" default:".will/private-state"`
	LogDir          string `envconfig:"LOG_DIR" default:".will/logs"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	WalletFilePath  string `envconfig:"WALLET_FILE_PATH"`
	EnvMnemonic     string `envconfig:"MY_PREVIEW_MNEMONIC"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates configuration from the environment without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Set replaces the global configuration instance (used by the CLI after flag overrides).
func Set(c *Config) {
	cfg = c
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	c.Profile = Profile(strings.ToLower(string(c.Profile)))
	if _, err := ProfileEndpoints(c.Profile); err != nil {
		return err
	}
	switch c.SessionBusyPolicy {
	case "queue", "reject":
	default:
		return fmt.Errorf("SESSION_BUSY_POLICY must be queue or reject, got %q", c.SessionBusyPolicy)
	}
	switch c.WalletConnectorAPI {
	case "modern", "legacy":
	default:
		return fmt.Errorf("WALLET_CONNECTOR_API must be modern or legacy, got %q", c.WalletConnectorAPI)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("JOIN_TIMEOUT must be positive")
	}
	if c.KeyCacheSize <= 0 {
		return fmt.Errorf("KEY_CACHE_SIZE must be positive")
	}
	return nil
}

// Endpoints returns the profile endpoints with any explicit overrides applied.
func (c *Config) Endpoints() Endpoints {
	e := profiles[c.Profile]
	if c.IndexerURL != "" {
		e.Indexer = c.IndexerURL
	}
	if c.IndexerWS != "" {
		e.IndexerWS = c.IndexerWS
	}
	if c.NodeURL != "" {
		e.Node = c.NodeURL
	}
	if c.ProofServer != "" {
		e.ProofServer = c.ProofServer
	}
	return e
}

// IsLocal reports whether the standalone development profile is selected.
func (c *Config) IsLocal() bool {
	return c.Profile == ProfileLocal
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}
