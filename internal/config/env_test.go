package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "WILL_PROFILE", "JOIN_TIMEOUT", "FUNDING_POLL_INTERVAL", "SESSION_BUSY_POLICY",
		"CHECK_BEFORE_PROVE", "KEY_CACHE_SIZE", "WALLET_CONNECTOR_API")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProfileLocal, c.Profile)
	assert.Equal(t, 30*time.Second, c.JoinTimeout)
	assert.Equal(t, 10*time.Second, c.FundingPollInterval)
	assert.Equal(t, "queue", c.SessionBusyPolicy)
	assert.True(t, c.CheckBeforeProve)
	assert.Equal(t, 16, c.KeyCacheSize)
	assert.True(t, c.IsLocal())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WILL_PROFILE", "Preview")
	t.Setenv("PROOF_SERVER_URL", "http://prover:6300")
	t.Setenv("JOIN_TIMEOUT", "5s")
	t.Setenv("SESSION_BUSY_POLICY", "reject")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProfilePreview, c.Profile)
	assert.Equal(t, 5*time.Second, c.JoinTimeout)
	assert.Equal(t, "reject", c.SessionBusyPolicy)

	e := c.Endpoints()
	assert.Equal(t, "preview", e.NetworkID)
	assert.Equal(t, "http://prover:6300", e.ProofServer)
	assert.Contains(t, e.Indexer, "preview")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Profile:            ProfileLocal,
			SessionBusyPolicy:  "queue",
			WalletConnectorAPI: "modern",
			JoinTimeout:        time.Second,
			KeyCacheSize:       1,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"profile":     func(c *Config) { c.Profile = "mainnet" },
		"busy policy": func(c *Config) { c.SessionBusyPolicy = "drop" },
		"connector":   func(c *Config) { c.WalletConnectorAPI = "v3" },
		"timeout":     func(c *Config) { c.JoinTimeout = 0 },
		"cache":       func(c *Config) { c.KeyCacheSize = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestGetSet(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = nil
	assert.Panics(t, func() { Get() })

	Set(&Config{Port: "9090"})
	assert.Equal(t, "9090", GetPort())
}

func TestPasswordNotSet(t *testing.T) {
	ClearPassword()
	_, err := GetPasswordBytes()
	assert.Error(t, err)
}
