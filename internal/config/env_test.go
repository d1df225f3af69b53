package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "faucet", c.Provider)
	assert.Equal(t, "testnet", c.Network)
	assert.Equal(t, 2*time.Second, c.XummPollInterval)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.HasXumm())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("XRPL_PROVIDER", "xaman")
	t.Setenv("XRPL_NETWORK", "mainnet")
	t.Setenv("XUMM_API_KEY", "key")
	t.Setenv("XUMM_API_SECRET", "secret")
	t.Setenv("XUMM_POLL_INTERVAL", "3s")
	t.Setenv("LOG_PRETTY", "true")

	require.NoError(t, Init())
	c := Get()
	assert.Equal(t, "xaman", c.Provider)
	assert.Equal(t, "mainnet", c.Network)
	assert.True(t, c.HasXumm())
	assert.Equal(t, 3*time.Second, c.XummPollInterval)
	assert.True(t, c.LogPretty)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("XUMM_POLL_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestWalletConfigKeepsOnlySelectedProvider(t *testing.T) {
	c := &Config{
		Provider:            "web3auth",
		Network:             "Testnet",
		Seed:                "snoPBrXtMeMyMHUVTgbuqAfg1SUTb",
		XummAPIKey:          "key",
		XummAPISecret:       "secret",
		Web3AuthClientID:    "client",
		Web3AuthEnvironment: "dev",
		Web3AuthBridgeURL:   "http://localhost:9000",
	}
	w, err := c.Wallet()
	require.NoError(t, err)
	assert.Equal(t, "testnet", string(w.Network))
	assert.Empty(t, w.Seed)
	assert.Nil(t, w.Xaman)
	require.NotNil(t, w.Web3Auth)
	assert.Equal(t, "client", w.Web3Auth.ClientID)

	x, err := c.XummWallet()
	require.NoError(t, err)
	assert.Equal(t, "key", x.Xaman.APIKey)
	assert.Nil(t, x.Web3Auth)

	l, err := c.LedgerWallet()
	require.NoError(t, err)
	assert.Equal(t, "faucet", string(l.Provider))
	assert.Empty(t, l.Seed)
	assert.Nil(t, l.Xaman)
	assert.Nil(t, l.Web3Auth)

	c.Network = "moon"
	_, err = c.Wallet()
	assert.Error(t, err)
}
