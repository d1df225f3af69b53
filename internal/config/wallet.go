package config

import (
	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// Wallet builds the wallet configuration for the configured provider.
// Credentials of the other providers are left out so they cannot leak into the wrong backend.
func (c *Config) Wallet() (genie.Config, error) {
	network, err := model.ParseNetwork(c.Network)
	if err != nil {
		return genie.Config{}, err
	}
	w := genie.Config{
		Provider:  genie.ProviderKind(c.Provider),
		Network:   network,
		RPCURL:    c.RPCURL,
		FaucetURL: c.FaucetURL,
	}
	switch w.Provider {
	case genie.ProviderFaucet:
		w.Seed = c.Seed
	case genie.ProviderXaman:
		w.Xaman = c.Xumm()
	case genie.ProviderWeb3Auth:
		w.Web3Auth = &genie.Web3AuthConfig{
			ClientID:    c.Web3AuthClientID,
			Environment: c.Web3AuthEnvironment,
			BridgeURL:   c.Web3AuthBridgeURL,
			IDToken:     c.Web3AuthIDToken,
		}
	}
	return w, nil
}

// XummWallet builds a remote approval configuration regardless of the configured provider.
// The HTTP relay routes always work through Xaman.
func (c *Config) XummWallet() (genie.Config, error) {
	network, err := model.ParseNetwork(c.Network)
	if err != nil {
		return genie.Config{}, err
	}
	return genie.Config{
		Provider: genie.ProviderXaman,
		Network:  network,
		RPCURL:   c.RPCURL,
		Xaman:    c.Xumm(),
	}, nil
}

// Xumm returns the relay settings
func (c *Config) Xumm() *genie.XamanConfig {
	return &genie.XamanConfig{
		APIKey:       c.XummAPIKey,
		APISecret:    c.XummAPISecret,
		BaseURL:      c.XummAPIURL,
		PollInterval: c.XummPollInterval,
	}
}

// LedgerWallet builds a local key configuration used for read-only ledger queries and test wallet generation
func (c *Config) LedgerWallet() (genie.Config, error) {
	network, err := model.ParseNetwork(c.Network)
	if err != nil {
		return genie.Config{}, err
	}
	return genie.Config{
		Provider:  genie.ProviderFaucet,
		Network:   network,
		RPCURL:    c.RPCURL,
		FaucetURL: c.FaucetURL,
	}, nil
}
