package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Network selects the ledger the wallet operates on. Immutable once a backend is built.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
)

const (
	testnetWebSocketURL = "wss://s.altnet.rippletest.net:51233"
	testnetJSONRPCURL   = "https://s.altnet.rippletest.net:51234"
	testnetFaucetURL    = "https://faucet.altnet.rippletest.net/accounts"
	mainnetWebSocketURL = "wss://xrplcluster.com"
	mainnetJSONRPCURL   = "https://xrplcluster.com"

	usdcTestnetCurrency = "5553444300000000000000000000000000000000" // "USDC" in hex
	usdcTestnetIssuer   = "rHuGNhqTG32mfmAvWA8hUyWRLV3tCSwKQt"      // Circle's testnet issuer
	usdcDefaultLimit    = "1000000000"
)

// Asset identifies an issued currency
type Asset struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
}

// ParseNetwork parses "testnet" or "mainnet" (case insensitive)
func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if err := n.Validate(); err != nil {
		return "", err
	}
	return n, nil
}

// Validate checks the network is a known one
func (n Network) Validate() error {
	switch n {
	case NetworkTestnet, NetworkMainnet:
		return nil
	}
	return errors.Wrapf(ErrConfig, "unknown network %q", string(n))
}

// IsTestnet reports whether funds on this network have no value
func (n Network) IsTestnet() bool {
	return n == NetworkTestnet
}

// WebSocketURL returns the default WebSocket endpoint
func (n Network) WebSocketURL() string {
	if n == NetworkMainnet {
		return mainnetWebSocketURL
	}
	return testnetWebSocketURL
}

// JSONRPCURL returns the default JSON-RPC over HTTP endpoint
func (n Network) JSONRPCURL() string {
	if n == NetworkMainnet {
		return mainnetJSONRPCURL
	}
	return testnetJSONRPCURL
}

// FaucetURL returns the funding faucet endpoint. There is no faucet on mainnet.
func (n Network) FaucetURL() (string, bool) {
	if n != NetworkTestnet {
		return "", false
	}
	return testnetFaucetURL, true
}

// USDC returns the well-known USDC test asset and its default trust limit
func (n Network) USDC() (Asset, string, bool) {
	if n != NetworkTestnet {
		return Asset{}, "", false
	}
	return Asset{Currency: usdcTestnetCurrency, Issuer: usdcTestnetIssuer}, usdcDefaultLimit, true
}
