package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/api"
	"github.com/AlexZinkM/xrp-genie/internal/config"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/test"
)

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()

	router, err := api.SetupRouter(&config.Config{
		Provider:  "faucet",
		Network:   "testnet",
		RPCURL:    ledger.URL(),
		FaucetURL: ledger.FaucetURL(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	defer srv.Close()

	account, _, err := crypto.GenerateWallet(crypto.Ed25519, model.NetworkTestnet)
	require.NoError(t, err)
	ledger.Fund(account.Address, 10_000_000)

	resp := post(t, srv, "/xrpl/account-info", model.AccountInfoRequest{Address: account.Address})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// relay routes are absent without credentials
	resp = post(t, srv, "/xumm/signin", struct{}{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `xrpgenie_ledger_requests_total{method="account_info",outcome="ok"}`)

	resp, err = http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/xrpl/account-info")
}

func TestRouterWithXumm(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	relay := test.NewFakeRelay("key", "secret")
	defer relay.Close()

	router, err := api.SetupRouter(&config.Config{
		Provider:      "faucet",
		Network:       "testnet",
		RPCURL:        ledger.URL(),
		XummAPIKey:    "key",
		XummAPISecret: "secret",
		XummAPIURL:    relay.URL(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp := post(t, srv, "/xumm/signin", struct{}{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, relay.Created(), 1)
}

func TestRouterRejectsBadNetwork(t *testing.T) {
	_, err := api.SetupRouter(&config.Config{Provider: "faucet", Network: "devnet"})
	assert.Error(t, err)
}
