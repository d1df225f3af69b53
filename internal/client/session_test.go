package client_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/test"
)

func TestNewWeb3AuthBridgeValidates(t *testing.T) {
	_, err := client.NewWeb3AuthBridge(client.Web3AuthBridgeConfig{BridgeURL: "http://localhost"})
	assert.True(t, errors.Is(err, model.ErrConfig))
	_, err = client.NewWeb3AuthBridge(client.Web3AuthBridgeConfig{ClientID: "id"})
	assert.True(t, errors.Is(err, model.ErrConfig))
}

func TestBridgeSession(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	bridge := test.NewFakeBridge(session)
	bridge.Token = "id-token"
	defer bridge.Close()

	b, err := client.NewWeb3AuthBridge(client.Web3AuthBridgeConfig{
		BridgeURL:   bridge.URL(),
		ClientID:    "client-1",
		Environment: "sapphire_devnet",
		Network:     model.NetworkTestnet,
		TokenSource: client.StaticToken("id-token"),
	})
	require.NoError(t, err)
	ctx := context.Background()

	s, err := b.Login(ctx)
	require.NoError(t, err)
	require.Len(t, bridge.Logins, 1)
	assert.Equal(t, "xrpl", bridge.Logins[0]["chainNamespace"])
	assert.Equal(t, "client-1", bridge.Logins[0]["clientId"])

	var accounts []string
	require.NoError(t, s.Request(ctx, "xrpl_getAccounts", nil, &accounts))
	assert.Equal(t, []string{session.Address()}, accounts)

	err = s.Request(ctx, "eth_accounts", nil, nil)
	var sessErr *client.SessionError
	require.True(t, errors.As(err, &sessErr))
	assert.Equal(t, -32601, sessErr.Code)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, session.LoggedIn())
}

func TestBridgeRejectsMissingToken(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	bridge := test.NewFakeBridge(test.NewFakeSession(ledger))
	bridge.Token = "id-token"
	defer bridge.Close()

	b, err := client.NewWeb3AuthBridge(client.Web3AuthBridgeConfig{BridgeURL: bridge.URL(), ClientID: "client-1"})
	require.NoError(t, err)
	_, err = b.Login(context.Background())
	var statusErr *client.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestFaucetFund(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, _ := newAccount(t)

	res, err := client.NewFaucetClient(ledger.FaucetURL()).Fund(context.Background(), w.Address, "")
	require.NoError(t, err)
	assert.Equal(t, w.Address, res.Account.ClassicAddress)
	assert.Equal(t, "100", res.Amount.String())
	assert.Equal(t, test.DefaultFaucetDrops, ledger.Drops(w.Address))
}
