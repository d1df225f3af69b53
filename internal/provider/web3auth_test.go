package provider_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/provider"
	"github.com/AlexZinkM/xrp-genie/internal/test"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

func newWeb3Auth(t *testing.T, ledger *test.FakeLedger, sessions client.SessionProvider, network model.Network, withKey bool) *provider.Web3Auth {
	t.Helper()
	w, err := provider.NewWeb3Auth(provider.Web3AuthConfig{Network: network, RequestPrivateKey: withKey}, sessions, client.NewFaucetClient(ledger.FaucetURL()))
	require.NoError(t, err)
	return w
}

func TestNormalizeEnvironment(t *testing.T) {
	for in, want := range map[string]string{
		"dev":              provider.EnvironmentDevnet,
		"devnet":           provider.EnvironmentDevnet,
		"":                 provider.EnvironmentDevnet,
		"production":       provider.EnvironmentMainnet,
		"mainnet":          provider.EnvironmentMainnet,
		"sapphire_mainnet": provider.EnvironmentMainnet,
	} {
		got, err := provider.NormalizeEnvironment(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := provider.NormalizeEnvironment("staging")
	assert.True(t, errors.Is(err, model.ErrConfig))
}

func TestWeb3AuthSession(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	w := newWeb3Auth(t, ledger, session, model.NetworkTestnet, true)
	ctx := context.Background()

	wallet, err := w.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Address(), wallet.Address)
	assert.Empty(t, wallet.PrivateKey)
	key, err := w.PrivateKey()
	require.NoError(t, err)
	assert.Equal(t, session.PrivateKey(), key)

	// unfunded
	balance, err := w.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", balance.XRP)

	balance, err = w.FundAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", balance.XRP)

	dest := signer(t)
	res, err := w.SendPayment(ctx, &model.PaymentIntent{Destination: dest.Address, Amount: "3"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Hash, 64)
	assert.Equal(t, uint64(3_000_000), ledger.Drops(dest.Address))

	signed, err := w.SignMessage(ctx, "gm")
	require.NoError(t, err)
	addr, err := tx.VerifyMessage(signed)
	require.NoError(t, err)
	assert.Equal(t, session.Address(), addr)

	require.NoError(t, w.Disconnect(ctx))
	assert.False(t, session.LoggedIn())
	assert.Equal(t, 1, session.Logouts())
	_, err = w.PrivateKey()
	assert.True(t, errors.Is(err, model.ErrNotConnected))
}

func TestWeb3AuthBalanceIncludesTokens(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	w := newWeb3Auth(t, ledger, session, model.NetworkTestnet, false)
	ctx := context.Background()
	issuer := signer(t)
	ledger.Fund(issuer.Address, 50_000_000)

	_, err := w.Connect(ctx)
	require.NoError(t, err)
	_, err = w.FundAccount(ctx)
	require.NoError(t, err)

	balance, err := w.GetBalance(ctx)
	require.NoError(t, err)
	assert.Empty(t, balance.Tokens)

	res, err := w.EstablishTrustline(ctx, &model.TrustLineIntent{Issuer: issuer.Address, Currency: "USDC", Limit: "1000"})
	require.NoError(t, err)
	require.True(t, res.Success)
	ledger.SetLineBalance(session.Address(), issuer.Address, "USDC", "7.25")

	balance, err = w.GetBalance(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "0", balance.XRP)
	require.Len(t, balance.Tokens, 1)
	assert.Equal(t, model.TokenBalance{Currency: "USDC", Issuer: issuer.Address, Value: "7.25"}, balance.Tokens[0])
}

func TestWeb3AuthWithoutKey(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w := newWeb3Auth(t, ledger, test.NewFakeSession(ledger), model.NetworkTestnet, false)

	_, err := w.Connect(context.Background())
	require.NoError(t, err)
	_, err = w.PrivateKey()
	assert.True(t, errors.Is(err, model.ErrUnsupported))
}

func TestWeb3AuthLedgerFailureIsAResult(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	ledger.Fund(session.Address(), 5_000_000)
	w := newWeb3Auth(t, ledger, session, model.NetworkTestnet, false)
	ctx := context.Background()
	_, err := w.Connect(ctx)
	require.NoError(t, err)

	res, err := w.SendPayment(ctx, &model.PaymentIntent{Destination: signer(t).Address, Amount: "50"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "tecUNFUNDED_PAYMENT", res.Error)
}

func TestWeb3AuthOverBridge(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	bridge := test.NewFakeBridge(session)
	defer bridge.Close()
	usdc, limit, _ := model.NetworkTestnet.USDC()
	ledger.Fund(usdc.Issuer, 10_000_000)
	ledger.Fund(session.Address(), 10_000_000)

	b, err := client.NewWeb3AuthBridge(client.Web3AuthBridgeConfig{
		BridgeURL:   bridge.URL(),
		ClientID:    "client-1",
		Environment: provider.EnvironmentDevnet,
		Network:     model.NetworkTestnet,
	})
	require.NoError(t, err)
	w := newWeb3Auth(t, ledger, b, model.NetworkTestnet, false)
	ctx := context.Background()

	_, err = w.Connect(ctx)
	require.NoError(t, err)
	balance, err := w.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", balance.XRP)

	res, err := w.EstablishTrustline(ctx, &model.TrustLineIntent{Issuer: usdc.Issuer, Currency: "USDC", Limit: limit})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, [][3]string{{usdc.Issuer, usdc.Currency, limit}}, ledger.Lines(session.Address()))

	require.NoError(t, w.Disconnect(ctx))
	assert.False(t, session.LoggedIn())
}

func TestWeb3AuthLoginFailure(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	session := test.NewFakeSession(ledger)
	session.FailLogin = true
	w := newWeb3Auth(t, ledger, session, model.NetworkTestnet, false)

	_, err := w.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, w.IsConnected())
}

func TestWeb3AuthMainnetFunding(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w := newWeb3Auth(t, ledger, test.NewFakeSession(ledger), model.NetworkMainnet, false)
	ctx := context.Background()

	// before and after connecting
	_, err := w.FundAccount(ctx)
	assert.True(t, errors.Is(err, model.ErrConfig))
	_, err = w.Connect(ctx)
	require.NoError(t, err)
	_, err = w.FundAccount(ctx)
	assert.True(t, errors.Is(err, model.ErrConfig))
	assert.Equal(t, 0, ledger.Calls("account_info"))
}

func TestClassifySubmitReply(t *testing.T) {
	for name, tc := range map[string]struct {
		reply string
		want  *model.TransactionResult
	}{
		"meta":        {`{"hash":"AA","meta":{"TransactionResult":"tesSUCCESS"}}`, &model.TransactionResult{Hash: "AA", Success: true}},
		"result code": {`{"hash":"AA","resultCode":"tecNO_DST"}`, &model.TransactionResult{Hash: "AA", Error: "tecNO_DST"}},
		"nested":      {`{"result":{"engine_result":"tesSUCCESS","tx_json":{"hash":"BB"}}}`, &model.TransactionResult{Hash: "BB", Success: true}},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := provider.ClassifySubmitReply(json.RawMessage(tc.reply))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)
		})
	}

	_, err := provider.ClassifySubmitReply(json.RawMessage(`{"hash":"AA"}`))
	assert.True(t, errors.Is(err, model.ErrMalformedResponse))
}
