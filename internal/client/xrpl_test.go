package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/test"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

func newConnected(t *testing.T, url string) *client.XRPLClient {
	t.Helper()
	c := client.NewXRPLClient(url,
		client.WithPollInterval(5*time.Millisecond),
		client.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Disconnect() })
	return c
}

func newAccount(t *testing.T) (*model.Wallet, *crypto.Keypair) {
	t.Helper()
	w, kp, err := crypto.GenerateWallet(crypto.Ed25519, model.NetworkTestnet)
	require.NoError(t, err)
	return w, kp
}

func TestConnectIsIdempotent(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()

	c := client.NewXRPLClient(ledger.URL())
	assert.False(t, c.IsConnected())
	require.NoError(t, c.Disconnect())

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.IsConnected())

	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
	assert.False(t, c.IsConnected())

	_, err := c.AccountInfo(ctx, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	assert.True(t, errors.Is(err, model.ErrNotConnected))
}

func TestRedialsAfterServerDropsSocket(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ctx := context.Background()

	c := newConnected(t, ledger.WSURL())
	_, err := c.LedgerCurrent(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.WSDials())

	ledger.DropConnections()
	require.Eventually(t, func() bool { return !c.IsConnected() }, time.Second, 5*time.Millisecond)

	// the next request redials on its own
	_, err = c.LedgerCurrent(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsConnected())
	assert.Equal(t, 2, ledger.WSDials())

	ledger.DropConnections()
	require.Eventually(t, func() bool { return !c.IsConnected() }, time.Second, 5*time.Millisecond)

	// Connect redials explicitly
	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.IsConnected())
	_, err = c.LedgerCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.WSDials())

	// an explicit Disconnect still wins over redialing
	require.NoError(t, c.Disconnect())
	_, err = c.LedgerCurrent(ctx)
	assert.True(t, errors.Is(err, model.ErrNotConnected))
	assert.Equal(t, 3, ledger.WSDials())
}

func TestUnfundedAccountHasZeroBalance(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	c := newConnected(t, ledger.URL())
	w, _ := newAccount(t)

	state, err := c.AccountInfo(context.Background(), w.Address)
	require.NoError(t, err)
	assert.False(t, state.Exists)
	assert.Zero(t, state.Drops)

	balance, err := c.Balance(context.Background(), w.Address)
	require.NoError(t, err)
	assert.Equal(t, &model.Balance{XRP: "0"}, balance)

	lines, err := c.AccountLines(context.Background(), w.Address)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAccountInfoFailurePropagates(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ledger.FailMethods["account_info"] = true
	c := newConnected(t, ledger.URL())

	_, err := c.AccountInfo(context.Background(), "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	require.Error(t, err)
	assert.True(t, client.IsRPCError(err, "internal"))
}

func TestBalanceOverWebSocket(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, _ := newAccount(t)
	ledger.Fund(w.Address, 25_500_000)

	c := newConnected(t, ledger.WSURL())
	balance, err := c.Balance(context.Background(), w.Address)
	require.NoError(t, err)
	assert.Equal(t, "25.5", balance.XRP)
	assert.Empty(t, balance.Tokens)

	other, _ := newAccount(t)
	state, err := c.AccountInfo(context.Background(), other.Address)
	require.NoError(t, err)
	assert.False(t, state.Exists)
}

func TestAutofill(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ledger.OpenLedgerFee = 5000
	w, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())
	ctx := context.Background()

	p, err := tx.NewPayment(w.Address, &model.PaymentIntent{Destination: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", Amount: "1"})
	require.NoError(t, err)
	require.NoError(t, c.Autofill(ctx, p))

	state, err := c.AccountInfo(ctx, w.Address)
	require.NoError(t, err)
	current, err := c.LedgerCurrent(ctx)
	require.NoError(t, err)

	assert.Equal(t, state.Sequence, p.Sequence)
	assert.Equal(t, "6000", p.Fee)
	assert.Equal(t, current+20, p.LastLedgerSequence)
	assert.Zero(t, p.NetworkID)
}

func TestAutofillNetworkID(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ledger.NetworkID = 21338
	w, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())

	p, err := tx.NewPayment(w.Address, &model.PaymentIntent{Destination: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", Amount: "1"})
	require.NoError(t, err)
	require.NoError(t, c.Autofill(context.Background(), p))
	assert.Equal(t, uint32(21338), p.NetworkID)
	assert.Equal(t, "12", p.Fee)
}

func TestAutofillUnfundedAccount(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, _ := newAccount(t)
	c := newConnected(t, ledger.URL())

	p, err := tx.NewPayment(w.Address, &model.PaymentIntent{Destination: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", Amount: "1"})
	require.NoError(t, err)
	err = c.Autofill(context.Background(), p)
	assert.True(t, errors.Is(err, model.ErrAccountNotFound))
}

func signedPayment(t *testing.T, c *client.XRPLClient, kp *crypto.Keypair, dest, amount string) (*tx.Signed, uint32) {
	t.Helper()
	p, err := tx.NewPayment(kp.Address(), &model.PaymentIntent{Destination: dest, Amount: amount})
	require.NoError(t, err)
	require.NoError(t, c.Autofill(context.Background(), p))
	signed, err := tx.Sign(p, kp)
	require.NoError(t, err)
	return signed, p.LastLedgerSequence
}

func TestSubmitAndWait(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, kp := newAccount(t)
	dest, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())

	signed, last := signedPayment(t, c, kp, dest.Address, "1.5")
	res, err := c.SubmitAndWait(context.Background(), signed, last)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, signed.Hash, res.Hash)
	assert.Empty(t, res.Error)
	assert.Equal(t, uint64(1_500_000), ledger.Drops(dest.Address))
}

func TestSubmitAndWaitLedgerFailure(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, kp := newAccount(t)
	dest, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())

	// validated but failed: the fee is spent and the code preserved
	ledger.ForceResult = "tecUNFUNDED_PAYMENT"
	signed, last := signedPayment(t, c, kp, dest.Address, "1")
	res, err := c.SubmitAndWait(context.Background(), signed, last)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "tecUNFUNDED_PAYMENT", res.Error)
	assert.Equal(t, signed.Hash, res.Hash)

	// rejected before reaching a ledger
	ledger.ForceResult = "temBAD_AMOUNT"
	signed, last = signedPayment(t, c, kp, dest.Address, "1")
	lookups := ledger.Calls("tx")
	res, err = c.SubmitAndWait(context.Background(), signed, last)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "temBAD_AMOUNT", res.Error)
	assert.Equal(t, lookups, ledger.Calls("tx"))
}

func TestSubmitAndWaitLastLedgerPassed(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ledger.NeverValidate = true
	w, kp := newAccount(t)
	dest, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())

	signed, last := signedPayment(t, c, kp, dest.Address, "1")
	res, err := c.SubmitAndWait(context.Background(), signed, last)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "tefMAX_LEDGER", res.Error)
}

func TestSubmitAndWaitCancelled(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	ledger.NeverValidate = true
	w, kp := newAccount(t)
	dest, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	c := newConnected(t, ledger.URL())

	signed, _ := signedPayment(t, c, kp, dest.Address, "1")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.SubmitAndWait(ctx, signed, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTrustLinesAndHistory(t *testing.T) {
	ledger := test.NewFakeLedger()
	defer ledger.Close()
	w, kp := newAccount(t)
	issuer, _ := newAccount(t)
	ledger.Fund(w.Address, 50_000_000)
	ledger.Fund(issuer.Address, 50_000_000)
	c := newConnected(t, ledger.URL())
	ctx := context.Background()

	ts, err := tx.NewTrustSet(w.Address, &model.TrustLineIntent{Issuer: issuer.Address, Currency: "USDC", Limit: "1000000000"})
	require.NoError(t, err)
	require.NoError(t, c.Autofill(ctx, ts))
	signed, err := tx.Sign(ts, kp)
	require.NoError(t, err)
	res, err := c.SubmitAndWait(ctx, signed, ts.LastLedgerSequence)
	require.NoError(t, err)
	require.True(t, res.Success)

	lines, err := c.AccountLines(ctx, w.Address)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, model.TrustLine{
		Issuer: issuer.Address, Currency: "USDC", Balance: "0", Limit: "1000000000", LimitPeer: "0", NoRipple: true,
	}, lines[0])

	ledger.SetLineBalance(w.Address, issuer.Address, "USDC", "12.5")
	balance, err := c.Balance(ctx, w.Address)
	require.NoError(t, err)
	require.Len(t, balance.Tokens, 1)
	assert.Equal(t, model.TokenBalance{Currency: "USDC", Issuer: issuer.Address, Value: "12.5"}, balance.Tokens[0])

	history, err := c.AccountTx(ctx, &model.HistoryRequest{Address: w.Address, Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "TrustSet", history[0].Type)
	assert.Equal(t, signed.Hash, history[0].Hash)
	assert.Equal(t, "tesSUCCESS", history[0].Result)
	assert.True(t, history[0].Validated)
	assert.False(t, history[0].Timestamp.IsZero())

	_, err = c.AccountTx(ctx, &model.HistoryRequest{Address: w.Address, Limit: 0})
	assert.Error(t, err)
}
