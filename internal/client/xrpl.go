package client

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const (
	defaultSubmitPollInterval = time.Second
	ledgerOffset              = 20        // LastLedgerSequence = current + ledgerOffset
	maxFeeDrops               = 2_000_000 // 2 XRP
	networkIDThreshold        = 1024      // NetworkID must be omitted on networks with id <= 1024
	rippleEpochOffset         = 946684800 // seconds between the unix and ripple epochs
)

// XRPLClient is the ledger gateway. One client serves one backend: connect on demand,
// disconnect explicitly. Connectedness is tracked here, not inferred from the transport.
type XRPLClient struct {
	url          string
	transport    Transport
	clock        clock.Clock
	metrics      *metrics.Metrics
	pollInterval time.Duration
	log          zerolog.Logger

	mu        sync.Mutex
	connected bool
	networkID *uint32
}

// Option configures an XRPLClient
type Option func(*XRPLClient)

// WithTransport replaces the transport derived from the URL
func WithTransport(t Transport) Option {
	return func(c *XRPLClient) { c.transport = t }
}

// WithClock sets the clock used while waiting for validation
func WithClock(clk clock.Clock) Option {
	return func(c *XRPLClient) { c.clock = clk }
}

// WithMetrics records ledger calls on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *XRPLClient) { c.metrics = m }
}

// WithPollInterval sets how often a submitted transaction is looked up
func WithPollInterval(d time.Duration) Option {
	return func(c *XRPLClient) { c.pollInterval = d }
}

// NewXRPLClient creates a gateway for a ws(s):// or http(s):// endpoint
func NewXRPLClient(url string, opts ...Option) *XRPLClient {
	c := &XRPLClient{
		url:          url,
		clock:        clock.New(),
		pollInterval: defaultSubmitPollInterval,
		log:          log.With().Str("component", "xrpl_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewTransport(url)
	}
	return c
}

// URL returns the endpoint the client talks to
func (c *XRPLClient) URL() string {
	return c.url
}

// Connect opens the transport. Connecting while the transport is open is a no-op; connecting
// after the transport dropped redials.
func (c *XRPLClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open(ctx)
}

// open must be called with mu held
func (c *XRPLClient) open(ctx context.Context) error {
	if c.connected && c.transport.IsOpen() {
		return nil
	}
	if err := c.transport.Connect(ctx); err != nil {
		return errors.Wrap(err, "failed to connect to ledger")
	}
	if c.connected {
		c.log.Info().Str("url", c.url).Msg("Reconnected to ledger")
		return nil
	}
	c.connected = true
	c.log.Info().Str("url", c.url).Msg("Connected to ledger")
	return nil
}

// Disconnect closes the transport. Disconnecting when not connected is a no-op.
func (c *XRPLClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	c.connected = false
	c.networkID = nil
	if err := c.transport.Close(); err != nil {
		return errors.Wrap(err, "failed to close ledger connection")
	}
	c.log.Info().Str("url", c.url).Msg("Disconnected from ledger")
	return nil
}

// IsConnected is true after Connect while the transport is open. It turns false when the
// connection drops; the next request or Connect redials.
func (c *XRPLClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && c.transport.IsOpen()
}

// ensureOpen redials a dropped transport. Calls after Disconnect fail with ErrNotConnected.
func (c *XRPLClient) ensureOpen(ctx context.Context, method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return errors.Wrapf(model.ErrNotConnected, "%s", method)
	}
	return c.open(ctx)
}

// request performs one ledger call and decodes the result into out
func (c *XRPLClient) request(ctx context.Context, method string, params, out any) error {
	if err := c.ensureOpen(ctx, method); err != nil {
		return err
	}

	result, err := c.transport.Request(ctx, method, params)
	if err != nil {
		outcome := "transport_error"
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			outcome = rpcErr.Code
		}
		c.metrics.ObserveRPC(method, outcome)
		c.log.Debug().Err(err).Str("method", method).Msg("Ledger request failed")
		return err
	}
	c.metrics.ObserveRPC(method, "ok")

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return errors.Wrapf(model.ErrMalformedResponse, "%s: %v", method, err)
	}
	return nil
}

type accountParams struct {
	Account     string `json:"account"`
	LedgerIndex string `json:"ledger_index,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type accountInfoResult struct {
	AccountData *struct {
		Account    string `json:"Account"`
		Balance    string `json:"Balance"`
		Sequence   uint32 `json:"Sequence"`
		OwnerCount uint32 `json:"OwnerCount"`
	} `json:"account_data"`
}

// AccountInfo returns balance and sequence of address. An unfunded account is not an
// error: it comes back with Exists=false and a zero balance.
func (c *XRPLClient) AccountInfo(ctx context.Context, address string) (*model.AccountState, error) {
	var res accountInfoResult
	err := c.request(ctx, "account_info", accountParams{Account: address, LedgerIndex: "current"}, &res)
	if IsRPCError(err, codeAccountNotFound) {
		return &model.AccountState{Address: address}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get account info for %s", address)
	}
	if res.AccountData == nil {
		return nil, errors.Wrap(model.ErrMalformedResponse, "account_info without account_data")
	}

	drops, err := strconv.ParseUint(res.AccountData.Balance, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "account_info balance %q", res.AccountData.Balance)
	}
	return &model.AccountState{
		Address:    address,
		Drops:      drops,
		Sequence:   res.AccountData.Sequence,
		OwnerCount: res.AccountData.OwnerCount,
		Exists:     true,
	}, nil
}

type accountLinesResult struct {
	Lines []struct {
		Account   string `json:"account"`
		Balance   string `json:"balance"`
		Currency  string `json:"currency"`
		Limit     string `json:"limit"`
		LimitPeer string `json:"limit_peer"`
		NoRipple  bool   `json:"no_ripple"`
	} `json:"lines"`
}

// AccountLines lists the trust lines of address. Currency codes are returned in display form.
func (c *XRPLClient) AccountLines(ctx context.Context, address string) ([]model.TrustLine, error) {
	var res accountLinesResult
	err := c.request(ctx, "account_lines", accountParams{Account: address, LedgerIndex: "validated"}, &res)
	if IsRPCError(err, codeAccountNotFound) {
		return []model.TrustLine{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get trust lines for %s", address)
	}

	lines := make([]model.TrustLine, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, model.TrustLine{
			Issuer:    l.Account,
			Currency:  common.DecodeCurrency(l.Currency),
			Balance:   l.Balance,
			Limit:     l.Limit,
			LimitPeer: l.LimitPeer,
			NoRipple:  l.NoRipple,
		})
	}
	return lines, nil
}

// Balance returns the XRP balance and the issued-asset balances of address
func (c *XRPLClient) Balance(ctx context.Context, address string) (*model.Balance, error) {
	state, err := c.AccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	balance := &model.Balance{XRP: common.DropsToXRP(state.Drops)}
	if !state.Exists {
		return balance, nil
	}

	lines, err := c.AccountLines(ctx, address)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		balance.Tokens = append(balance.Tokens, model.TokenBalance{
			Currency: l.Currency,
			Issuer:   l.Issuer,
			Value:    l.Balance,
		})
	}
	return balance, nil
}

type accountTxResult struct {
	Transactions []struct {
		Tx          json.RawMessage `json:"tx"`
		TxJSON      json.RawMessage `json:"tx_json"`
		Hash        string          `json:"hash"`
		LedgerIndex uint32          `json:"ledger_index"`
		Validated   bool            `json:"validated"`
		Meta        struct {
			TransactionResult string `json:"TransactionResult"`
		} `json:"meta"`
	} `json:"transactions"`
}

type historyTx struct {
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination"`
	Amount          json.RawMessage `json:"Amount"`
	Fee             string          `json:"Fee"`
	Hash            string          `json:"hash"`
	LedgerIndex     uint32          `json:"ledger_index"`
	Date            int64           `json:"date"`
}

// AccountTx returns the most recent transactions of an account, newest first
func (c *XRPLClient) AccountTx(ctx context.Context, req *model.HistoryRequest) ([]model.AccountTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res accountTxResult
	params := map[string]any{
		"account":          req.Address,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"limit":            req.Limit,
		"forward":          false,
	}
	err := c.request(ctx, "account_tx", params, &res)
	if IsRPCError(err, codeAccountNotFound) {
		return []model.AccountTransaction{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get transactions for %s", req.Address)
	}

	out := make([]model.AccountTransaction, 0, len(res.Transactions))
	for _, entry := range res.Transactions {
		raw := entry.Tx
		if len(raw) == 0 {
			raw = entry.TxJSON
		}
		var t historyTx
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, errors.Wrapf(model.ErrMalformedResponse, "account_tx entry: %v", err)
		}

		item := model.AccountTransaction{
			Hash:        t.Hash,
			Type:        t.TransactionType,
			Account:     t.Account,
			Destination: t.Destination,
			Fee:         t.Fee,
			Result:      entry.Meta.TransactionResult,
			LedgerIndex: t.LedgerIndex,
			Validated:   entry.Validated,
		}
		if item.Hash == "" {
			item.Hash = entry.Hash
		}
		if item.LedgerIndex == 0 {
			item.LedgerIndex = entry.LedgerIndex
		}
		if t.Date > 0 {
			item.Timestamp = time.Unix(t.Date+rippleEpochOffset, 0).UTC()
		}
		item.Amount, item.Currency = historyAmount(t.Amount)
		out = append(out, item)
	}
	return out, nil
}

// historyAmount renders an Amount field leniently: history may contain amount forms
// this library does not build
func historyAmount(raw json.RawMessage) (value, currency string) {
	if len(raw) == 0 {
		return "", ""
	}
	var drops string
	if json.Unmarshal(raw, &drops) == nil {
		if xrp, err := common.DropsStringToXRP(drops); err == nil {
			return xrp, common.NativeCurrency
		}
		return drops, ""
	}
	var issued struct {
		Currency string `json:"currency"`
		Value    string `json:"value"`
	}
	if json.Unmarshal(raw, &issued) == nil {
		return issued.Value, common.DecodeCurrency(issued.Currency)
	}
	return "", ""
}

// ServerInfo is the subset of server_info the client uses
type ServerInfo struct {
	BuildVersion    string `json:"build_version"`
	CompleteLedgers string `json:"complete_ledgers"`
	NetworkID       uint32 `json:"network_id"`
	ServerState     string `json:"server_state"`
	ValidatedLedger *struct {
		Seq        uint32  `json:"seq"`
		BaseFeeXRP float64 `json:"base_fee_xrp"`
	} `json:"validated_ledger"`
}

// ServerInfo queries the connected server
func (c *XRPLClient) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var res struct {
		Info *ServerInfo `json:"info"`
	}
	if err := c.request(ctx, "server_info", struct{}{}, &res); err != nil {
		return nil, errors.Wrap(err, "failed to get server info")
	}
	if res.Info == nil {
		return nil, errors.Wrap(model.ErrMalformedResponse, "server_info without info")
	}
	return res.Info, nil
}

func (c *XRPLClient) networkIDOf(ctx context.Context) (uint32, error) {
	c.mu.Lock()
	cached := c.networkID
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	info, err := c.ServerInfo(ctx)
	if err != nil {
		return 0, err
	}
	id := info.NetworkID
	c.mu.Lock()
	c.networkID = &id
	c.mu.Unlock()
	return id, nil
}

type feeResult struct {
	Drops struct {
		BaseFee       string `json:"base_fee"`
		OpenLedgerFee string `json:"open_ledger_fee"`
	} `json:"drops"`
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

// Fee estimates the fee in drops: the open ledger fee with a 20% cushion,
// never below the base fee and never above 2 XRP
func (c *XRPLClient) Fee(ctx context.Context) (uint64, error) {
	var res feeResult
	if err := c.request(ctx, "fee", struct{}{}, &res); err != nil {
		return 0, errors.Wrap(err, "failed to get fee")
	}
	base, err := strconv.ParseUint(res.Drops.BaseFee, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(model.ErrMalformedResponse, "fee base_fee %q", res.Drops.BaseFee)
	}
	open, err := strconv.ParseUint(res.Drops.OpenLedgerFee, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(model.ErrMalformedResponse, "fee open_ledger_fee %q", res.Drops.OpenLedgerFee)
	}
	return estimateFee(base, open), nil
}

func estimateFee(base, open uint64) uint64 {
	fee := (open*12 + 9) / 10
	if fee < base {
		fee = base
	}
	if fee > maxFeeDrops {
		fee = maxFeeDrops
	}
	return fee
}

// LedgerCurrent returns the index of the open ledger
func (c *XRPLClient) LedgerCurrent(ctx context.Context) (uint32, error) {
	var res struct {
		LedgerCurrentIndex uint32 `json:"ledger_current_index"`
	}
	if err := c.request(ctx, "ledger_current", struct{}{}, &res); err != nil {
		return 0, errors.Wrap(err, "failed to get current ledger")
	}
	if res.LedgerCurrentIndex == 0 {
		return 0, errors.Wrap(model.ErrMalformedResponse, "ledger_current without index")
	}
	return res.LedgerCurrentIndex, nil
}
