package provider

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

const (
	EnvironmentDevnet  = "sapphire_devnet"
	EnvironmentMainnet = "sapphire_mainnet"
)

// Session request methods
const (
	methodGetAccounts       = "xrpl_getAccounts"
	methodPrivateKey        = "private_key"
	methodAccountInfo       = "account_info"
	methodAccountLines      = "account_lines"
	methodSubmitTransaction = "xrpl_submitTransaction"
	methodSignMessage       = "xrpl_signMessage"
)

// NormalizeEnvironment maps the environment tier to a Web3Auth network name
func NormalizeEnvironment(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "devnet", "development", EnvironmentDevnet:
		return EnvironmentDevnet, nil
	case "prod", "production", "mainnet", EnvironmentMainnet:
		return EnvironmentMainnet, nil
	}
	return "", errors.Wrapf(model.ErrConfig, "unknown web3auth environment %q", env)
}

// Web3AuthConfig configures the embedded session backend
type Web3AuthConfig struct {
	Network model.Network
	// RequestPrivateKey asks the session for the account key on Connect. The key lives until Disconnect.
	RequestPrivateKey bool
	Clock             clock.Clock
}

// Web3Auth is the embedded session backend. The session signs and submits;
// this backend only translates intents into session requests and classifies the replies.
type Web3Auth struct {
	network  model.Network
	sessions client.SessionProvider
	faucet   *client.FaucetClient
	withKey  bool
	clock    clock.Clock
	log      zerolog.Logger

	mu         sync.Mutex
	session    client.Session
	wallet     *model.Wallet
	privateKey string
}

// NewWeb3Auth creates the backend. faucet may be nil on networks without one.
func NewWeb3Auth(cfg Web3AuthConfig, sessions client.SessionProvider, faucet *client.FaucetClient) (*Web3Auth, error) {
	if err := cfg.Network.Validate(); err != nil {
		return nil, err
	}
	if sessions == nil {
		return nil, errors.Wrap(model.ErrConfig, "web3auth provider needs a session provider")
	}
	w := &Web3Auth{
		network:  cfg.Network,
		sessions: sessions,
		faucet:   faucet,
		withKey:  cfg.RequestPrivateKey,
		clock:    cfg.Clock,
		log:      log.With().Str("component", "web3auth_provider").Logger(),
	}
	if w.clock == nil {
		w.clock = clock.New()
	}
	return w, nil
}

func (w *Web3Auth) Kind() Kind { return KindWeb3Auth }

// Connect logs in and binds the first account of the session
func (w *Web3Auth) Connect(ctx context.Context) (*model.Wallet, error) {
	if wallet := w.Wallet(); wallet != nil {
		return wallet, nil
	}
	session, err := w.sessions.Login(ctx)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := session.Request(ctx, methodGetAccounts, nil, &accounts); err != nil {
		_ = session.Logout(ctx)
		return nil, errors.Wrap(err, "failed to get session accounts")
	}
	if len(accounts) == 0 || !crypto.IsValidAddress(accounts[0]) {
		_ = session.Logout(ctx)
		return nil, errors.Wrap(model.ErrMalformedResponse, "session returned no valid account")
	}

	var privateKey string
	if w.withKey {
		if err := session.Request(ctx, methodPrivateKey, nil, &privateKey); err != nil {
			_ = session.Logout(ctx)
			return nil, errors.Wrap(err, "failed to get session key")
		}
	}

	wallet := &model.Wallet{Address: accounts[0], ClassicAddress: accounts[0]}
	if xAddr, err := crypto.EncodeXAddress(accounts[0], nil, w.network.IsTestnet()); err == nil {
		wallet.XAddress = xAddr
	}

	w.mu.Lock()
	w.session = session
	w.wallet = wallet
	w.privateKey = privateKey
	w.mu.Unlock()
	w.log.Info().Str("address", wallet.Address).Msg("Session connected")
	return wallet, nil
}

// Disconnect drops the session key and logs out
func (w *Web3Auth) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	session := w.session
	w.session = nil
	w.wallet = nil
	w.privateKey = ""
	w.mu.Unlock()
	if session == nil {
		return nil
	}
	return session.Logout(ctx)
}

func (w *Web3Auth) IsConnected() bool {
	return w.Wallet() != nil
}

func (w *Web3Auth) Wallet() *model.Wallet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wallet
}

// PrivateKey returns the session key when it was requested on Connect
func (w *Web3Auth) PrivateKey() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wallet == nil {
		return "", model.ErrNotConnected
	}
	if w.privateKey == "" {
		return "", errors.Wrap(model.ErrUnsupported, "private key was not requested for this session")
	}
	return w.privateKey, nil
}

func (w *Web3Auth) current() (client.Session, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return nil, "", model.ErrNotConnected
	}
	return w.session, w.wallet.Address, nil
}

type sessionAccountInfo struct {
	AccountData *struct {
		Balance string `json:"Balance"`
	} `json:"account_data"`
}

func (w *Web3Auth) drops(ctx context.Context) (uint64, bool, error) {
	session, addr, err := w.current()
	if err != nil {
		return 0, false, err
	}
	var res sessionAccountInfo
	err = session.Request(ctx, methodAccountInfo, map[string]string{"account": addr, "ledger_index": "current"}, &res)
	if isAccountNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to get account info for %s", addr)
	}
	if res.AccountData == nil {
		return 0, false, errors.Wrap(model.ErrMalformedResponse, "account_info without account_data")
	}
	drops, err := strconv.ParseUint(res.AccountData.Balance, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(model.ErrMalformedResponse, "account_info balance %q", res.AccountData.Balance)
	}
	return drops, true, nil
}

func isAccountNotFound(err error) bool {
	var sessionErr *client.SessionError
	return errors.As(err, &sessionErr) && strings.Contains(sessionErr.Message, "actNotFound")
}

type sessionAccountLines struct {
	Lines []struct {
		Account  string `json:"account"`
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	} `json:"lines"`
}

func (w *Web3Auth) tokens(ctx context.Context) ([]model.TokenBalance, error) {
	session, addr, err := w.current()
	if err != nil {
		return nil, err
	}
	var res sessionAccountLines
	err = session.Request(ctx, methodAccountLines, map[string]string{"account": addr, "ledger_index": "validated"}, &res)
	if isAccountNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get trust lines for %s", addr)
	}
	var tokens []model.TokenBalance
	for _, l := range res.Lines {
		tokens = append(tokens, model.TokenBalance{
			Currency: common.DecodeCurrency(l.Currency),
			Issuer:   l.Account,
			Value:    l.Balance,
		})
	}
	return tokens, nil
}

// GetBalance returns the XRP balance and the issued-asset balances read through the
// session. An unfunded account has a zero balance and no tokens.
func (w *Web3Auth) GetBalance(ctx context.Context) (*model.Balance, error) {
	drops, exists, err := w.drops(ctx)
	if err != nil {
		return nil, err
	}
	balance := &model.Balance{XRP: common.DropsToXRP(drops)}
	if !exists {
		return balance, nil
	}
	if balance.Tokens, err = w.tokens(ctx); err != nil {
		return nil, err
	}
	return balance, nil
}

func (w *Web3Auth) SendPayment(ctx context.Context, intent *model.PaymentIntent) (*model.TransactionResult, error) {
	_, addr, err := w.current()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewPayment(addr, intent)
	if err != nil {
		return nil, err
	}
	return w.submit(ctx, t)
}

func (w *Web3Auth) EstablishTrustline(ctx context.Context, intent *model.TrustLineIntent) (*model.TransactionResult, error) {
	_, addr, err := w.current()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewTrustSet(addr, intent)
	if err != nil {
		return nil, err
	}
	return w.submit(ctx, t)
}

func (w *Web3Auth) submit(ctx context.Context, t *tx.Transaction) (*model.TransactionResult, error) {
	session, _, err := w.current()
	if err != nil {
		return nil, err
	}
	var reply json.RawMessage
	if err := session.Request(ctx, methodSubmitTransaction, map[string]any{"transaction": t}, &reply); err != nil {
		return nil, errors.Wrapf(err, "failed to submit %s", t.TransactionType)
	}
	result, err := classifySubmitReply(reply)
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("type", string(t.TransactionType)).Str("hash", result.Hash).Bool("success", result.Success).Msg("Transaction submitted")
	return result, nil
}

type submitReply struct {
	Hash          string `json:"hash"`
	ResultCode    string `json:"resultCode"`
	EngineResult  string `json:"engine_result"`
	TransactionID string `json:"tx_hash"`
	TxJSON        struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
	Meta struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
	Result *submitReply `json:"result"`
}

// classifySubmitReply reads the result code wherever the session put it.
// A reply without any result code is malformed, a hash alone proves nothing.
func classifySubmitReply(raw json.RawMessage) (*model.TransactionResult, error) {
	var r submitReply
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "submit reply: %v", err)
	}
	code, hash := r.code()
	if r.Result != nil {
		innerCode, innerHash := r.Result.code()
		if code == "" {
			code = innerCode
		}
		if hash == "" {
			hash = innerHash
		}
	}
	if code == "" {
		return nil, errors.Wrap(model.ErrMalformedResponse, "submit reply without result code")
	}
	return model.ClassifyResult(hash, code), nil
}

func (r *submitReply) code() (code, hash string) {
	switch {
	case r.Meta.TransactionResult != "":
		code = r.Meta.TransactionResult
	case r.ResultCode != "":
		code = r.ResultCode
	default:
		code = r.EngineResult
	}
	switch {
	case r.Hash != "":
		hash = r.Hash
	case r.TxJSON.Hash != "":
		hash = r.TxJSON.Hash
	default:
		hash = r.TransactionID
	}
	return code, hash
}

// SignMessage asks the session to sign message
func (w *Web3Auth) SignMessage(ctx context.Context, message string) (*model.SignedMessage, error) {
	session, _, err := w.current()
	if err != nil {
		return nil, err
	}
	var signed model.SignedMessage
	if err := session.Request(ctx, methodSignMessage, map[string]string{"message": message}, &signed); err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}
	if signed.Signature == "" {
		return nil, errors.Wrap(model.ErrMalformedResponse, "signMessage reply without signature")
	}
	if signed.Message == "" {
		signed.Message = message
	}
	return &signed, nil
}

// FundAccount asks the faucet for test XRP. It fails on mainnet before any network call.
func (w *Web3Auth) FundAccount(ctx context.Context) (*model.Balance, error) {
	if _, ok := w.network.FaucetURL(); !ok {
		return nil, errors.Wrapf(model.ErrConfig, "funding is only available on testnet, not %s", w.network)
	}
	if w.faucet == nil {
		return nil, errors.Wrap(model.ErrConfig, "no faucet client configured")
	}
	_, addr, err := w.current()
	if err != nil {
		return nil, err
	}
	before, _, err := w.drops(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := w.faucet.Fund(ctx, addr, ""); err != nil {
		return nil, errors.Wrap(err, "failed to fund wallet")
	}
	drops, err := waitForFunds(ctx, w.clock, addr, before, w.drops)
	if err != nil {
		return nil, err
	}
	return &model.Balance{XRP: common.DropsToXRP(drops)}, nil
}
