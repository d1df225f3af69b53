package provider

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

// FaucetConfig configures the local-key backend
type FaucetConfig struct {
	Network model.Network
	// Seed imports an existing identity on Connect. Without it Connect creates and funds a new one.
	Seed string
	// KeyType of generated identities, ed25519 by default
	KeyType crypto.KeyType
	Clock   clock.Clock
}

// Faucet is the local-key backend: it holds the key pair, signs in process and submits
// through the gateway. New identities are funded from the test network faucet.
type Faucet struct {
	network model.Network
	seed    string
	keyType crypto.KeyType
	gateway *client.XRPLClient
	faucet  *client.FaucetClient
	clock   clock.Clock
	log     zerolog.Logger

	mu      sync.Mutex
	wallet  *model.Wallet
	keypair *crypto.Keypair
}

// NewFaucet creates the backend. faucet may be nil on networks without one.
func NewFaucet(cfg FaucetConfig, gateway *client.XRPLClient, faucet *client.FaucetClient) (*Faucet, error) {
	if err := cfg.Network.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, errors.Wrap(model.ErrConfig, "faucet provider needs a ledger gateway")
	}
	if cfg.Seed != "" {
		if _, _, err := crypto.DecodeSeed(cfg.Seed); err != nil {
			return nil, errors.Wrap(model.ErrConfig, err.Error())
		}
	}
	f := &Faucet{
		network: cfg.Network,
		seed:    cfg.Seed,
		keyType: cfg.KeyType,
		gateway: gateway,
		faucet:  faucet,
		clock:   cfg.Clock,
		log:     log.With().Str("component", "faucet_provider").Logger(),
	}
	if f.keyType == "" {
		f.keyType = crypto.Ed25519
	}
	if f.clock == nil {
		f.clock = clock.New()
	}
	return f, nil
}

func (f *Faucet) Kind() Kind { return KindFaucet }

// Connect imports the configured seed or creates and funds a new identity
func (f *Faucet) Connect(ctx context.Context) (*model.Wallet, error) {
	if w := f.Wallet(); w != nil {
		return w, nil
	}
	if f.seed != "" {
		return f.ConnectExisting(ctx, f.seed)
	}
	return f.CreateWallet(ctx)
}

// CreateWallet generates a new identity and funds it from the faucet. Test network only.
func (f *Faucet) CreateWallet(ctx context.Context) (*model.Wallet, error) {
	if err := f.requireFaucet(); err != nil {
		return nil, err
	}
	if err := f.gateway.Connect(ctx); err != nil {
		return nil, err
	}

	w, kp, err := crypto.GenerateWallet(f.keyType, f.network)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate wallet")
	}
	if _, err := f.faucet.Fund(ctx, w.Address, ""); err != nil {
		kp.Zero()
		return nil, errors.Wrap(err, "failed to fund wallet")
	}
	if _, err := f.waitForFunds(ctx, w.Address, 0); err != nil {
		kp.Zero()
		return nil, err
	}

	f.bind(w, kp)
	f.log.Info().Str("address", w.Address).Msg("Created and funded wallet")
	return w, nil
}

// ConnectExisting imports an identity from a family seed
func (f *Faucet) ConnectExisting(ctx context.Context, seed string) (*model.Wallet, error) {
	w, kp, err := crypto.WalletFromSeed(seed, f.network)
	if err != nil {
		return nil, errors.Wrap(model.ErrConfig, err.Error())
	}
	if err := f.gateway.Connect(ctx); err != nil {
		kp.Zero()
		return nil, err
	}
	f.bind(w, kp)
	f.log.Info().Str("address", w.Address).Msg("Imported wallet")
	return w, nil
}

func (f *Faucet) bind(w *model.Wallet, kp *crypto.Keypair) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keypair != nil {
		f.keypair.Zero()
	}
	f.wallet = w
	f.keypair = kp
}

// Disconnect wipes the key pair and closes the gateway
func (f *Faucet) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	if f.keypair != nil {
		f.keypair.Zero()
	}
	f.wallet = nil
	f.keypair = nil
	f.mu.Unlock()
	return f.gateway.Disconnect()
}

func (f *Faucet) IsConnected() bool {
	return f.Wallet() != nil
}

// Wallet returns the bound identity, nil when disconnected
func (f *Faucet) Wallet() *model.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallet
}

func (f *Faucet) identity() (*model.Wallet, *crypto.Keypair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wallet == nil {
		return nil, nil, model.ErrNotConnected
	}
	return f.wallet, f.keypair, nil
}

// Seed returns the family seed of the bound identity
func (f *Faucet) Seed() (string, error) {
	w, _, err := f.identity()
	if err != nil {
		return "", err
	}
	return w.Seed, nil
}

// PrivateKey returns the hex private key of the bound identity
func (f *Faucet) PrivateKey() (string, error) {
	w, _, err := f.identity()
	if err != nil {
		return "", err
	}
	return w.PrivateKey, nil
}

func (f *Faucet) GetBalance(ctx context.Context) (*model.Balance, error) {
	w, _, err := f.identity()
	if err != nil {
		return nil, err
	}
	return f.gateway.Balance(ctx, w.Address)
}

// SendPayment builds, autofills, signs and submits a payment, then waits for validation
func (f *Faucet) SendPayment(ctx context.Context, intent *model.PaymentIntent) (*model.TransactionResult, error) {
	w, kp, err := f.identity()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewPayment(w.Address, intent)
	if err != nil {
		return nil, err
	}
	return f.submit(ctx, t, kp)
}

// SendToken sends an issued currency
func (f *Faucet) SendToken(ctx context.Context, destination, currency, issuer, amount string) (*model.TransactionResult, error) {
	if currency == "" {
		return nil, errors.New("currency is required")
	}
	return f.SendPayment(ctx, &model.PaymentIntent{
		Destination: destination,
		Amount:      amount,
		Currency:    currency,
		Issuer:      issuer,
	})
}

// EstablishTrustline submits a TrustSet with no-rippling set
func (f *Faucet) EstablishTrustline(ctx context.Context, intent *model.TrustLineIntent) (*model.TransactionResult, error) {
	w, kp, err := f.identity()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewTrustSet(w.Address, intent)
	if err != nil {
		return nil, err
	}
	return f.submit(ctx, t, kp)
}

func (f *Faucet) submit(ctx context.Context, t *tx.Transaction, kp *crypto.Keypair) (*model.TransactionResult, error) {
	if err := f.gateway.Autofill(ctx, t); err != nil {
		return nil, errors.Wrap(err, "failed to autofill transaction")
	}
	signed, err := tx.Sign(t, kp)
	if err != nil {
		return nil, err
	}
	f.log.Debug().Str("type", string(t.TransactionType)).Str("hash", signed.Hash).Msg("Submitting transaction")
	return f.gateway.SubmitAndWait(ctx, signed, t.LastLedgerSequence)
}

// SignMessage signs message as the memo of a never-submitted AccountSet.
// The ledger has no message signing primitive; verify the result with tx.VerifyMessage.
func (f *Faucet) SignMessage(ctx context.Context, message string) (*model.SignedMessage, error) {
	_, kp, err := f.identity()
	if err != nil {
		return nil, err
	}
	return tx.SignMessage(kp, message)
}

// FundAccount asks the faucet for more test XRP. It fails on mainnet before any network call.
func (f *Faucet) FundAccount(ctx context.Context) (*model.Balance, error) {
	if err := f.requireFaucet(); err != nil {
		return nil, err
	}
	w, _, err := f.identity()
	if err != nil {
		return nil, err
	}
	before, err := f.gateway.AccountInfo(ctx, w.Address)
	if err != nil {
		return nil, err
	}
	if _, err := f.faucet.Fund(ctx, w.Address, ""); err != nil {
		return nil, errors.Wrap(err, "failed to fund wallet")
	}
	if _, err := f.waitForFunds(ctx, w.Address, before.Drops); err != nil {
		return nil, err
	}
	return f.gateway.Balance(ctx, w.Address)
}

// TransactionHistory returns the latest transactions of address, the bound identity when empty
func (f *Faucet) TransactionHistory(ctx context.Context, address string, limit int) ([]model.AccountTransaction, error) {
	address, err := f.addressOr(ctx, address)
	if err != nil {
		return nil, err
	}
	return f.gateway.AccountTx(ctx, &model.HistoryRequest{Address: address, Limit: limit})
}

// TrustLines lists the trust lines of address, the bound identity when empty
func (f *Faucet) TrustLines(ctx context.Context, address string) ([]model.TrustLine, error) {
	address, err := f.addressOr(ctx, address)
	if err != nil {
		return nil, err
	}
	return f.gateway.AccountLines(ctx, address)
}

func (f *Faucet) addressOr(ctx context.Context, address string) (string, error) {
	if address != "" {
		if !crypto.IsValidAddress(address) {
			return "", errors.Errorf("invalid address %q", address)
		}
		return address, f.gateway.Connect(ctx)
	}
	w, _, err := f.identity()
	if err != nil {
		return "", err
	}
	return w.Address, nil
}

func (f *Faucet) requireFaucet() error {
	if _, ok := f.network.FaucetURL(); !ok {
		return errors.Wrapf(model.ErrConfig, "funding is only available on testnet, not %s", f.network)
	}
	if f.faucet == nil {
		return errors.Wrap(model.ErrConfig, "no faucet client configured")
	}
	return nil
}

func (f *Faucet) waitForFunds(ctx context.Context, address string, before uint64) (uint64, error) {
	return waitForFunds(ctx, f.clock, address, before, func(ctx context.Context) (uint64, bool, error) {
		state, err := f.gateway.AccountInfo(ctx, address)
		if err != nil {
			return 0, false, err
		}
		return state.Drops, state.Exists, nil
	})
}
