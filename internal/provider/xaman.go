package provider

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

// NotifyFunc receives every signing request as soon as it is created, so the caller can show
// the QR code or deep link while the backend waits for approval
type NotifyFunc func(req *model.SigningRequest)

// XamanConfig configures the remote approval backend
type XamanConfig struct {
	Network model.Network
	Poller  PollerConfig
	Notify  NotifyFunc
	Metrics *metrics.Metrics
}

// Xaman is the remote approval backend. Transactions are pushed to the relay as signing
// requests and approved on the user's phone; the relay submits them once signed.
// Reads go through the gateway since they need no approval.
type Xaman struct {
	network model.Network
	relay   Relay
	poller  *Poller
	gateway *client.XRPLClient
	notify  NotifyFunc
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu     sync.Mutex
	wallet *model.Wallet
}

// NewXaman creates the backend over relay and gateway
func NewXaman(cfg XamanConfig, relay Relay, gateway *client.XRPLClient) (*Xaman, error) {
	if err := cfg.Network.Validate(); err != nil {
		return nil, err
	}
	if relay == nil {
		return nil, errors.Wrap(model.ErrConfig, "xaman provider needs a relay client")
	}
	if gateway == nil {
		return nil, errors.Wrap(model.ErrConfig, "xaman provider needs a ledger gateway")
	}
	if cfg.Poller.Metrics == nil {
		cfg.Poller.Metrics = cfg.Metrics
	}
	return &Xaman{
		network: cfg.Network,
		relay:   relay,
		poller:  NewPoller(relay, cfg.Poller),
		gateway: gateway,
		notify:  cfg.Notify,
		metrics: cfg.Metrics,
		log:     log.With().Str("component", "xaman_provider").Logger(),
	}, nil
}

func (x *Xaman) Kind() Kind { return KindXaman }

// Connect creates a sign-in request and waits until the user approves it.
// The wallet is the account that signed.
func (x *Xaman) Connect(ctx context.Context) (*model.Wallet, error) {
	if w := x.Wallet(); w != nil {
		return w, nil
	}
	if err := x.gateway.Connect(ctx); err != nil {
		return nil, err
	}
	req, err := x.CreateSignInRequest(ctx)
	if err != nil {
		return nil, err
	}
	state, err := x.AwaitRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	switch state.Status {
	case model.RequestSigned:
	case model.RequestExpired:
		return nil, errors.Wrapf(model.ErrRequestExpired, "sign-in %s", req.ID)
	case model.RequestCancelled:
		return nil, errors.Wrapf(model.ErrRequestCancelled, "sign-in %s", req.ID)
	default:
		return nil, errors.Wrapf(model.ErrRequestRejected, "sign-in %s", req.ID)
	}
	if !crypto.IsValidAddress(state.Account) {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "sign-in %s resolved without a valid account", req.ID)
	}

	w := &model.Wallet{Address: state.Account, ClassicAddress: state.Account}
	if xAddr, err := crypto.EncodeXAddress(state.Account, nil, x.network.IsTestnet()); err == nil {
		w.XAddress = xAddr
	}
	x.mu.Lock()
	x.wallet = w
	x.mu.Unlock()
	x.log.Info().Str("address", w.Address).Msg("Signed in")
	return w, nil
}

// Disconnect forgets the signed-in account. Open signing requests stay on the relay.
func (x *Xaman) Disconnect(ctx context.Context) error {
	x.mu.Lock()
	x.wallet = nil
	x.mu.Unlock()
	return x.gateway.Disconnect()
}

func (x *Xaman) IsConnected() bool {
	return x.Wallet() != nil
}

func (x *Xaman) Wallet() *model.Wallet {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.wallet
}

func (x *Xaman) address() (string, error) {
	w := x.Wallet()
	if w == nil {
		return "", model.ErrNotConnected
	}
	return w.Address, nil
}

func (x *Xaman) GetBalance(ctx context.Context) (*model.Balance, error) {
	addr, err := x.address()
	if err != nil {
		return nil, err
	}
	return x.gateway.Balance(ctx, addr)
}

// SendPayment asks the user to approve a payment and waits for the outcome
func (x *Xaman) SendPayment(ctx context.Context, intent *model.PaymentIntent) (*model.TransactionResult, error) {
	addr, err := x.address()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewPayment(addr, intent)
	if err != nil {
		return nil, err
	}
	return x.approve(ctx, t)
}

// EstablishTrustline asks the user to approve a TrustSet and waits for the outcome
func (x *Xaman) EstablishTrustline(ctx context.Context, intent *model.TrustLineIntent) (*model.TransactionResult, error) {
	addr, err := x.address()
	if err != nil {
		return nil, err
	}
	t, err := tx.NewTrustSet(addr, intent)
	if err != nil {
		return nil, err
	}
	return x.approve(ctx, t)
}

func (x *Xaman) approve(ctx context.Context, t *tx.Transaction) (*model.TransactionResult, error) {
	req, err := x.create(ctx, t, true)
	if err != nil {
		return nil, err
	}
	state, err := x.AwaitRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return resolutionResult(state), nil
}

// CreateSignInRequest creates a sign-in request without waiting for it
func (x *Xaman) CreateSignInRequest(ctx context.Context) (*model.SigningRequest, error) {
	return x.create(ctx, tx.NewSignIn(), false)
}

// CreatePaymentRequest creates an XRP payment request without waiting for it.
// An empty from means the signed-in account, or the signer's choice when nobody is signed in.
func (x *Xaman) CreatePaymentRequest(ctx context.Context, from, destination, amount string) (*model.SigningRequest, error) {
	if from == "" {
		if w := x.Wallet(); w != nil {
			from = w.Address
		}
	}
	t, err := tx.NewPayment(from, &model.PaymentIntent{Destination: destination, Amount: amount})
	if err != nil {
		return nil, err
	}
	return x.create(ctx, t, true)
}

// CreateTrustSetRequest creates a trust line request without waiting for it
func (x *Xaman) CreateTrustSetRequest(ctx context.Context, intent *model.TrustLineIntent) (*model.SigningRequest, error) {
	var addr string
	if w := x.Wallet(); w != nil {
		addr = w.Address
	}
	t, err := tx.NewTrustSet(addr, intent)
	if err != nil {
		return nil, err
	}
	return x.create(ctx, t, true)
}

func (x *Xaman) create(ctx context.Context, t *tx.Transaction, submit bool) (*model.SigningRequest, error) {
	req, err := x.relay.CreatePayload(ctx, t, submit)
	if err != nil {
		return nil, err
	}
	x.metrics.ObserveSigningRequest(string(t.TransactionType))
	x.log.Info().Str("uuid", req.ID).Str("type", string(t.TransactionType)).Msg("Awaiting approval")
	if x.notify != nil {
		x.notify(req)
	}
	return req, nil
}

// CheckRequestStatus polls the relay once
func (x *Xaman) CheckRequestStatus(ctx context.Context, id string) (*model.SigningRequestState, error) {
	if err := validRequestID(id); err != nil {
		return nil, err
	}
	return x.relay.GetPayload(ctx, id)
}

// AwaitRequest polls until the request reaches a terminal status or ctx is done
func (x *Xaman) AwaitRequest(ctx context.Context, id string) (*model.SigningRequestState, error) {
	if err := validRequestID(id); err != nil {
		return nil, err
	}
	return x.poller.Await(ctx, id)
}

func validRequestID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Errorf("invalid signing request id %q", id)
	}
	return nil
}

// resolutionResult maps a terminal request to a transaction result. A signed request
// the relay failed to apply on the ledger is reported with the ledger code.
func resolutionResult(state *model.SigningRequestState) *model.TransactionResult {
	switch state.Status {
	case model.RequestSigned:
		if state.DispatchedResult != "" {
			return model.ClassifyResult(state.TxID, state.DispatchedResult)
		}
		return &model.TransactionResult{Hash: state.TxID, Success: true}
	case model.RequestExpired:
		return model.FailedResult(model.ErrRequestExpired.Error())
	case model.RequestCancelled:
		return model.FailedResult(model.ErrRequestCancelled.Error())
	default:
		return model.FailedResult(model.ErrRequestRejected.Error())
	}
}
