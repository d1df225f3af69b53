// Package genie is one wallet interface over three signing backends: a local key funded
// from the test network faucet, remote approval in the Xaman app, and an embedded Web3Auth session.
package genie

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/provider"
)

// Config selects exactly one backend. Settings for any other backend are rejected.
type Config struct {
	Provider ProviderKind
	Network  Network
	// RPCURL overrides the network's public endpoint (ws://, wss:// or http(s)://)
	RPCURL string
	// FaucetURL overrides the test network faucet
	FaucetURL string

	// Seed imports an existing identity (faucet only)
	Seed string
	// KeyType of generated identities (faucet only)
	KeyType KeyType

	Xaman    *XamanConfig
	Web3Auth *Web3AuthConfig
}

// XamanConfig holds the relay credentials
type XamanConfig struct {
	APIKey    string
	APISecret string
	// BaseURL overrides the platform API root
	BaseURL      string
	PollInterval time.Duration
	MaxRetries   int
}

// Web3AuthConfig holds the embedded session settings
type Web3AuthConfig struct {
	ClientID string
	// Environment is dev or production (sapphire_devnet / sapphire_mainnet are accepted as well)
	Environment string
	// BridgeURL is the HTTP bridge to the browser-resident session
	BridgeURL string
	// IDToken is the federated login token sent to the bridge
	IDToken           string
	RequestPrivateKey bool
}

type options struct {
	gateway  *client.XRPLClient
	relay    provider.Relay
	sessions client.SessionProvider
	faucet   *client.FaucetClient
	clock    clock.Clock
	metrics  *metrics.Metrics
	notify   provider.NotifyFunc
	interval time.Duration
}

// Option customises how New wires the backend
type Option func(*options)

// WithGateway uses an existing ledger client instead of dialing Config.RPCURL
func WithGateway(g *Gateway) Option {
	return func(o *options) { o.gateway = g }
}

// WithRelay replaces the Xaman platform client
func WithRelay(r provider.Relay) Option {
	return func(o *options) { o.relay = r }
}

// WithSessionProvider replaces the Web3Auth bridge
func WithSessionProvider(p client.SessionProvider) Option {
	return func(o *options) { o.sessions = p }
}

// WithFaucet replaces the faucet client
func WithFaucet(f *client.FaucetClient) Option {
	return func(o *options) { o.faucet = f }
}

// WithClock sets the clock used by polling loops
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMetrics records ledger, submission and relay counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithNotify is called with every remote signing request right after it is created
func WithNotify(fn NotifyFunc) Option {
	return func(o *options) { o.notify = fn }
}

// WithPollInterval sets how often pending transactions and signing requests are polled
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// Genie is the wallet facade. It owns one backend and one ledger connection.
type Genie struct {
	kind    ProviderKind
	network Network
	gateway *client.XRPLClient
	backend provider.Provider
	log     zerolog.Logger
}

// New validates cfg and builds the selected backend. Missing credentials fail here, not on first use.
func New(cfg Config, opts ...Option) (*Genie, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	g := &Genie{
		kind:    cfg.Provider,
		network: cfg.Network,
		log:     log.With().Str("component", "genie").Str("provider", string(cfg.Provider)).Logger(),
	}

	// Ledger connection
	g.gateway = o.gateway
	if g.gateway == nil {
		url := cfg.RPCURL
		if url == "" {
			url = cfg.Network.WebSocketURL()
		}
		gwOpts := []client.Option{client.WithMetrics(o.metrics)}
		if o.clock != nil {
			gwOpts = append(gwOpts, client.WithClock(o.clock))
		}
		if o.interval > 0 {
			gwOpts = append(gwOpts, client.WithPollInterval(o.interval))
		}
		g.gateway = client.NewXRPLClient(url, gwOpts...)
	}

	// Faucet, test network only
	faucet := o.faucet
	if faucet == nil {
		if url := cfg.FaucetURL; url != "" {
			faucet = client.NewFaucetClient(url)
		} else if url, ok := cfg.Network.FaucetURL(); ok {
			faucet = client.NewFaucetClient(url)
		}
	}

	var err error
	switch cfg.Provider {
	case ProviderFaucet:
		g.backend, err = provider.NewFaucet(provider.FaucetConfig{
			Network: cfg.Network,
			Seed:    cfg.Seed,
			KeyType: cfg.KeyType,
			Clock:   o.clock,
		}, g.gateway, faucet)
	case ProviderXaman:
		g.backend, err = newXaman(cfg, o, g.gateway)
	case ProviderWeb3Auth:
		g.backend, err = newWeb3Auth(cfg, o, faucet)
	}
	if err != nil {
		return nil, err
	}

	g.log.Debug().Str("network", string(cfg.Network)).Str("rpc", g.gateway.URL()).Msg("Wallet created")
	return g, nil
}

func validate(cfg *Config) error {
	kind, ok := provider.ParseKind(string(cfg.Provider))
	if !ok {
		return errors.Wrapf(model.ErrConfig, "unknown provider %q", cfg.Provider)
	}
	cfg.Provider = kind
	if cfg.Network == "" {
		cfg.Network = Testnet
	}
	if err := cfg.Network.Validate(); err != nil {
		return err
	}

	foreign := func(name string) error {
		return errors.Wrapf(model.ErrConfig, "%s settings given for the %s provider", name, kind)
	}
	if kind != ProviderFaucet && (cfg.Seed != "" || cfg.KeyType != "") {
		return foreign("seed")
	}
	if kind != ProviderXaman && cfg.Xaman != nil {
		return foreign("xaman")
	}
	if kind != ProviderWeb3Auth && cfg.Web3Auth != nil {
		return foreign("web3auth")
	}

	switch kind {
	case ProviderXaman:
		if cfg.Xaman == nil || cfg.Xaman.APIKey == "" || cfg.Xaman.APISecret == "" {
			return errors.Wrap(model.ErrConfig, "xaman requires an API key and an API secret")
		}
	case ProviderWeb3Auth:
		if cfg.Web3Auth == nil || cfg.Web3Auth.ClientID == "" {
			return errors.Wrap(model.ErrConfig, "web3auth requires a client id")
		}
		env, err := provider.NormalizeEnvironment(cfg.Web3Auth.Environment)
		if err != nil {
			return err
		}
		cfg.Web3Auth.Environment = env
	}
	return nil
}

func newXaman(cfg Config, o *options, gateway *client.XRPLClient) (*provider.Xaman, error) {
	relay := o.relay
	if relay == nil {
		var relayOpts []client.XummOption
		if cfg.Xaman.BaseURL != "" {
			relayOpts = append(relayOpts, client.WithXummBaseURL(cfg.Xaman.BaseURL))
		}
		xumm, err := client.NewXummClient(cfg.Xaman.APIKey, cfg.Xaman.APISecret, relayOpts...)
		if err != nil {
			return nil, err
		}
		relay = xumm
	}

	interval := cfg.Xaman.PollInterval
	if interval == 0 {
		interval = o.interval
	}
	return provider.NewXaman(provider.XamanConfig{
		Network: cfg.Network,
		Poller: provider.PollerConfig{
			Interval:   interval,
			MaxRetries: cfg.Xaman.MaxRetries,
			Clock:      o.clock,
		},
		Notify:  o.notify,
		Metrics: o.metrics,
	}, relay, gateway)
}

func newWeb3Auth(cfg Config, o *options, faucet *client.FaucetClient) (*provider.Web3Auth, error) {
	sessions := o.sessions
	if sessions == nil {
		bridgeCfg := client.Web3AuthBridgeConfig{
			BridgeURL:   cfg.Web3Auth.BridgeURL,
			ClientID:    cfg.Web3Auth.ClientID,
			Environment: cfg.Web3Auth.Environment,
			Network:     cfg.Network,
		}
		if cfg.Web3Auth.IDToken != "" {
			bridgeCfg.TokenSource = client.StaticToken(cfg.Web3Auth.IDToken)
		}
		bridge, err := client.NewWeb3AuthBridge(bridgeCfg)
		if err != nil {
			return nil, err
		}
		sessions = bridge
	}
	return provider.NewWeb3Auth(provider.Web3AuthConfig{
		Network:           cfg.Network,
		RequestPrivateKey: cfg.Web3Auth.RequestPrivateKey,
		Clock:             o.clock,
	}, sessions, faucet)
}

// Faucet creates a local-key wallet that funds new identities from the test network faucet
func Faucet(network Network, opts ...Option) (*Genie, error) {
	return New(Config{Provider: ProviderFaucet, Network: network}, opts...)
}

// Xaman creates a wallet whose transactions are approved in the Xaman app
func Xaman(apiKey, apiSecret string, network Network, opts ...Option) (*Genie, error) {
	return New(Config{
		Provider: ProviderXaman,
		Network:  network,
		Xaman:    &XamanConfig{APIKey: apiKey, APISecret: apiSecret},
	}, opts...)
}

// Web3Auth creates a wallet backed by an embedded Web3Auth session reached through bridgeURL
func Web3Auth(clientID, environment, bridgeURL string, network Network, opts ...Option) (*Genie, error) {
	return New(Config{
		Provider: ProviderWeb3Auth,
		Network:  network,
		Web3Auth: &Web3AuthConfig{ClientID: clientID, Environment: environment, BridgeURL: bridgeURL},
	}, opts...)
}

// Provider returns the active backend kind
func (g *Genie) Provider() ProviderKind { return g.kind }

// Network returns the network the wallet operates on
func (g *Genie) Network() Network { return g.network }

// Gateway returns the ledger client of the wallet
func (g *Genie) Gateway() *Gateway { return g.gateway }

// Connect binds an identity: imported or created (faucet), signed in (xaman) or logged in (web3auth)
func (g *Genie) Connect(ctx context.Context) (*Wallet, error) {
	w, err := g.backend.Connect(ctx)
	if err != nil {
		return nil, err
	}
	g.log.Info().Str("address", w.Address).Msg("Connected")
	return w, nil
}

// Disconnect releases the identity and the ledger connection
func (g *Genie) Disconnect(ctx context.Context) error {
	return g.backend.Disconnect(ctx)
}

// IsConnected reports whether an identity is bound
func (g *Genie) IsConnected() bool { return g.backend.IsConnected() }

// Wallet returns the bound identity, nil when disconnected
func (g *Genie) Wallet() *Wallet { return g.backend.Wallet() }

func unsupported(op string, kind ProviderKind) error {
	return errors.Wrapf(model.ErrUnsupported, "%s is not available for the %s provider", op, kind)
}

func onlyFor(op string, kind ProviderKind) error {
	return errors.Wrapf(model.ErrUnsupported, "%s is only available for the %s provider", op, kind)
}
