package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// Session is an embedded key-management session. The session signs and submits;
// callers only translate intents into its request methods.
type Session interface {
	Request(ctx context.Context, method string, params, out any) error
	Logout(ctx context.Context) error
}

// SessionProvider performs the federated login that yields a Session
type SessionProvider interface {
	Login(ctx context.Context) (Session, error)
}

// SessionError is an error reply from the session provider
type SessionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *SessionError) Error() string {
	return "session error " + strings.TrimSpace(e.Message)
}

// Web3AuthBridgeConfig configures the HTTP bridge to a Web3Auth session
type Web3AuthBridgeConfig struct {
	BridgeURL   string
	ClientID    string
	Environment string // sapphire_devnet or sapphire_mainnet
	Network     model.Network
	// TokenSource supplies the federated login token sent with every bridge call
	TokenSource oauth2.TokenSource
}

// Web3AuthBridge opens Web3Auth sessions through an HTTP bridge to the browser-resident SDK
type Web3AuthBridge struct {
	cfg    Web3AuthBridgeConfig
	client *http.Client
	log    zerolog.Logger
}

// NewWeb3AuthBridge validates cfg and creates the bridge
func NewWeb3AuthBridge(cfg Web3AuthBridgeConfig) (*Web3AuthBridge, error) {
	if cfg.ClientID == "" {
		return nil, errors.Wrap(model.ErrConfig, "web3auth requires a client id")
	}
	if cfg.BridgeURL == "" {
		return nil, errors.Wrap(model.ErrConfig, "web3auth requires a bridge url")
	}
	if _, err := url.Parse(cfg.BridgeURL); err != nil {
		return nil, errors.Wrapf(model.ErrConfig, "invalid bridge url: %v", err)
	}

	httpClient := &http.Client{}
	if cfg.TokenSource != nil {
		httpClient = oauth2.NewClient(context.Background(), cfg.TokenSource)
	}
	httpClient.Timeout = 30 * time.Second

	return &Web3AuthBridge{
		cfg:    cfg,
		client: httpClient,
		log:    log.With().Str("component", "web3auth_bridge").Logger(),
	}, nil
}

// StaticToken wraps an already obtained login token
func StaticToken(idToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: idToken, TokenType: "Bearer"})
}

type loginRequest struct {
	ClientID       string `json:"clientId"`
	Environment    string `json:"environment"`
	ChainNamespace string `json:"chainNamespace"`
	Network        string `json:"network"`
}

// Login opens a session
func (b *Web3AuthBridge) Login(ctx context.Context) (Session, error) {
	var res struct {
		SessionID string `json:"sessionId"`
	}
	req := loginRequest{
		ClientID:       b.cfg.ClientID,
		Environment:    b.cfg.Environment,
		ChainNamespace: "xrpl",
		Network:        string(b.cfg.Network),
	}
	if err := b.call(ctx, http.MethodPost, "/session", req, &res); err != nil {
		return nil, errors.Wrap(err, "web3auth login failed")
	}
	if res.SessionID == "" {
		return nil, errors.Wrap(model.ErrMalformedResponse, "login without session id")
	}
	b.log.Info().Str("environment", b.cfg.Environment).Msg("Web3Auth session opened")
	return &bridgeSession{bridge: b, id: res.SessionID}, nil
}

type bridgeSession struct {
	bridge *Web3AuthBridge
	id     string
}

type sessionRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type sessionReply struct {
	Result json.RawMessage `json:"result"`
	Error  *SessionError   `json:"error"`
}

// Request calls method inside the session and decodes its result into out
func (s *bridgeSession) Request(ctx context.Context, method string, params, out any) error {
	var reply sessionReply
	if err := s.bridge.call(ctx, http.MethodPost, "/session/"+url.PathEscape(s.id)+"/request", sessionRequest{Method: method, Params: params}, &reply); err != nil {
		return errors.Wrapf(err, "session request %s", method)
	}
	if reply.Error != nil {
		return reply.Error
	}
	if out == nil {
		return nil
	}
	if len(reply.Result) == 0 {
		return errors.Wrapf(model.ErrMalformedResponse, "%s reply without result", method)
	}
	if err := json.Unmarshal(reply.Result, out); err != nil {
		return errors.Wrapf(model.ErrMalformedResponse, "%s: %v", method, err)
	}
	return nil
}

// Logout ends the session
func (s *bridgeSession) Logout(ctx context.Context) error {
	if err := s.bridge.call(ctx, http.MethodDelete, "/session/"+url.PathEscape(s.id), nil, nil); err != nil {
		return errors.Wrap(err, "web3auth logout failed")
	}
	return nil
}

func (b *Web3AuthBridge) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(b.cfg.BridgeURL, "/")+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "bridge request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(model.ErrMalformedResponse, "bridge: %v", err)
	}
	return nil
}
