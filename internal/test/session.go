package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/client"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

// FakeSession is an embedded wallet session that signs with its own key and submits
// straight into a FakeLedger. It is both the SessionProvider and the Session.
type FakeSession struct {
	ledger  *FakeLedger
	wallet  *model.Wallet
	keypair *crypto.Keypair

	mu       sync.Mutex
	loggedIn bool
	logins   int
	logouts  int
	// FailLogin makes Login fail
	FailLogin bool
}

// NewFakeSession creates a session owning a fresh ed25519 account
func NewFakeSession(ledger *FakeLedger) *FakeSession {
	w, kp, err := crypto.GenerateWallet(crypto.Ed25519, model.NetworkTestnet)
	if err != nil {
		panic(err)
	}
	return &FakeSession{ledger: ledger, wallet: w, keypair: kp}
}

// Address is the account the session controls
func (s *FakeSession) Address() string { return s.wallet.Address }

// PrivateKey is the key the session hands out on request
func (s *FakeSession) PrivateKey() string { return s.wallet.PrivateKey }

// LoggedIn reports whether a session is open
func (s *FakeSession) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Logins and Logouts count session transitions
func (s *FakeSession) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *FakeSession) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

// Login opens the session
func (s *FakeSession) Login(ctx context.Context) (client.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLogin {
		return nil, errors.New("user closed the login popup")
	}
	s.loggedIn = true
	s.logins++
	return s, nil
}

// Logout closes the session
func (s *FakeSession) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	s.logouts++
	return nil
}

// Request serves the session methods used by the embedded backend
func (s *FakeSession) Request(ctx context.Context, method string, params, out any) error {
	if !s.LoggedIn() {
		return &client.SessionError{Code: 4100, Message: "not logged in"}
	}
	var p struct {
		Account     string          `json:"account"`
		Message     string          `json:"message"`
		Transaction json.RawMessage `json:"transaction"`
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
	}

	var result any
	switch method {
	case "xrpl_getAccounts":
		result = []string{s.wallet.Address}
	case "private_key":
		result = s.wallet.PrivateKey
	case "account_info", "account_lines":
		raw, _ := json.Marshal(map[string]string{"account": p.Account})
		res, rerr := s.ledger.dispatch(method, raw)
		if rerr != nil {
			return &client.SessionError{Code: -32000, Message: rerr.code}
		}
		result = res
	case "xrpl_submitTransaction":
		res, err := s.submit(p.Transaction)
		if err != nil {
			return &client.SessionError{Code: -32603, Message: err.Error()}
		}
		result = res
	case "xrpl_signMessage":
		signed, err := tx.SignMessage(s.keypair, p.Message)
		if err != nil {
			return err
		}
		result = signed
	default:
		return &client.SessionError{Code: -32601, Message: "method not found: " + method}
	}

	if out == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *FakeSession) submit(raw json.RawMessage) (map[string]any, error) {
	var t tx.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, errors.Wrap(err, "invalid transaction")
	}
	if t.Account == "" {
		t.Account = s.wallet.Address
	}

	info, rerr := s.ledger.dispatch("account_info", json.RawMessage(`{"account":"`+t.Account+`"}`))
	if rerr != nil {
		return nil, errors.New(rerr.code)
	}
	data := info["account_data"].(map[string]any)
	t.Sequence = data["Sequence"].(uint32)
	t.Fee = strconv.FormatUint(s.ledger.BaseFee, 10)

	signed, err := tx.Sign(&t, s.keypair)
	if err != nil {
		return nil, err
	}
	res, rerr := s.ledger.dispatch("submit", json.RawMessage(`{"tx_blob":"`+signed.TxBlob+`"}`))
	if rerr != nil {
		return nil, errors.New(rerr.code)
	}
	code := res["engine_result"].(string)
	return map[string]any{
		"hash":      signed.Hash,
		"validated": true,
		"meta":      map[string]any{"TransactionResult": code},
	}, nil
}

// FakeBridge serves a SessionProvider over the HTTP bridge protocol
type FakeBridge struct {
	Server *httptest.Server
	// Token, when set, must be presented as a bearer token
	Token string

	provider client.SessionProvider
	mu       sync.Mutex
	sessions map[string]client.Session
	Logins   []map[string]any
}

// NewFakeBridge starts a bridge in front of provider
func NewFakeBridge(provider client.SessionProvider) *FakeBridge {
	b := &FakeBridge{provider: provider, sessions: map[string]client.Session{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", b.handleLogin)
	mux.HandleFunc("POST /session/{id}/request", b.handleRequest)
	mux.HandleFunc("DELETE /session/{id}", b.handleLogout)
	b.Server = httptest.NewServer(mux)
	return b
}

// URL is the bridge root
func (b *FakeBridge) URL() string { return b.Server.URL }

// Close stops the server
func (b *FakeBridge) Close() { b.Server.Close() }

func (b *FakeBridge) authorized(w http.ResponseWriter, r *http.Request) bool {
	if b.Token != "" && r.Header.Get("Authorization") != "Bearer "+b.Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (b *FakeBridge) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	session, err := b.provider.Login(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	id := uuid.NewString()
	b.mu.Lock()
	b.sessions[id] = session
	b.Logins = append(b.Logins, body)
	b.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": id})
}

func (b *FakeBridge) session(w http.ResponseWriter, r *http.Request) client.Session {
	if !b.authorized(w, r) {
		return nil
	}
	b.mu.Lock()
	s, ok := b.sessions[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return nil
	}
	return s
}

func (b *FakeBridge) handleRequest(w http.ResponseWriter, r *http.Request) {
	s := b.session(w, r)
	if s == nil {
		return
	}
	var body struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var params any
	if len(body.Params) > 0 {
		params = body.Params
	}
	var result json.RawMessage
	err := s.Request(r.Context(), body.Method, params, &result)
	var sessErr *client.SessionError
	switch {
	case errors.As(err, &sessErr):
		_ = json.NewEncoder(w).Encode(map[string]any{"error": sessErr})
	case err != nil:
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": -32603, "message": err.Error()}})
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}
}

func (b *FakeBridge) handleLogout(w http.ResponseWriter, r *http.Request) {
	s := b.session(w, r)
	if s == nil {
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b.mu.Lock()
	delete(b.sessions, r.PathValue("id"))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
