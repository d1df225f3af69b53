package test

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// FakeRelay imitates the Xaman platform API. Every created signing request walks
// through a scripted sequence of statuses, one step per status poll.
type FakeRelay struct {
	Server *httptest.Server

	APIKey    string
	APISecret string

	mu       sync.Mutex
	script   []model.RequestStatus
	account  string
	dispatch string
	payloads map[string]*fakePayload
	order    []string
	failGets int
}

type fakePayload struct {
	txJSON  map[string]any
	options map[string]any
	script  []model.RequestStatus
	polls   int
	txid    string
}

// NewFakeRelay starts the relay. Requests resolve to SIGNED on the first poll unless scripted.
func NewFakeRelay(apiKey, apiSecret string) *FakeRelay {
	r := &FakeRelay{
		APIKey:    apiKey,
		APISecret: apiSecret,
		script:    []model.RequestStatus{model.RequestSigned},
		payloads:  map[string]*fakePayload{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/payload", r.handleCreate)
	mux.HandleFunc("/payload/", r.handleGet)
	r.Server = httptest.NewServer(mux)
	return r
}

// URL is the API root to configure the relay client with
func (r *FakeRelay) URL() string { return r.Server.URL }

// Close stops the server
func (r *FakeRelay) Close() { r.Server.Close() }

// Script sets the status sequence of requests created from now on.
// The last status repeats once the sequence is exhausted.
func (r *FakeRelay) Script(statuses ...model.RequestStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script = statuses
}

// SignWith sets the account reported as signer and the dispatched ledger result
func (r *FakeRelay) SignWith(account, dispatchedResult string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.account = account
	r.dispatch = dispatchedResult
}

// FailNextPolls answers the next n status polls with 503
func (r *FakeRelay) FailNextPolls(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failGets = n
}

// Polls returns how often the request id was polled
func (r *FakeRelay) Polls(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payloads[id]; ok {
		return p.polls
	}
	return 0
}

// Created returns the transaction JSON of every created request in creation order
func (r *FakeRelay) Created() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.payloads[id].txJSON)
	}
	return out
}

// TxID returns the transaction id a request resolves with
func (r *FakeRelay) TxID(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payloads[id]; ok {
		return p.txid
	}
	return ""
}

func (r *FakeRelay) authorized(w http.ResponseWriter, req *http.Request) bool {
	if req.Header.Get("X-API-Key") != r.APIKey || req.Header.Get("X-API-Secret") != r.APISecret {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 813, "message": "invalid credentials"}})
		return false
	}
	return true
}

func (r *FakeRelay) handleCreate(w http.ResponseWriter, req *http.Request) {
	if !r.authorized(w, req) {
		return
	}
	var body struct {
		TxJSON  map[string]any `json:"txjson"`
		Options map[string]any `json:"options"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.TxJSON == nil {
		http.Error(w, "txjson required", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	txid := make([]byte, 32)
	_, _ = rand.Read(txid)

	r.mu.Lock()
	r.payloads[id] = &fakePayload{
		txJSON:  body.TxJSON,
		options: body.Options,
		script:  append([]model.RequestStatus(nil), r.script...),
		txid:    strings.ToUpper(hex.EncodeToString(txid)),
	}
	r.order = append(r.order, id)
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"uuid": id,
		"next": map[string]any{"always": "https://xumm.app/sign/" + id},
		"refs": map[string]any{
			"qr_png":           "https://xumm.app/sign/" + id + "_q.png",
			"websocket_status": "wss://xumm.app/sign/" + id,
		},
		"pushed": false,
	})
}

func (r *FakeRelay) handleGet(w http.ResponseWriter, req *http.Request) {
	if !r.authorized(w, req) {
		return
	}
	id := strings.TrimPrefix(req.URL.Path, "/payload/")

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGets > 0 {
		r.failGets--
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	p, ok := r.payloads[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "payload not found"}})
		return
	}

	step := p.polls
	if step >= len(p.script) {
		step = len(p.script) - 1
	}
	status := p.script[step]
	p.polls++

	meta := map[string]any{
		"exists":     true,
		"uuid":       id,
		"resolved":   status == model.RequestSigned || status == model.RequestRejected,
		"signed":     status == model.RequestSigned,
		"cancelled":  status == model.RequestCancelled,
		"expired":    status == model.RequestExpired,
		"app_opened": status != model.RequestCreated,
	}
	response := map[string]any{"txid": nil, "account": nil, "dispatched_result": nil}
	if status == model.RequestSigned {
		txType, _ := p.txJSON["TransactionType"].(string)
		response["account"] = r.account
		if txType != "SignIn" {
			response["txid"] = p.txid
			if submit, _ := p.options["submit"].(bool); submit {
				response["dispatched_result"] = r.dispatch
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"meta":     meta,
		"payload":  map[string]any{"tx_type": p.txJSON["TransactionType"], "expires_at": "2030-01-01T00:00:00Z"},
		"response": response,
	})
}
