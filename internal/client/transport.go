package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// Transport carries ledger requests. Request returns the raw "result" object of a
// successful reply and an *RPCError for an error reply. IsOpen reports whether the
// underlying connection is usable; Connect on a transport that is not open redials.
type Transport interface {
	Connect(ctx context.Context) error
	Close() error
	IsOpen() bool
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// NewTransport picks the WebSocket transport for ws:// and wss:// URLs and JSON-RPC over HTTP otherwise
func NewTransport(url string) Transport {
	if strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://") {
		return NewWebSocketTransport(url)
	}
	return NewHTTPTransport(url)
}

// resultStatus is the part of every result object that signals failure
type resultStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
}

func checkResult(result json.RawMessage) (json.RawMessage, error) {
	if len(result) == 0 {
		return nil, errors.Wrap(model.ErrMalformedResponse, "reply has no result")
	}
	var status resultStatus
	if err := json.Unmarshal(result, &status); err != nil {
		return nil, errors.Wrap(model.ErrMalformedResponse, err.Error())
	}
	if status.Status == "error" || status.Error != "" {
		return nil, &RPCError{Code: status.Error, Message: status.ErrorMessage}
	}
	return result, nil
}

// HTTPTransport speaks JSON-RPC over HTTP. It is stateless, Connect and Close do nothing.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates a JSON-RPC transport
func NewHTTPTransport(url string) *HTTPTransport {
	return &HTTPTransport{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (t *HTTPTransport) Connect(ctx context.Context) error { return nil }

func (t *HTTPTransport) Close() error { return nil }

func (t *HTTPTransport) IsOpen() bool { return true }

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Request posts one JSON-RPC call
func (t *HTTPTransport) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "%s: %v", method, err)
	}
	return checkResult(envelope.Result)
}
