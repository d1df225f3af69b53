package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const wsHandshakeTimeout = 15 * time.Second

var errConnectionClosed = errors.New("websocket connection closed")

// WebSocketTransport multiplexes requests over one WebSocket connection, matching replies by id
type WebSocketTransport struct {
	url    string
	dialer *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[uint64]chan wsReply
	nextID  uint64

	writeMu sync.Mutex
}

type wsReply struct {
	result json.RawMessage
	err    error
}

type wsMessage struct {
	ID           *uint64         `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

// NewWebSocketTransport creates a transport for a ws:// or wss:// endpoint
func NewWebSocketTransport(url string) *WebSocketTransport {
	return &WebSocketTransport{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsHandshakeTimeout,
		},
	}
}

// Connect dials the endpoint and starts the read loop
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}

	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to dial %s", t.url)
	}
	t.conn = conn
	t.pending = make(map[uint64]chan wsReply)
	go t.readLoop(conn, t.pending)
	return nil
}

// IsOpen is false before Connect and after the connection drops or is closed
func (t *WebSocketTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close closes the connection and fails outstanding requests
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}

	t.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()
	return conn.Close()
}

// readLoop owns conn and the pending map created with it
func (t *WebSocketTransport) readLoop(conn *websocket.Conn, pending map[uint64]chan wsReply) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.failPending(conn, pending, err)
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("component", "ws_transport").Msg("Dropping undecodable message")
			continue
		}
		// stream messages carry no id
		if msg.ID == nil || (msg.Type != "" && msg.Type != "response") {
			continue
		}

		t.mu.Lock()
		ch, ok := pending[*msg.ID]
		delete(pending, *msg.ID)
		t.mu.Unlock()
		if !ok {
			continue
		}

		if msg.Status == "error" || msg.Error != "" {
			ch <- wsReply{err: &RPCError{Code: msg.Error, Message: msg.ErrorMessage}}
			continue
		}
		result, err := checkResult(msg.Result)
		ch <- wsReply{result: result, err: err}
	}
}

func (t *WebSocketTransport) failPending(conn *websocket.Conn, pending map[uint64]chan wsReply, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == conn {
		log.Warn().Err(cause).Str("component", "ws_transport").Msg("Connection lost")
		t.conn = nil
	}
	for id, ch := range pending {
		ch <- wsReply{err: errors.Wrap(errConnectionClosed, cause.Error())}
		delete(pending, id)
	}
}

// Request sends one command and waits for its reply
func (t *WebSocketTransport) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	cmd := map[string]any{}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request")
		}
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return nil, errors.Wrap(err, "params must be a JSON object")
		}
	}

	t.mu.Lock()
	conn := t.conn
	if conn == nil {
		t.mu.Unlock()
		return nil, errors.Wrap(model.ErrNotConnected, "websocket transport")
	}
	t.nextID++
	id := t.nextID
	ch := make(chan wsReply, 1)
	t.pending[id] = ch
	t.mu.Unlock()

	cmd["id"] = id
	cmd["command"] = method

	t.writeMu.Lock()
	err := conn.WriteJSON(cmd)
	t.writeMu.Unlock()
	if err != nil {
		t.forget(id)
		return nil, errors.Wrapf(err, "failed to send %s", method)
	}

	select {
	case reply := <-ch:
		return reply.result, reply.err
	case <-ctx.Done():
		t.forget(id)
		return nil, ctx.Err()
	}
}

func (t *WebSocketTransport) forget(id uint64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}
