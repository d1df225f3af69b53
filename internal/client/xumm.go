package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const (
	xummAPI = "https://xumm.app/api/v1/platform"

	defaultXummRate  = 5 // requests per second
	defaultXummBurst = 5
)

// XummClient talks to the Xaman (XUMM) platform API that relays signing requests to the mobile wallet
type XummClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// XummOption configures an XummClient
type XummOption func(*XummClient)

// WithXummBaseURL points the client at another API root
func WithXummBaseURL(url string) XummOption {
	return func(c *XummClient) { c.baseURL = url }
}

// WithXummRateLimit limits calls to the API
func WithXummRateLimit(limit rate.Limit, burst int) XummOption {
	return func(c *XummClient) { c.limiter = rate.NewLimiter(limit, burst) }
}

// NewXummClient creates a relay client. Both credentials are required.
func NewXummClient(apiKey, apiSecret string, opts ...XummOption) (*XummClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.Wrap(model.ErrConfig, "xaman requires an API key and an API secret")
	}
	c := &XummClient{
		baseURL:   xummAPI,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(defaultXummRate, defaultXummBurst),
		log:     log.With().Str("component", "xumm_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type payloadOptions struct {
	Submit bool `json:"submit"`
	Expire int  `json:"expire,omitempty"` // minutes
}

type createPayloadRequest struct {
	TxJSON  any            `json:"txjson"`
	Options payloadOptions `json:"options"`
}

type createPayloadResponse struct {
	UUID string `json:"uuid"`
	Next struct {
		Always string `json:"always"`
	} `json:"next"`
	Refs struct {
		QRPng           string `json:"qr_png"`
		WebsocketStatus string `json:"websocket_status"`
	} `json:"refs"`
	Pushed bool `json:"pushed"`
}

// CreatePayload creates a signing request for txJSON. With submit set the relay submits the
// signed transaction to the ledger itself.
func (c *XummClient) CreatePayload(ctx context.Context, txJSON any, submit bool) (*model.SigningRequest, error) {
	var res createPayloadResponse
	if err := c.do(ctx, http.MethodPost, "/payload", createPayloadRequest{TxJSON: txJSON, Options: payloadOptions{Submit: submit}}, &res); err != nil {
		return nil, errors.Wrap(err, "failed to create signing request")
	}

	if _, err := uuid.Parse(res.UUID); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "signing request id %q", res.UUID)
	}
	if res.Next.Always == "" || res.Refs.QRPng == "" {
		return nil, errors.Wrap(model.ErrMalformedResponse, "signing request without references")
	}

	c.log.Info().Str("uuid", res.UUID).Bool("pushed", res.Pushed).Msg("Signing request created")
	return &model.SigningRequest{
		ID:         res.UUID,
		QRImageURL: res.Refs.QRPng,
		DeepLink:   res.Next.Always,
		StatusURL:  res.Refs.WebsocketStatus,
		Pushed:     res.Pushed,
		Status:     model.RequestCreated,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

type payloadStatusResponse struct {
	Meta struct {
		Exists    bool   `json:"exists"`
		UUID      string `json:"uuid"`
		Resolved  bool   `json:"resolved"`
		Signed    bool   `json:"signed"`
		Cancelled bool   `json:"cancelled"`
		Expired   bool   `json:"expired"`
		AppOpened bool   `json:"app_opened"`
	} `json:"meta"`
	Payload struct {
		TxType    string `json:"tx_type"`
		ExpiresAt string `json:"expires_at"`
	} `json:"payload"`
	Response struct {
		TxID             string `json:"txid"`
		Account          string `json:"account"`
		DispatchedResult string `json:"dispatched_result"`
	} `json:"response"`
}

// GetPayload fetches the current state of a signing request.
// A request the relay no longer knows is reported as expired.
func (c *XummClient) GetPayload(ctx context.Context, id string) (*model.SigningRequestState, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Errorf("invalid signing request id %q", id)
	}

	var res payloadStatusResponse
	if err := c.do(ctx, http.MethodGet, "/payload/"+id, nil, &res); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return &model.SigningRequestState{ID: id, Expired: true, Status: model.RequestExpired}, nil
		}
		return nil, errors.Wrapf(err, "failed to get signing request %s", id)
	}
	if !res.Meta.Exists {
		return &model.SigningRequestState{ID: id, Expired: true, Status: model.RequestExpired}, nil
	}
	if res.Meta.UUID != "" && res.Meta.UUID != id {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "asked for %s, relay answered %s", id, res.Meta.UUID)
	}

	state := &model.SigningRequestState{
		ID:               id,
		Signed:           res.Meta.Signed,
		Resolved:         res.Meta.Resolved,
		Cancelled:        res.Meta.Cancelled,
		Expired:          res.Meta.Expired,
		Opened:           res.Meta.AppOpened,
		TxID:             res.Response.TxID,
		Account:          res.Response.Account,
		DispatchedResult: res.Response.DispatchedResult,
	}
	if t, err := time.Parse(time.RFC3339, res.Payload.ExpiresAt); err == nil {
		state.ExpiresAt = t
	}
	state.Status = model.ClassifyRequest(state.Signed, state.Resolved, state.Cancelled, state.Expired, state.Opened)
	return state, nil
}

func (c *XummClient) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-API-Secret", c.apiSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "relay request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(model.ErrMalformedResponse, "relay: %v", err)
	}
	return nil
}
