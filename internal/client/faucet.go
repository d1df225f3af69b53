package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// FaucetClient funds accounts on a test network
type FaucetClient struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewFaucetClient creates a faucet client for url
func NewFaucetClient(url string) *FaucetClient {
	return &FaucetClient{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "faucet_client").Logger(),
	}
}

type fundRequest struct {
	Destination string `json:"destination"`
	XRPAmount   string `json:"xrpAmount,omitempty"`
	UserAgent   string `json:"userAgent"`
}

// FundResponse is the faucet reply
type FundResponse struct {
	Account struct {
		Address        string `json:"address"`
		ClassicAddress string `json:"classicAddress"`
		XAddress       string `json:"xAddress"`
	} `json:"account"`
	Amount          json.Number `json:"amount"`
	TransactionHash string      `json:"transactionHash"`
}

// Fund asks the faucet to send XRP to destination. An empty amount takes the faucet default.
func (f *FaucetClient) Fund(ctx context.Context, destination, xrpAmount string) (*FundResponse, error) {
	body, err := json.Marshal(fundRequest{Destination: destination, XRPAmount: xrpAmount, UserAgent: "xrp-genie"})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode faucet request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build faucet request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "faucet request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var res FundResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedResponse, "faucet: %v", err)
	}
	f.log.Info().Str("destination", destination).Str("amount", res.Amount.String()).Msg("Faucet funded account")
	return &res, nil
}
