package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

const (
	// codeMaxLedger reports a transaction whose LastLedgerSequence passed before validation
	codeMaxLedger = "tefMAX_LEDGER"

	maxLookupFailures = 5
)

// Autofill sets Sequence, Fee, LastLedgerSequence and NetworkID on t. Fields already set are kept.
func (c *XRPLClient) Autofill(ctx context.Context, t *tx.Transaction) error {
	if t.Account == "" {
		return errors.New("cannot autofill a transaction without Account")
	}

	state, err := c.AccountInfo(ctx, t.Account)
	if err != nil {
		return err
	}
	if !state.Exists {
		return errors.Wrapf(model.ErrAccountNotFound, "account %s is not funded", t.Account)
	}
	if t.Sequence == 0 {
		t.Sequence = state.Sequence
	}

	if t.Fee == "" {
		fee, err := c.Fee(ctx)
		if err != nil {
			return err
		}
		t.Fee = strconv.FormatUint(fee, 10)
	}

	if t.LastLedgerSequence == 0 {
		current, err := c.LedgerCurrent(ctx)
		if err != nil {
			return err
		}
		t.LastLedgerSequence = current + ledgerOffset
	}

	networkID, err := c.networkIDOf(ctx)
	if err != nil {
		return err
	}
	if networkID > networkIDThreshold {
		t.NetworkID = networkID
	}
	return nil
}

// SubmitResult is the preliminary outcome reported by submit
type SubmitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	Accepted            bool   `json:"accepted"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

// Submit sends a signed blob. The result is preliminary, not final.
func (c *XRPLClient) Submit(ctx context.Context, txBlob string) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.request(ctx, "submit", map[string]string{"tx_blob": txBlob}, &res); err != nil {
		return nil, errors.Wrap(err, "failed to submit transaction")
	}
	if res.EngineResult == "" {
		return nil, errors.Wrap(model.ErrMalformedResponse, "submit without engine_result")
	}
	return &res, nil
}

// TxStatus is the lookup result of a submitted transaction
type TxStatus struct {
	Hash        string `json:"hash"`
	Validated   bool   `json:"validated"`
	LedgerIndex uint32 `json:"ledger_index"`
	Meta        *struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// Transaction looks up a transaction by hash. A transaction the server does not know
// yields an *RPCError with code txnNotFound.
func (c *XRPLClient) Transaction(ctx context.Context, hash string) (*TxStatus, error) {
	var res TxStatus
	if err := c.request(ctx, "tx", map[string]any{"transaction": hash, "binary": false}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// isFinalPreliminary reports result classes that can never make it into a ledger
func isFinalPreliminary(code string) bool {
	return strings.HasPrefix(code, "tem") || strings.HasPrefix(code, "tef") || strings.HasPrefix(code, "tel")
}

// SubmitAndWait submits a signed transaction and waits until it is in a validated ledger,
// its LastLedgerSequence passes, or ctx ends. Non-success ledger results are returned as
// success:false with the code preserved, never as errors.
func (c *XRPLClient) SubmitAndWait(ctx context.Context, signed *tx.Signed, lastLedger uint32) (*model.TransactionResult, error) {
	sub, err := c.Submit(ctx, signed.TxBlob)
	if err != nil {
		return nil, err
	}
	logger := c.log.With().Str("hash", signed.Hash).Logger()
	logger.Debug().Str("engine_result", sub.EngineResult).Msg("Transaction submitted")

	if isFinalPreliminary(sub.EngineResult) {
		c.metrics.ObserveSubmission(sub.EngineResult)
		logger.Info().Str("result", sub.EngineResult).Msg("Transaction rejected by server")
		return model.ClassifyResult(signed.Hash, sub.EngineResult), nil
	}

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for validation of %s", signed.Hash)
		case <-c.clock.After(c.pollInterval):
		}

		status, err := c.Transaction(ctx, signed.Hash)
		switch {
		case err == nil && status.Validated:
			if status.Meta == nil || status.Meta.TransactionResult == "" {
				return nil, errors.Wrap(model.ErrMalformedResponse, "validated transaction without meta")
			}
			code := status.Meta.TransactionResult
			c.metrics.ObserveSubmission(code)
			logger.Info().Str("result", code).Uint32("ledger", status.LedgerIndex).Msg("Transaction validated")
			return model.ClassifyResult(signed.Hash, code), nil
		case err == nil, IsRPCError(err, codeTxnNotFound):
			failures = 0
		default:
			if ctx.Err() != nil {
				return nil, errors.Wrapf(ctx.Err(), "waiting for validation of %s", signed.Hash)
			}
			failures++
			logger.Warn().Err(err).Int("failures", failures).Msg("Transaction lookup failed")
			if failures >= maxLookupFailures {
				return nil, errors.Wrapf(err, "giving up on %s", signed.Hash)
			}
			continue
		}

		if lastLedger == 0 {
			continue
		}
		current, err := c.LedgerCurrent(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Current ledger lookup failed")
			continue
		}
		if current > lastLedger {
			c.metrics.ObserveSubmission(codeMaxLedger)
			logger.Info().Uint32("last_ledger", lastLedger).Msg("Transaction expired")
			return model.ClassifyResult(signed.Hash, codeMaxLedger), nil
		}
	}
}
