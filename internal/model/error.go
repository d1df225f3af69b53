package model

import "github.com/pkg/errors"

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var (
	// ErrConfig marks missing credentials or a capability requested on the wrong network. Never retried.
	ErrConfig = errors.New("configuration error")
	// ErrUnsupported marks an operation the active provider does not implement
	ErrUnsupported = errors.New("unsupported for this provider")
	// ErrNotConnected is returned by operations that need a connected wallet
	ErrNotConnected = errors.New("wallet not connected")
	// ErrAccountNotFound is the ledger's actNotFound, an account that never received the reserve
	ErrAccountNotFound = errors.New("account not found")
	// ErrMalformedResponse marks a relay/ledger/session reply that failed schema validation
	ErrMalformedResponse = errors.New("malformed response")

	ErrRequestRejected  = errors.New("signing request rejected")
	ErrRequestCancelled = errors.New("signing request cancelled")
	ErrRequestExpired   = errors.New("signing request expired")
)
