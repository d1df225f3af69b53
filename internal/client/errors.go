package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// Ledger error tokens handled explicitly
const (
	codeAccountNotFound = "actNotFound"
	codeTxnNotFound     = "txnNotFound"
)

// RPCError is an error reply from the ledger server
type RPCError struct {
	Code    string // error token, e.g. "actNotFound"
	Message string
}

func (e *RPCError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger error %s", e.Code)
	}
	return fmt.Sprintf("ledger error %s: %s", e.Code, e.Message)
}

// IsRPCError reports whether err carries the ledger error token code
func IsRPCError(err error, code string) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

// StatusError is a non-2xx reply from an HTTP API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the call may succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
