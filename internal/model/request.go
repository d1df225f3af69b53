package model

import "time"

// RequestStatus is the state of a remote signing request.
//
//	CREATED -> PENDING -> SIGNED | REJECTED | CANCELLED | EXPIRED
type RequestStatus string

const (
	RequestCreated   RequestStatus = "CREATED"
	RequestPending   RequestStatus = "PENDING"
	RequestSigned    RequestStatus = "SIGNED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCancelled RequestStatus = "CANCELLED"
	RequestExpired   RequestStatus = "EXPIRED"
)

// Terminal reports whether no further transition can happen
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestSigned, RequestRejected, RequestCancelled, RequestExpired:
		return true
	}
	return false
}

// SigningRequest is a relay-side record of a transaction awaiting approval on another device.
// It is only ever mutated by the relay.
type SigningRequest struct {
	ID         string        `json:"uuid"`
	QRImageURL string        `json:"qrPng"`
	DeepLink   string        `json:"deepLink"`
	StatusURL  string        `json:"websocketStatus,omitempty"`
	Pushed     bool          `json:"pushed"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SigningRequestState is one observation of a signing request obtained by polling the relay.
// Signed=false is only a rejection when Resolved=true.
type SigningRequestState struct {
	ID               string        `json:"uuid"`
	Status           RequestStatus `json:"status"`
	Signed           bool          `json:"signed"`
	Resolved         bool          `json:"resolved"`
	Cancelled        bool          `json:"cancelled"`
	Expired          bool          `json:"expired"`
	Opened           bool          `json:"opened"`
	TxID             string        `json:"txid,omitempty"`
	Account          string        `json:"account,omitempty"`
	DispatchedResult string        `json:"dispatchedResult,omitempty"`
	ExpiresAt        time.Time     `json:"expiresAt,omitempty"`
}

// ClassifyRequest derives the state machine position from the relay flags.
// Expired and cancelled are terminal on their own. Otherwise only resolved=true ends the request,
// and signed decides between SIGNED and REJECTED.
func ClassifyRequest(signed, resolved, cancelled, expired, opened bool) RequestStatus {
	switch {
	case expired:
		return RequestExpired
	case cancelled:
		return RequestCancelled
	case resolved && signed:
		return RequestSigned
	case resolved:
		return RequestRejected
	case opened:
		return RequestPending
	}
	return RequestCreated
}
