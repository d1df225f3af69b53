package model

// PayRequest represents request for POST /xumm/payment
type PayRequest struct {
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Amount      string `json:"amount"` // XRP, decimal
}

// StatusRequest represents request for POST /xumm/status
type StatusRequest struct {
	PayloadUUID string `json:"payloadUuid"`
}

// SigningRequestResponse represents response for the /xumm endpoints that create a request
type SigningRequestResponse struct {
	Success bool            `json:"success"`
	Payload *SigningRequest `json:"payload"`
	QR      string          `json:"qr,omitempty"` // base64 PNG of the deep link
}

// StatusResponse represents response for POST /xumm/status
type StatusResponse struct {
	Success bool                 `json:"success"`
	Payload *SigningRequestState `json:"payload"`
}
