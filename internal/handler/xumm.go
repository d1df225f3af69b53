package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

// XummHandler creates and tracks Xaman signing requests
type XummHandler struct {
	wallet *genie.Genie
	log    zerolog.Logger
}

// NewXummHandler creates a new XummHandler. wallet must use the xaman provider.
func NewXummHandler(wallet *genie.Genie) (*XummHandler, error) {
	if wallet.Provider() != genie.ProviderXaman {
		return nil, errors.New("xumm handler needs a xaman wallet")
	}
	return &XummHandler{
		wallet: wallet,
		log:    log.With().Str("component", "xumm_handler").Logger(),
	}, nil
}

// SignIn handles POST /xumm/signin
// @Summary      Create sign-in request
// @Description  Creates a SignIn payload to be approved in the Xaman app
// @Tags         xumm
// @Produce      json
// @Success      200  {object}  model.SigningRequestResponse
// @Router       /xumm/signin [post]
func (h *XummHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	req, err := h.wallet.CreateSignInRequest(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Sign-in request failed")
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	h.respondRequest(w, req)
}

// Payment handles POST /xumm/payment
// @Summary      Create payment request
// @Description  Creates an XRP Payment payload to be approved in the Xaman app
// @Tags         xumm
// @Accept       json
// @Produce      json
// @Param        request  body      model.PayRequest  true  "Payment"
// @Success      200      {object}  model.SigningRequestResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /xumm/payment [post]
func (h *XummHandler) Payment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if req.FromAddress != "" && !crypto.IsValidAddress(req.FromAddress) {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid fromAddress"))
		return
	}
	if !crypto.IsValidAddress(req.ToAddress) {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid toAddress"))
		return
	}
	if _, err := common.XRPToDrops(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	payload, err := h.wallet.CreatePaymentRequestFrom(r.Context(), req.FromAddress, req.ToAddress, req.Amount)
	if err != nil {
		h.log.Error().Err(err).Str("to", req.ToAddress).Msg("Payment request failed")
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	h.respondRequest(w, payload)
}

// Status handles POST /xumm/status
// @Summary      Get signing request status
// @Tags         xumm
// @Accept       json
// @Produce      json
// @Param        request  body      model.StatusRequest  true  "Payload UUID"
// @Success      200      {object}  model.StatusResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /xumm/status [post]
func (h *XummHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if _, err := uuid.Parse(req.PayloadUUID); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid payloadUuid"))
		return
	}

	state, err := h.wallet.CheckRequestStatus(r.Context(), req.PayloadUUID)
	if err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Payload: state})
}

func (h *XummHandler) respondRequest(w http.ResponseWriter, req *model.SigningRequest) {
	qr, err := h.wallet.QRCode(req)
	if err != nil {
		// the relay's own QR image is still usable
		h.log.Warn().Err(err).Str("uuid", req.ID).Msg("QR encoding failed")
	}
	writeJSON(w, http.StatusOK, model.SigningRequestResponse{Success: true, Payload: req, QR: qr})
}
