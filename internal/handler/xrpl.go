package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/crypto"
	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const defaultHistoryLimit = 20

// XRPLHandler serves read-only ledger queries and test wallet generation
type XRPLHandler struct {
	gateway   *genie.Gateway
	newWallet func() (*genie.Genie, error)
	log       zerolog.Logger
}

// NewXRPLHandler creates a new XRPLHandler. newWallet builds a faucet wallet for /xrpl/generate.
func NewXRPLHandler(gateway *genie.Gateway, newWallet func() (*genie.Genie, error)) *XRPLHandler {
	return &XRPLHandler{
		gateway:   gateway,
		newWallet: newWallet,
		log:       log.With().Str("component", "xrpl_handler").Logger(),
	}
}

// AccountInfo handles POST /xrpl/account-info
// @Summary      Get account info
// @Description  Gets XRP balance and sequence of an account. Unfunded accounts answer 404.
// @Tags         xrpl
// @Accept       json
// @Produce      json
// @Param        request  body      model.AccountInfoRequest  true  "Account"
// @Success      200      {object}  model.AccountInfoResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /xrpl/account-info [post]
func (h *XRPLHandler) AccountInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.AccountInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if !crypto.IsValidAddress(req.Address) {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid XRPL address"))
		return
	}

	if err := h.gateway.Connect(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	state, err := h.gateway.AccountInfo(r.Context(), req.Address)
	if err != nil {
		h.log.Error().Err(err).Str("address", req.Address).Msg("Account info failed")
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	if !state.Exists {
		writeError(w, http.StatusNotFound, codeAccountNotFound, model.ErrAccountNotFound)
		return
	}

	writeJSON(w, http.StatusOK, model.AccountInfoResponse{
		Success:  true,
		Account:  state.Address,
		Balance:  strconv.FormatUint(state.Drops, 10),
		XRP:      common.DropsToXRP(state.Drops),
		Sequence: state.Sequence,
	})
}

// TransactionHistory handles GET /xrpl/transactions
// @Summary      Get account transactions
// @Description  Gets the latest transactions of an account, newest first
// @Tags         xrpl
// @Produce      json
// @Param        address  query     string  true   "Account address"
// @Param        limit    query     int     false  "Maximum number of transactions (1-400)"
// @Success      200      {array}   model.AccountTransaction
// @Router       /xrpl/transactions [get]
func (h *XRPLHandler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	req := model.HistoryRequest{Address: r.URL.Query().Get("address"), Limit: defaultHistoryLimit}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid limit"))
			return
		}
		req.Limit = limit
	}
	if !crypto.IsValidAddress(req.Address) {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid XRPL address"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	if err := h.gateway.Connect(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	txs, err := h.gateway.AccountTx(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// TrustLines handles GET /xrpl/trustlines
// @Summary      Get account trust lines
// @Tags         xrpl
// @Produce      json
// @Param        address  query     string  true  "Account address"
// @Success      200      {array}   model.TrustLine
// @Router       /xrpl/trustlines [get]
func (h *XRPLHandler) TrustLines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	if !crypto.IsValidAddress(address) {
		writeError(w, http.StatusBadRequest, codeBadRequest, errors.New("invalid XRPL address"))
		return
	}
	if err := h.gateway.Connect(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	lines, err := h.gateway.AccountLines(r.Context(), address)
	if err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// Generate handles POST /xrpl/generate
// @Summary      Generate and fund a test wallet
// @Description  Generates a new wallet and funds it from the testnet faucet. Not available on mainnet.
// @Tags         xrpl
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /xrpl/generate [post]
func (h *XRPLHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. should be POST", http.StatusMethodNotAllowed)
		return
	}

	g, err := h.newWallet()
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeConfig, err)
		return
	}
	defer g.Disconnect(r.Context())

	wallet, err := g.CreateWallet(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrConfig) {
			writeError(w, http.StatusBadRequest, codeConfig, err)
			return
		}
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}
	balance, err := g.GetBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, codeUpstream, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Success: true,
		Message: "Wallet generated and funded",
		Wallet:  wallet,
		Balance: balance.XRP,
	})
}
