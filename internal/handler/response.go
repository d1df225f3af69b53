package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const (
	codeBadRequest      = "BAD_REQUEST"
	codeAccountNotFound = "ACCOUNT_NOT_FOUND"
	codeConfig          = "CONFIG_ERROR"
	codeUpstream        = "UPSTREAM_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}
