package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type SecretsHandler struct {
	Set func(account, value string) error
}

type setSecretReq struct {
	Value string `json:"value"`
}

// Put stores an API key in the OS keychain: PUT /secrets/{account}.
func (h SecretsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid json")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidRequest, "value is required")
		return
	}

	if err := h.Set(chi.URLParam(r, "account"), req.Value); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeStoreFailed, "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
