package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/secrets"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

// Get returns the live config. API keys never live in it; they are only
// reported as present or missing.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	writeJSON(w, map[string]any{
		"config":      cur,
		"credentials": credentialState(),
	})
}

func credentialState() map[string]string {
	out := map[string]string{}
	for _, acct := range []string{secrets.AccountSearch, secrets.AccountLLM} {
		v, _ := secrets.Get(acct)
		if strings.TrimSpace(v) == "" {
			out[acct] = "missing"
		} else {
			out[acct] = "set"
		}
	}
	return out
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "trailing data")
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeSaveFailed, err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeReloadFailed, "saved but reload failed: "+err.Error())
		return
	}
	h.CfgVal.Store(saved)
	writeJSON(w, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	_, vr := config.NormalizeAndValidate(cur)
	writeJSON(w, vr)
}
