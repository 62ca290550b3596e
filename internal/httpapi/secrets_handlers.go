package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"livesched-engine/internal/config"
	"livesched-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setFeedTokenReq struct {
	Token string `json:"token"`
}

// SetFeedToken stores the bearer token under feeds.token_account. The
// poller picks it up on its next fetch.
func (h SecretsHandler) SetFeedToken(w http.ResponseWriter, r *http.Request) {
	var req setFeedTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "token is required")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetFeedToken(cfg.Feeds.TokenAccount, req.Token); err != nil {
		h.writeKeyringError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteFeedToken(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteFeedToken(cfg.Feeds.TokenAccount); err != nil {
		h.writeKeyringError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) writeKeyringError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, secrets.ErrNoAccount) {
		WriteError(w, r, http.StatusBadRequest, "no_token_account", "set feeds.token_account first")
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "keyring_error", "failed to store token: "+err.Error())
}
