package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"livesched-engine/internal/feed"
	"livesched-engine/internal/store"
)

type FeedHandler struct {
	Feed    FeedService
	History RefreshHistory
	Log     *zap.Logger
}

type feedStatusResponse struct {
	feed.Status
	Recent []store.RefreshRecord `json:"recent,omitempty"`
}

// Status reports the poller state. ?recent=N adds the last N refresh records
// when a history store is configured.
func (h FeedHandler) Status(w http.ResponseWriter, r *http.Request) {
	out := feedStatusResponse{Status: h.Feed.Status()}

	if raw := r.URL.Query().Get("recent"); raw != "" && h.History != nil {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, codeBadRequest, "recent must be a non-negative integer")
			return
		}
		recs, err := h.History.RecentRefreshes(r.Context(), n)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, codeInternal, err.Error())
			return
		}
		out.Recent = recs
	}
	WriteJSON(w, http.StatusOK, out)
}

// Refresh starts a refresh in the background and returns at once.
// ?wait=1 runs it inline and answers with the resulting status.
func (h FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFrom(r.Context())

	if r.URL.Query().Get("wait") == "1" {
		err := h.Feed.RefreshOnce(r.Context(), reqID)
		out := map[string]any{"ok": err == nil, "status": h.Feed.Status()}
		if err != nil {
			out["error"] = err.Error()
		}
		WriteJSON(w, http.StatusOK, out)
		return
	}

	if h.Feed.Status().Running {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.Feed.RefreshOnce(ctx, reqID); err != nil && h.Log != nil {
			h.Log.Warn("manual refresh", zap.String("request_id", reqID), zap.Error(err))
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "request_id": reqID})
}
