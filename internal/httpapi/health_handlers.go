package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Feed FeedService
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if h.Feed != nil {
		out["jobs"] = h.Feed.Snapshot().Len()
	}
	WriteJSON(w, http.StatusOK, out)
}
