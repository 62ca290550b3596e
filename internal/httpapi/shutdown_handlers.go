package httpapi

import (
	"crypto/subtle"
	"net"
	"net/http"
)

const shutdownTokenHeader = "X-Shutdown-Token"

// ShutdownHandler lets the desktop shell stop the engine it spawned.
type ShutdownHandler struct {
	Token string
	Stop  func()
}

func (h ShutdownHandler) Shutdown(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isLoopback(host) {
		WriteError(w, r, http.StatusForbidden, codeForbidden, "shutdown is local only")
		return
	}

	got := r.Header.Get(shutdownTokenHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, codeUnauthorized, "bad shutdown token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	go h.Stop()
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
