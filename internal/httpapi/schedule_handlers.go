package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"livesched-engine/internal/config"
	"livesched-engine/internal/domain"
	"livesched-engine/internal/match"
	"livesched-engine/internal/schedule"
)

type ScheduleHandler struct {
	Feed   FeedService
	CfgVal *atomic.Value // stores config.Config
}

// List serves the filtered schedule grouped by time slot.
//
//	GET /schedule?q=&from=&to=&session=
//
// Dates are accepted as dd/mm/yyyy or yyyy-mm-dd.
func (h ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.location()

	f := domain.Filters{
		Query:   q.Get("q"),
		Session: strings.TrimSpace(q.Get("session")),
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.DateFrom}, {"to", &f.DateTo}} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		t, ok := parseQueryDate(raw, loc)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, codeBadRequest, "invalid "+p.name+" date: "+raw)
			return
		}
		*p.dst = &t
	}

	WriteJSON(w, http.StatusOK, h.Feed.Snapshot().View(f))
}

func (h ScheduleHandler) Meta(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Feed.Snapshot().Meta())
}

func (h ScheduleHandler) JobLinks(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "job index must be an integer")
		return
	}
	links, ok := h.Feed.Snapshot().Links(i)
	if !ok {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "no job at index "+strconv.Itoa(i))
		return
	}
	WriteJSON(w, http.StatusOK, links)
}

type resolveResponse struct {
	Store string            `json:"store"`
	Mode  match.Mode        `json:"mode"`
	Group *domain.GroupLink `json:"group"`
}

// ResolveGroup resolves a free-standing store name. Mode defaults to host.
func (h ScheduleHandler) ResolveGroup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("store"))
	if name == "" {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "store is required")
		return
	}
	mode := match.Mode(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode"))))
	if mode == "" {
		mode = match.ModeHost
	}
	if !mode.Valid() {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "mode must be brand or host")
		return
	}
	WriteJSON(w, http.StatusOK, resolveResponse{
		Store: name,
		Mode:  mode,
		Group: h.Feed.Snapshot().ResolveStore(name, mode),
	})
}

func (h ScheduleHandler) location() *time.Location {
	if h.CfgVal == nil {
		return time.Local
	}
	cfg, ok := h.CfgVal.Load().(config.Config)
	if !ok {
		return time.Local
	}
	return cfg.Location()
}

// parseQueryDate takes the sheet's day-first form or the ISO form date
// inputs send.
func parseQueryDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	return schedule.ParseDate(s, loc)
}
