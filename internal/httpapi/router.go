package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

var defaultOrigins = []string{"tauri://*", "http://localhost:*", "http://127.0.0.1:*"}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	log := d.Log.Named("http")

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(log))
	r.Use(AccessLog(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader, shutdownTokenHeader},
		ExposedHeaders: []string{requestIDHeader},
	}))

	r.Get("/health", HealthHandler{Feed: d.Feed}.Health)

	sh := ScheduleHandler{Feed: d.Feed, CfgVal: d.CfgVal}
	r.Get("/schedule", sh.List)
	r.Get("/schedule/meta", sh.Meta)
	r.Get("/jobs/{index}/links", sh.JobLinks)
	r.Get("/groups/resolve", sh.ResolveGroup)

	fh := FeedHandler{Feed: d.Feed, History: d.History, Log: log}
	r.Get("/feed/status", fh.Status)
	r.Post("/feed/refresh", fh.Refresh)

	r.Get("/events", EventsHandler{Hub: d.Hub}.ServeSSE)

	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		OnSaved:     d.OnConfigSaved,
		Hub:         d.Hub,
	}
	r.Get("/config", ch.Get)
	r.Put("/config", ch.Put)
	r.Get("/config/path", ch.Path)
	r.Get("/config/validate", ch.Validate)

	sec := SecretsHandler{CfgVal: d.CfgVal}
	r.Post("/api/secrets/feed-token", sec.SetFeedToken)
	r.Delete("/api/secrets/feed-token", sec.DeleteFeedToken)

	if d.ShutdownToken != "" && d.Shutdown != nil {
		r.Post("/shutdown", ShutdownHandler{Token: d.ShutdownToken, Stop: d.Shutdown}.Shutdown)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
