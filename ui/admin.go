package ui

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CacheInvalidator drops memoized tables
type CacheInvalidator interface {
	Cached(location string) bool
	Invalidate(location string)
	InvalidateAll()
}

// Admin is the operations router, served on its own port
type Admin struct {
	router  *chi.Mux
	cache   CacheInvalidator
	source  string
	started time.Time
}

// NewAdmin creates the admin router for the loader cache of source
func NewAdmin(cache CacheInvalidator, source string) *Admin {
	a := &Admin{
		router:  chi.NewRouter(),
		cache:   cache,
		source:  source,
		started: time.Now(),
	}

	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(10 * time.Second))

	a.router.Get("/healthz", a.handleHealth)
	a.router.Post("/cache/invalidate", a.handleInvalidate)
	a.router.Mount("/debug", middleware.Profiler())
	return a
}

// Handler exposes the router for http.Server and tests
func (a *Admin) Handler() http.Handler {
	return a.router
}

func (a *Admin) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"source":        a.source,
		"source_cached": a.cache.Cached(a.source),
		"uptime":        time.Since(a.started).Round(time.Second).String(),
	})
}

// handleInvalidate drops one location given by ?url=, or every table when
// the parameter is "*".
func (a *Admin) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("url")
	switch location {
	case "*":
		a.cache.InvalidateAll()
	case "":
		location = a.source
		a.cache.Invalidate(location)
	default:
		a.cache.Invalidate(location)
	}
	writeJSON(w, http.StatusOK, map[string]string{"invalidated": location})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
