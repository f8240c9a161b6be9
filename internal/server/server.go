// Package server exposes the engine over a local HTTP API: ingestion,
// record/graph queries, action updates, retention, market data, and a
// live change stream.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jknam3036-svg/smart-news-engine/internal/channel"
	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/market"
	"github.com/jknam3036-svg/smart-news-engine/internal/retention"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// Deps are the optional collaborators behind the API. A nil collaborator
// turns its routes into "not configured" responses rather than panics.
type Deps struct {
	Pipeline  *ingest.Pipeline
	Mail      *channel.MailAdapter
	Device    *channel.DeviceAdapter
	Notify    *channel.NotificationCapture
	Market    *market.TwelveData
	Ecos      *market.Ecos
	Retention *retention.Manager
}

// Server is the engine's HTTP API server.
type Server struct {
	db      *store.DB
	deps    Deps
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database, collaborators, and
// version string.
func New(db *store.DB, deps Deps, version string) *Server {
	s := &Server{
		db:      db,
		deps:    deps,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Ingestion
		r.Post("/events", s.handleIngestEvent)
		r.Post("/notifications", s.handleNotification)
		r.Post("/sync/mail", s.handleMailSync)
		r.Post("/scan/device", s.handleDeviceScan)

		// Records and graph
		r.Get("/search", s.handleSearch)
		r.Get("/records/{recordID}", s.handleGetRecord)
		r.Get("/records/{recordID}/graph", s.handleGetGraph)
		r.Get("/records/{recordID}/context", s.handleGetContext)
		r.Post("/records/{recordID}/action", s.handleUpdateAction)
		r.Delete("/records/{recordID}", s.handleDeleteRecord)

		// Tags
		r.Get("/tags", s.handleListTags)
		r.Get("/tags/{tagName}/records", s.handleRecordsByTag)

		// Retention
		r.Post("/retention/sweep", s.handleRetentionSweep)

		// Market data (display layer, outside the ingestion core)
		r.Get("/market/quote", s.handleQuote)
		r.Get("/market/series", s.handleTimeSeries)
		r.Get("/market/rates", s.handleRateSeries)

		// Live change stream
		r.Get("/stream", s.handleStream)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}
	count, _ := s.db.CountRecords()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"records": count,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notConfigured(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": what + " not configured",
	})
}
