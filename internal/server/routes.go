package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jknam3036-svg/smart-news-engine/internal/channel"
	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/result"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pipeline == nil {
		notConfigured(w, "ingestion")
		return
	}

	var req struct {
		SourceKind     string `json:"source_kind"`
		ChannelSubtype string `json:"channel_subtype"`
		NativeID       string `json:"native_id"`
		Sender         string `json:"sender"`
		Subject        string `json:"subject"`
		Content        string `json:"content"`
		SourceURL      string `json:"source_url"`
		OccurredAt     int64  `json:"occurred_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.SourceKind == "" || req.NativeID == "" || req.Content == "" {
		http.Error(w, `{"error":"source_kind, native_id, and content required"}`, http.StatusBadRequest)
		return
	}

	created, err := s.deps.Pipeline.Ingest(r.Context(), ingest.RawEvent{
		SourceKind:     store.SourceKind(req.SourceKind),
		ChannelSubtype: req.ChannelSubtype,
		NativeID:       req.NativeID,
		Sender:         req.Sender,
		Subject:        req.Subject,
		Content:        req.Content,
		SourceURL:      req.SourceURL,
		OccurredAt:     req.OccurredAt,
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	id := ingest.DeriveID(store.SourceKind(req.SourceKind), req.ChannelSubtype, req.NativeID)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": id, "created": created})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notify == nil {
		notConfigured(w, "notification capture")
		return
	}

	var req struct {
		AppIdentifier   string `json:"app_identifier"`
		NotificationKey string `json:"notification_key"`
		Title           string `json:"title"`
		Text            string `json:"text"`
		PostTimeMillis  int64  `json:"post_time_millis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.AppIdentifier == "" || req.NotificationKey == "" {
		http.Error(w, `{"error":"app_identifier and notification_key required"}`, http.StatusBadRequest)
		return
	}

	accepted := s.deps.Notify.Offer(channel.Notification{
		AppIdentifier:   req.AppIdentifier,
		NotificationKey: req.NotificationKey,
		Title:           req.Title,
		Text:            req.Text,
		PostTimeMillis:  req.PostTimeMillis,
	})

	// 202 either way: the producer is fire-and-forget, dropped events are
	// visible in the response body only.
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": accepted})
}

func (s *Server) handleMailSync(w http.ResponseWriter, r *http.Request) {
	if s.deps.Mail == nil {
		notConfigured(w, "mail channel")
		return
	}

	ctx, cancel := withTimeout(r, 2*time.Minute)
	defer cancel()

	created, err := s.deps.Mail.Sync(ctx)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

func (s *Server) handleDeviceScan(w http.ResponseWriter, r *http.Request) {
	if s.deps.Device == nil {
		notConfigured(w, "device channel")
		return
	}

	ctx, cancel := withTimeout(r, 2*time.Minute)
	defer cancel()

	created, err := s.deps.Device.Scan(ctx)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	records, err := s.db.Search(query)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")

	rec, err := s.db.GetRecord(id)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, `{"error":"record not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")

	graph, err := s.db.GetWithGraph(id)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if graph == nil {
		http.Error(w, `{"error":"record not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")

	related, err := s.db.GetContextual(id)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"count":   len(related),
		"related": related,
	})
}

func (s *Server) handleUpdateAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")

	var req struct {
		Status string `json:"status"`
		Draft  string `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		http.Error(w, `{"error":"status required"}`, http.StatusBadRequest)
		return
	}

	if err := s.db.UpdateAction(id, store.ActionStatus(req.Status), req.Draft); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")

	if err := s.db.DeleteRecord(id); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.db.ListTags()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(tags), "tags": tags})
}

func (s *Server) handleRecordsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tagName")

	records, err := s.db.GetByTag(tag)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tag":     tag,
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleRetentionSweep(w http.ResponseWriter, r *http.Request) {
	if s.deps.Retention == nil {
		notConfigured(w, "retention")
		return
	}

	// An explicit threshold overrides the configured window.
	var removed int
	var err error
	if t := r.URL.Query().Get("older_than"); t != "" {
		threshold, perr := strconv.ParseInt(t, 10, 64)
		if perr != nil {
			http.Error(w, `{"error":"older_than must be epoch millis"}`, http.StatusBadRequest)
			return
		}
		removed, err = s.deps.Retention.PurgeOlderThan(threshold)
	} else {
		removed, err = s.deps.Retention.Sweep()
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Market == nil {
		notConfigured(w, "market provider")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, `{"error":"symbol parameter required"}`, http.StatusBadRequest)
		return
	}

	res := s.deps.Market.GetQuote(r.Context(), symbol)
	writeResult(w, res.Data, res.Err)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if s.deps.Market == nil {
		notConfigured(w, "market provider")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, `{"error":"symbol parameter required"}`, http.StatusBadRequest)
		return
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1day"
	}

	res := s.deps.Market.GetTimeSeries(r.Context(), symbol, interval)
	writeResult(w, res.Data, res.Err)
}

func (s *Server) handleRateSeries(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ecos == nil {
		notConfigured(w, "rate provider")
		return
	}
	stat := r.URL.Query().Get("stat")
	item := r.URL.Query().Get("item")
	if stat == "" || item == "" {
		http.Error(w, `{"error":"stat and item parameters required"}`, http.StatusBadRequest)
		return
	}
	cycle := r.URL.Query().Get("cycle")
	if cycle == "" {
		cycle = "M"
	}

	res := s.deps.Ecos.GetRateSeries(r.Context(), stat, item, cycle)
	writeResult(w, res.Data, res.Err)
}

// writeResult maps the integration taxonomy onto HTTP outcomes: rate
// limiting and network trouble read as transient, a bad key as "not
// configured", a bad symbol as the caller's fault.
func writeResult(w http.ResponseWriter, data any, err *result.Error) {
	if err == nil {
		writeJSON(w, http.StatusOK, data)
		return
	}

	status := http.StatusInternalServerError
	outcome := "permanent failure"
	switch err.Code {
	case result.RateLimitExceeded:
		status = http.StatusTooManyRequests
		outcome = "transient failure, retry later"
	case result.NetworkError:
		status = http.StatusBadGateway
		outcome = "transient failure, retry later"
	case result.APIKeyInvalid:
		status = http.StatusServiceUnavailable
		outcome = "not configured"
	case result.InvalidSymbol:
		status = http.StatusBadRequest
	case result.ParseError:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{
		"error":   err.Message,
		"code":    err.Code,
		"outcome": outcome,
	})
}

func withTimeout(r *http.Request, d time.Duration) (ctx context.Context, cancel func()) {
	return context.WithTimeout(r.Context(), d)
}
