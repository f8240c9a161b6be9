// Package ingest runs the ingestion pipeline: identity derivation,
// deduplication, enrichment, persistence, and correlation. Producers from
// independent channels feed it concurrently; the store is the only shared
// mutable resource.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/correlate"
	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// RawEvent is a channel-native event normalized by its adapter.
type RawEvent struct {
	SourceKind     store.SourceKind
	ChannelSubtype string
	NativeID       string
	Sender         string
	Subject        string // email only
	Content        string
	Preview        string // provider-given short preview, if any
	SourceURL      string
	OccurredAt     int64 // epoch millis; zero means "now"

	// PresetPriority lets adapters apply coarse pre-filters (e.g.
	// verification-code SMS → LOW) without enrichment.
	PresetPriority store.Priority
	SkipEnrich     bool
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	DB         *store.DB
	Analyzer   *enrich.Analyzer
	Correlator correlate.Correlator
	Keywords   []string

	mu sync.Mutex // serializes the exists-recheck + insert window
}

// New creates a Pipeline. Analyzer and Correlator may be nil; ingestion
// then stores raw content and creates no edges.
func New(db *store.DB, analyzer *enrich.Analyzer, correlator correlate.Correlator, keywords []string) *Pipeline {
	return &Pipeline{
		DB:         db,
		Analyzer:   analyzer,
		Correlator: correlator,
		Keywords:   keywords,
	}
}

// Ingest processes one event. It returns true if a record was created,
// false if the event was a duplicate and silently discarded. Store
// failures are returned: dropping a write would corrupt the dedup
// invariant. Enrichment failures are absorbed into a raw-content
// fallback and never fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, ev RawEvent) (bool, error) {
	if ev.NativeID == "" {
		return false, fmt.Errorf("ingest: event from %s has no native id", ev.SourceKind)
	}
	if ev.Content == "" {
		return false, fmt.Errorf("ingest: event %s/%s has no content", ev.SourceKind, ev.NativeID)
	}

	id := DeriveID(ev.SourceKind, ev.ChannelSubtype, ev.NativeID)

	// Cheap pre-check before doing any slow work.
	exists, err := p.DB.Exists(id)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	// Enrichment runs outside the insert lock: it is the slow part and
	// must not stall other channels. Best-effort, nil means fallback.
	var analysis *enrich.AnalysisResult
	if !ev.SkipEnrich && p.Analyzer != nil {
		analysis = p.Analyzer.Analyze(ctx, enrich.Request{
			SourceKind: ev.SourceKind,
			RawContent: ev.Content,
			Sender:     ev.Sender,
			Subject:    ev.Subject,
		}, enrich.Context{Keywords: p.Keywords})
	}

	rec := p.buildRecord(id, ev, analysis)

	// Recheck-and-insert under the lock: two concurrent deliveries of
	// the same native event must not both insert.
	p.mu.Lock()
	exists, err = p.DB.Exists(id)
	if err != nil {
		p.mu.Unlock()
		return false, err
	}
	if exists {
		p.mu.Unlock()
		return false, nil
	}
	err = p.DB.InsertRecord(rec)
	p.mu.Unlock()
	if err != nil {
		return false, err
	}

	if analysis != nil {
		for _, tag := range analysis.Tags {
			if err := p.DB.TagRecord(id, tag); err != nil {
				return true, err
			}
		}
	}

	// Correlation is best-effort: a failed pass leaves a valid, just
	// unlinked, record.
	if p.Correlator != nil {
		if err := p.Correlator.Correlate(ctx, id, analysis); err != nil {
			log.Printf("ingest: correlation failed for %s: %v", id, err)
		}
	}

	return true, nil
}

// IngestBatch processes events in adapter order. A bad event is logged
// and skipped, never aborting the batch; cancellation stops processing
// without rolling back events already stored.
func (p *Pipeline) IngestBatch(ctx context.Context, events []RawEvent) (created int, err error) {
	for _, ev := range events {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}

		ok, err := p.Ingest(ctx, ev)
		if err != nil {
			log.Printf("ingest: skipping %s/%s: %v", ev.SourceKind, ev.NativeID, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (p *Pipeline) buildRecord(id string, ev RawEvent, analysis *enrich.AnalysisResult) *store.Record {
	capturedAt := ev.OccurredAt
	if capturedAt == 0 {
		capturedAt = time.Now().UnixMilli()
	}

	// Fallback shape: raw content (or the provider preview) as summary
	// at NORMAL priority, unless the adapter pre-filtered.
	summary := ev.Preview
	if summary == "" {
		summary = ev.Content
	}
	priority := store.PriorityNormal
	if ev.PresetPriority != "" {
		priority = ev.PresetPriority
	}

	rec := &store.Record{
		ID:             id,
		SourceKind:     ev.SourceKind,
		NativeID:       ev.NativeID,
		RawContent:     ev.Content,
		Summary:        summary,
		Priority:       priority,
		CapturedAt:     capturedAt,
		ActionStatus:   store.ActionNone,
		SenderOrSource: ev.Sender,
		ChannelSubtype: ev.ChannelSubtype,
		SourceURL:      ev.SourceURL,
	}

	if analysis != nil {
		rec.Summary = analysis.Summary
		rec.StrategicInsight = analysis.StrategicInsight
		rec.BusinessImpact = analysis.BusinessImpact
		rec.SentimentScore = analysis.SentimentScore
		rec.Priority = analysis.Priority
		rec.SuggestedAction = analysis.SuggestedAction
		rec.ActionDraft = analysis.ActionDraft
		rec.Evidence = analysis.Evidence
		rec.PublishedAt = analysis.PublishedAt
	}
	return rec
}
