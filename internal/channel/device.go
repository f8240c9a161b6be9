package channel

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// DeviceMessage is one entry from the platform message inbox.
type DeviceMessage struct {
	NativeID        string
	Address         string
	Body            string
	TimestampMillis int64
}

// Inbox reads the most recent messages from the platform store.
type Inbox interface {
	Recent(ctx context.Context, n int) ([]DeviceMessage, error)
}

// DeviceAdapter scans the platform inbox on demand and feeds the
// ingestion pipeline.
type DeviceAdapter struct {
	Inbox    Inbox
	Pipeline *ingest.Pipeline
	ScanN    int
}

// NewDeviceAdapter creates a device-message adapter scanning the most
// recent n messages per pass.
func NewDeviceAdapter(inbox Inbox, pipeline *ingest.Pipeline, n int) *DeviceAdapter {
	if n <= 0 {
		n = 50
	}
	return &DeviceAdapter{Inbox: inbox, Pipeline: pipeline, ScanN: n}
}

// Scan reads the recent messages and ingests each one. Messages carrying
// verification-code or account-number tokens are stored at LOW priority
// with the fixed filtered marker, without ever reaching the enrichment
// provider. Returns the number of new records created.
func (a *DeviceAdapter) Scan(ctx context.Context) (int, error) {
	msgs, err := a.Inbox.Recent(ctx, a.ScanN)
	if err != nil {
		return 0, fmt.Errorf("device scan: %w", err)
	}

	created := 0
	for _, m := range msgs {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}

		ev := ingest.RawEvent{
			SourceKind: store.SourceSMS,
			NativeID:   m.NativeID,
			Sender:     m.Address,
			Content:    m.Body,
			OccurredAt: m.TimestampMillis,
		}
		if ev.NativeID == "" {
			ev.NativeID = strconv.FormatInt(m.TimestampMillis, 10)
		}
		if enrich.ContainsSensitive(m.Body) {
			ev.SkipEnrich = true
			ev.PresetPriority = store.PriorityLow
			ev.Preview = enrich.FilteredSummary
		}

		ok, err := a.Pipeline.Ingest(ctx, ev)
		if err != nil {
			log.Printf("device scan: skipping %s: %v", m.NativeID, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}
