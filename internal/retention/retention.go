// Package retention performs age-based deletion sweeps over the record
// store.
package retention

import (
	"fmt"
	"log"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// Manager runs retention sweeps. The clock is injectable so boundary
// behavior is testable.
type Manager struct {
	DB   *store.DB
	Days int

	now func() time.Time
}

// New creates a retention manager keeping records for the given number
// of days. Days at or below zero disables sweeping.
func New(db *store.DB, days int) *Manager {
	return &Manager{DB: db, Days: days, now: time.Now}
}

// Sweep deletes every record older than the configured retention window
// and returns how many were removed. Tags, relations, and vectors of
// deleted records go with them; shared vocabulary entries stay.
func (m *Manager) Sweep() (int, error) {
	if m.Days <= 0 {
		return 0, nil
	}
	threshold := m.now().Add(-time.Duration(m.Days) * 24 * time.Hour).UnixMilli()
	return m.PurgeOlderThan(threshold)
}

// PurgeOlderThan deletes records captured before the given epoch-millis
// threshold. Records exactly at the threshold survive.
func (m *Manager) PurgeOlderThan(thresholdMillis int64) (int, error) {
	n, err := m.DB.DeleteOlderThan(thresholdMillis)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	if n > 0 {
		log.Printf("retention: removed %d records older than %d", n, thresholdMillis)
	}
	return n, nil
}
