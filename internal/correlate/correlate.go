// Package correlate creates graph edges between a freshly analyzed record
// and related existing records. The policy sits behind a narrow interface
// so the tag lookup can be swapped for similarity search without touching
// ingestion or the contextual query consumers.
package correlate

import (
	"context"
	"fmt"
	"log"

	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// defaultMaxLinks caps how many CONTEXT edges one correlation pass creates.
const defaultMaxLinks = 3

// Correlator links a stored record to related existing records.
type Correlator interface {
	Correlate(ctx context.Context, recordID string, analysis *enrich.AnalysisResult) error
}

// TagCorrelator is the baseline policy: take the first tag as the primary
// topical key and link against the most recent records sharing it.
type TagCorrelator struct {
	DB       *store.DB
	MaxLinks int
}

// NewTagCorrelator creates the tag-based policy.
func NewTagCorrelator(db *store.DB) *TagCorrelator {
	return &TagCorrelator{DB: db, MaxLinks: defaultMaxLinks}
}

// Correlate creates CONTEXT edges from recordID to up to MaxLinks of the
// most recent other records carrying the analysis's first tag. Edge
// creation is idempotent and never links a record to itself.
func (c *TagCorrelator) Correlate(_ context.Context, recordID string, analysis *enrich.AnalysisResult) error {
	if analysis == nil || len(analysis.Tags) == 0 {
		return nil
	}
	primaryTag := analysis.Tags[0]

	related, err := c.DB.GetByTag(primaryTag)
	if err != nil {
		return fmt.Errorf("correlate %s: %w", recordID, err)
	}

	max := c.MaxLinks
	if max <= 0 {
		max = defaultMaxLinks
	}

	linked := 0
	for _, rel := range related {
		if linked >= max {
			break
		}
		if rel.Record.ID == recordID {
			continue
		}
		if err := c.DB.InsertRelation(recordID, rel.Record.ID, store.RelationContext); err != nil {
			return fmt.Errorf("correlate %s: %w", recordID, err)
		}
		linked++
	}
	if linked > 0 {
		log.Printf("correlate: linked %s to %d records via tag %q", recordID, linked, primaryTag)
	}
	return nil
}
