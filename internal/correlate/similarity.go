package correlate

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// SimilarityCorrelator is the stronger policy: embed the record's summary
// and link against the nearest stored records by cosine similarity. It
// honors the same edge-creation contract as TagCorrelator, so swapping
// policies changes nothing for the contextual query consumers.
type SimilarityCorrelator struct {
	DB        *store.DB
	Embedder  Embedder
	Threshold float64
	MaxLinks  int
}

// NewSimilarityCorrelator creates the embedding-based policy.
func NewSimilarityCorrelator(db *store.DB, embedder Embedder, threshold float64) *SimilarityCorrelator {
	if threshold <= 0 {
		threshold = 0.65
	}
	return &SimilarityCorrelator{
		DB:        db,
		Embedder:  embedder,
		Threshold: threshold,
		MaxLinks:  defaultMaxLinks,
	}
}

// Correlate embeds the analyzed summary, stores the vector for future
// lookups, and creates CONTEXT edges to the closest existing records
// above the similarity threshold.
func (c *SimilarityCorrelator) Correlate(ctx context.Context, recordID string, analysis *enrich.AnalysisResult) error {
	if c.Embedder == nil {
		return fmt.Errorf("correlate %s: no embedder configured", recordID)
	}

	text := ""
	if analysis != nil {
		text = analysis.Summary
	}
	if text == "" {
		rec, err := c.DB.GetRecord(recordID)
		if err != nil {
			return fmt.Errorf("correlate %s: %w", recordID, err)
		}
		if rec == nil {
			return fmt.Errorf("correlate: record %s not found", recordID)
		}
		text = rec.RawContent
	}

	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("correlate %s: embed: %w", recordID, err)
	}
	if err := c.DB.SaveVector(recordID, vec, c.Embedder.Model()); err != nil {
		return fmt.Errorf("correlate %s: %w", recordID, err)
	}

	vectors, err := c.DB.AllVectors()
	if err != nil {
		return fmt.Errorf("correlate %s: %w", recordID, err)
	}

	type match struct {
		recordID string
		sim      float64
	}
	var matches []match
	for _, v := range vectors {
		if v.RecordID == recordID {
			continue
		}
		sim := CosineSimilarity(vec, v.Embedding)
		if sim >= c.Threshold {
			matches = append(matches, match{v.RecordID, sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].sim > matches[j].sim
	})

	max := c.MaxLinks
	if max <= 0 {
		max = defaultMaxLinks
	}
	if len(matches) > max {
		matches = matches[:max]
	}

	for _, m := range matches {
		if err := c.DB.InsertRelation(recordID, m.recordID, store.RelationContext); err != nil {
			return fmt.Errorf("correlate %s: %w", recordID, err)
		}
	}
	if len(matches) > 0 {
		log.Printf("correlate: linked %s to %d records by similarity", recordID, len(matches))
	}
	return nil
}
