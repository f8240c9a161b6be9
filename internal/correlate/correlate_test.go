package correlate

import (
	"context"
	"testing"

	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertTagged(t *testing.T, db *store.DB, id string, capturedAt int64, tags ...string) {
	t.Helper()
	err := db.InsertRecord(&store.Record{
		ID:         id,
		SourceKind: store.SourceNews,
		NativeID:   id,
		RawContent: "content " + id,
		Priority:   store.PriorityNormal,
		CapturedAt: capturedAt,
	})
	if err != nil {
		t.Fatalf("InsertRecord %s: %v", id, err)
	}
	for _, tag := range tags {
		if err := db.TagRecord(id, tag); err != nil {
			t.Fatalf("TagRecord %s %s: %v", id, tag, err)
		}
	}
}

func TestTagCorrelatorNoAnalysis(t *testing.T) {
	db := testDB(t)
	c := NewTagCorrelator(db)

	if err := c.Correlate(context.Background(), "x", nil); err != nil {
		t.Fatalf("nil analysis: %v", err)
	}
	if err := c.Correlate(context.Background(), "x", &enrich.AnalysisResult{}); err != nil {
		t.Fatalf("no tags: %v", err)
	}
	if n, _ := db.CountRelations(); n != 0 {
		t.Errorf("relations = %d, want 0", n)
	}
}

func TestTagCorrelatorLinksMostRecent(t *testing.T) {
	db := testDB(t)
	c := NewTagCorrelator(db)

	// Four older records share the tag; only the three most recent link.
	for i, id := range []string{"n1", "n2", "n3", "n4"} {
		insertTagged(t, db, id, int64((i+1)*1000), "semis")
	}
	insertTagged(t, db, "new", 9000, "semis")

	err := c.Correlate(context.Background(), "new", &enrich.AnalysisResult{Tags: []string{"semis"}})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	rels, _ := db.RelationsFrom("new")
	if len(rels) != 3 {
		t.Fatalf("links = %d, want 3", len(rels))
	}
	for _, r := range rels {
		if r.TargetID == "n1" {
			t.Error("linked the oldest record; most recent expected")
		}
		if r.TargetID == "new" {
			t.Error("self-relation created")
		}
		if r.Type != store.RelationContext {
			t.Errorf("type = %q, want CONTEXT", r.Type)
		}
	}
}

func TestTagCorrelatorFirstTagOnly(t *testing.T) {
	db := testDB(t)
	c := NewTagCorrelator(db)

	insertTagged(t, db, "a", 1000, "alpha")
	insertTagged(t, db, "b", 2000, "beta")
	insertTagged(t, db, "new", 3000, "alpha", "beta")

	err := c.Correlate(context.Background(), "new", &enrich.AnalysisResult{Tags: []string{"alpha", "beta"}})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	rels, _ := db.RelationsFrom("new")
	if len(rels) != 1 || rels[0].TargetID != "a" {
		t.Errorf("rels = %v, want link to a via first tag only", rels)
	}
}

func TestTagCorrelatorIdempotent(t *testing.T) {
	db := testDB(t)
	c := NewTagCorrelator(db)

	insertTagged(t, db, "a", 1000, "semis")
	insertTagged(t, db, "new", 2000, "semis")

	analysis := &enrich.AnalysisResult{Tags: []string{"semis"}}
	for i := 0; i < 3; i++ {
		if err := c.Correlate(context.Background(), "new", analysis); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	if n, _ := db.CountRelations(); n != 1 {
		t.Errorf("relations = %d, want 1", n)
	}
}
