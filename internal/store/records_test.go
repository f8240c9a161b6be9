package store

import (
	"testing"
)

func TestInsertAndGetRecord(t *testing.T) {
	db := testDB(t)

	impact := 7
	sentiment := -0.4
	rec := &Record{
		ID:               "news:feed:42",
		SourceKind:       SourceNews,
		NativeID:         "42",
		RawContent:       "Chipmaker announces fab delay",
		Summary:          "Fab construction slips six months",
		StrategicInsight: "Supply tightness likely into next year",
		BusinessImpact:   &impact,
		SentimentScore:   &sentiment,
		Priority:         PriorityHigh,
		CapturedAt:       1700000000000,
		SenderOrSource:   "feed",
		ChannelSubtype:   "feed",
		SourceURL:        "https://example.com/article",
	}
	if err := db.InsertRecord(rec); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	got, err := db.GetRecord("news:feed:42")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Summary != rec.Summary {
		t.Errorf("summary = %q, want %q", got.Summary, rec.Summary)
	}
	if got.BusinessImpact == nil || *got.BusinessImpact != 7 {
		t.Errorf("business_impact = %v, want 7", got.BusinessImpact)
	}
	if got.SentimentScore == nil || *got.SentimentScore != -0.4 {
		t.Errorf("sentiment_score = %v, want -0.4", got.SentimentScore)
	}
	if got.ActionStatus != ActionNone {
		t.Errorf("action_status = %q, want NONE", got.ActionStatus)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	db := testDB(t)

	got, err := db.GetRecord("missing")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing record, got %+v", got)
	}
}

func TestExists(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "sms:9", SourceSMS, 1000)

	ok, err := db.Exists("sms:9")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("expected sms:9 to exist")
	}

	ok, err = db.Exists("sms:10")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("expected sms:10 to not exist")
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)

	err := db.InsertRecord(&Record{
		ID: "email:1", SourceKind: SourceEmail, NativeID: "1",
		RawContent: "Quarterly budget review scheduled",
		Summary:    "Budget review Thursday",
		Priority:   PriorityNormal, CapturedAt: 1000,
	})
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	err = db.InsertRecord(&Record{
		ID: "email:2", SourceKind: SourceEmail, NativeID: "2",
		RawContent: "Lunch menu for the week",
		Priority:   PriorityLow, CapturedAt: 2000,
	})
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	// Summary match
	results, err := db.Search("budget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Record.ID != "email:1" {
		t.Errorf("search budget = %d results, want email:1 only", len(results))
	}

	// Empty query matches all, newest first
	results, err = db.Search("")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("search empty = %d results, want 2", len(results))
	}
	if results[0].Record.ID != "email:2" {
		t.Errorf("first result = %s, want email:2 (newest first)", results[0].Record.ID)
	}
}

func TestGetContextualSymmetry(t *testing.T) {
	db := testDB(t)

	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	mustInsertRecord(t, db, "news:b", SourceNews, 2000)

	if err := db.InsertRelation("email:a", "news:b", RelationContext); err != nil {
		t.Fatalf("InsertRelation: %v", err)
	}

	// A single directed edge is visible from both endpoints.
	fromA, err := db.GetContextual("email:a")
	if err != nil {
		t.Fatalf("GetContextual a: %v", err)
	}
	if len(fromA) != 1 || fromA[0].ID != "news:b" {
		t.Errorf("contextual(a) = %v, want [news:b]", ids(fromA))
	}

	fromB, err := db.GetContextual("news:b")
	if err != nil {
		t.Fatalf("GetContextual b: %v", err)
	}
	if len(fromB) != 1 || fromB[0].ID != "email:a" {
		t.Errorf("contextual(b) = %v, want [email:a]", ids(fromB))
	}
}

func TestGetWithGraph(t *testing.T) {
	db := testDB(t)

	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	mustInsertRecord(t, db, "news:b", SourceNews, 2000)
	mustInsertRecord(t, db, "sms:c", SourceSMS, 3000)

	db.TagRecord("email:a", "project-x")
	db.InsertRelation("email:a", "news:b", RelationContext)
	db.InsertRelation("sms:c", "email:a", RelationContext)

	graph, err := db.GetWithGraph("email:a")
	if err != nil {
		t.Fatalf("GetWithGraph: %v", err)
	}
	if graph == nil {
		t.Fatal("expected graph, got nil")
	}
	if len(graph.Tags) != 1 || graph.Tags[0].Name != "project-x" {
		t.Errorf("tags = %v, want [project-x]", graph.Tags)
	}
	// Outgoing edges only
	if len(graph.Related) != 1 || graph.Related[0].ID != "news:b" {
		t.Errorf("related = %v, want [news:b]", ids(graph.Related))
	}
}

func TestActionStateMachine(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)

	// NONE -> PENDING
	if err := db.UpdateAction("email:a", ActionPending, "draft reply"); err != nil {
		t.Fatalf("NONE -> PENDING: %v", err)
	}
	rec, _ := db.GetRecord("email:a")
	if rec.ActionStatus != ActionPending {
		t.Errorf("status = %q, want PENDING", rec.ActionStatus)
	}
	if rec.ActionDraft != "draft reply" {
		t.Errorf("draft = %q, want %q", rec.ActionDraft, "draft reply")
	}

	// PENDING -> COMPLETED, empty draft keeps the old one
	if err := db.UpdateAction("email:a", ActionCompleted, ""); err != nil {
		t.Fatalf("PENDING -> COMPLETED: %v", err)
	}
	rec, _ = db.GetRecord("email:a")
	if rec.ActionDraft != "draft reply" {
		t.Errorf("draft after empty update = %q, want kept", rec.ActionDraft)
	}

	// COMPLETED is terminal
	if err := db.UpdateAction("email:a", ActionPending, ""); err == nil {
		t.Error("expected error for COMPLETED -> PENDING, got nil")
	}
}

func TestDeleteOlderThan(t *testing.T) {
	db := testDB(t)

	now := int64(1700000000000)
	day := int64(24 * 60 * 60 * 1000)
	mustInsertRecord(t, db, "email:old", SourceEmail, now-2*day)
	mustInsertRecord(t, db, "email:mid", SourceEmail, now-day)
	mustInsertRecord(t, db, "email:new", SourceEmail, now)

	db.TagRecord("email:old", "stale")
	db.TagRecord("email:mid", "fresh")
	db.InsertRelation("email:old", "email:mid", RelationContext)
	db.InsertRelation("email:mid", "email:new", RelationContext)

	// 36h boundary: only the 2-day-old record goes.
	removed, err := db.DeleteOlderThan(now - 36*60*60*1000)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if ok, _ := db.Exists("email:old"); ok {
		t.Error("email:old should be deleted")
	}
	for _, id := range []string{"email:mid", "email:new"} {
		if ok, _ := db.Exists(id); !ok {
			t.Errorf("%s should survive", id)
		}
	}

	// Cascades: old record's tag association and relation are gone,
	// survivors keep theirs. The vocabulary entry itself stays.
	tags, _ := db.TagsFor("email:mid")
	if len(tags) != 1 {
		t.Errorf("email:mid tags = %d, want 1", len(tags))
	}
	if n, _ := db.CountRelations(); n != 1 {
		t.Errorf("relations after purge = %d, want 1", n)
	}
	vocab, _ := db.ListTags()
	if len(vocab) != 2 {
		t.Errorf("vocabulary = %d entries, want 2 (append-only)", len(vocab))
	}
}

func TestDeleteAll(t *testing.T) {
	db := testDB(t)

	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	db.TagRecord("email:a", "x")

	if err := db.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n, _ := db.CountRecords(); n != 0 {
		t.Errorf("records after reset = %d, want 0", n)
	}
	vocab, _ := db.ListTags()
	if len(vocab) != 0 {
		t.Errorf("vocabulary after reset = %d, want 0", len(vocab))
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
