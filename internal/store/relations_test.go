package store

import (
	"testing"
)

func TestInsertRelation(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	mustInsertRecord(t, db, "news:b", SourceNews, 2000)

	if err := db.InsertRelation("email:a", "news:b", RelationContext); err != nil {
		t.Fatalf("InsertRelation: %v", err)
	}

	ok, err := db.RelationExists("email:a", "news:b", RelationContext)
	if err != nil {
		t.Fatalf("RelationExists: %v", err)
	}
	if !ok {
		t.Error("expected relation to exist")
	}
}

func TestInsertRelationIdempotent(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	mustInsertRecord(t, db, "news:b", SourceNews, 2000)

	for i := 0; i < 3; i++ {
		if err := db.InsertRelation("email:a", "news:b", RelationContext); err != nil {
			t.Fatalf("InsertRelation #%d: %v", i, err)
		}
	}
	if n, _ := db.CountRelations(); n != 1 {
		t.Errorf("relations = %d, want 1", n)
	}
}

func TestInsertRelationSelfLoop(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)

	if err := db.InsertRelation("email:a", "email:a", RelationContext); err == nil {
		t.Error("expected error for self-loop, got nil")
	}
}

func TestSamePairDifferentType(t *testing.T) {
	db := testDB(t)
	mustInsertRecord(t, db, "email:a", SourceEmail, 1000)
	mustInsertRecord(t, db, "news:b", SourceNews, 2000)

	db.InsertRelation("email:a", "news:b", RelationContext)
	if err := db.InsertRelation("email:a", "news:b", RelationCausedBy); err != nil {
		t.Fatalf("second type: %v", err)
	}

	rels, err := db.RelationsFrom("email:a")
	if err != nil {
		t.Fatalf("RelationsFrom: %v", err)
	}
	if len(rels) != 2 {
		t.Errorf("relations = %d, want 2 (one per type)", len(rels))
	}
}
