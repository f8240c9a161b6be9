package store

import (
	"fmt"
)

// RelationType labels a directed edge between two records.
type RelationType string

const (
	RelationCausedBy   RelationType = "CAUSED_BY"
	RelationReference  RelationType = "REFERENCE"
	RelationContext    RelationType = "CONTEXT"
	RelationAttachment RelationType = "ATTACHMENT"
)

// Relation is a directed edge in the record graph. The same pair may
// carry multiple edges only if the relation type differs.
type Relation struct {
	SourceID string       `json:"source_id"`
	TargetID string       `json:"target_id"`
	Type     RelationType `json:"type"`
}

// InsertRelation creates an edge if it does not already exist. Self-loops
// are rejected here in addition to the schema constraint so correlation
// bugs surface as a clean error, not a constraint violation.
func (db *DB) InsertRelation(sourceID, targetID string, relType RelationType) error {
	if sourceID == targetID {
		return fmt.Errorf("insert relation: self-loop on %s", sourceID)
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO record_relations (source_id, target_id, relation_type)
		VALUES (?, ?, ?)
	`, sourceID, targetID, relType)
	if err != nil {
		return fmt.Errorf("insert relation %s -> %s: %w", sourceID, targetID, err)
	}
	db.notify()
	return nil
}

// RelationExists reports whether the exact edge is present.
func (db *DB) RelationExists(sourceID, targetID string, relType RelationType) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM record_relations
		WHERE source_id = ? AND target_id = ? AND relation_type = ?
	`, sourceID, targetID, relType).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("relation exists: %w", err)
	}
	return count > 0, nil
}

// RelationsFrom returns all outgoing edges of a record.
func (db *DB) RelationsFrom(sourceID string) ([]Relation, error) {
	rows, err := db.Query(`
		SELECT source_id, target_id, relation_type FROM record_relations
		WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("relations from %s: %w", sourceID, err)
	}
	defer rows.Close()

	var rels []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.SourceID, &r.TargetID, &r.Type); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// CountRelations returns the total number of edges in the graph.
func (db *DB) CountRelations() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM record_relations").Scan(&count)
	return count, err
}
