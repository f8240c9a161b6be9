package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "records: normalized intelligence records",
		SQL: `
CREATE TABLE records (
    id                TEXT PRIMARY KEY,
    source_kind       TEXT NOT NULL CHECK (source_kind IN ('EMAIL', 'NEWS', 'SMS', 'ECONOMY', 'MESSENGER')),
    native_id         TEXT NOT NULL,

    -- Content
    raw_content       TEXT NOT NULL,
    summary           TEXT,
    strategic_insight TEXT,
    evidence          TEXT,
    published_at      TEXT,
    business_impact   INTEGER,
    sentiment_score   REAL,

    -- Classification
    priority          TEXT NOT NULL CHECK (priority IN ('LOW', 'NORMAL', 'HIGH', 'CRITICAL')),
    captured_at       INTEGER NOT NULL,

    -- Action state
    action_status     TEXT NOT NULL DEFAULT 'NONE' CHECK (action_status IN ('NONE', 'PENDING', 'COMPLETED', 'IGNORED')),
    suggested_action  TEXT,
    action_draft      TEXT,

    -- Provenance
    sender_or_source  TEXT NOT NULL DEFAULT '',
    channel_subtype   TEXT,
    source_url        TEXT
);

CREATE INDEX idx_records_captured ON records(captured_at DESC);
CREATE INDEX idx_records_kind     ON records(source_kind);
`,
	},
	{
		Version:     2,
		Description: "tags: shared vocabulary plus record associations",
		SQL: `
CREATE TABLE tags (
    name     TEXT PRIMARY KEY,
    category TEXT NOT NULL DEFAULT 'GENERAL' CHECK (category IN ('GENERAL', 'PROJECT', 'TOPIC', 'PERSON'))
);

CREATE TABLE record_tags (
    record_id TEXT NOT NULL,
    tag_name  TEXT NOT NULL,
    PRIMARY KEY (record_id, tag_name),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_name)  REFERENCES tags(name)
);

CREATE INDEX idx_record_tags_tag ON record_tags(tag_name);
`,
	},
	{
		Version:     3,
		Description: "record_relations: directed context graph edges",
		SQL: `
CREATE TABLE record_relations (
    source_id     TEXT NOT NULL,
    target_id     TEXT NOT NULL,
    relation_type TEXT NOT NULL CHECK (relation_type IN ('CAUSED_BY', 'REFERENCE', 'CONTEXT', 'ATTACHMENT')),
    PRIMARY KEY (source_id, target_id, relation_type),
    CHECK (source_id != target_id),
    FOREIGN KEY (source_id) REFERENCES records(id) ON DELETE CASCADE,
    FOREIGN KEY (target_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX idx_relations_target ON record_relations(target_id);
`,
	},
	{
		Version:     4,
		Description: "record_vectors: embeddings for similarity correlation",
		SQL: `
CREATE TABLE record_vectors (
    record_id  TEXT PRIMARY KEY,
    embedding  BLOB NOT NULL,
    model      TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
