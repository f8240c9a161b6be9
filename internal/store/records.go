package store

import (
	"database/sql"
	"fmt"
)

// SourceKind identifies the channel a record was captured from.
type SourceKind string

const (
	SourceEmail     SourceKind = "EMAIL"
	SourceNews      SourceKind = "NEWS"
	SourceSMS       SourceKind = "SMS"
	SourceEconomy   SourceKind = "ECONOMY"
	SourceMessenger SourceKind = "MESSENGER"
)

// Priority is the classification level of a record.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ActionStatus tracks the record's action state machine:
// NONE → PENDING → {COMPLETED, IGNORED}.
type ActionStatus string

const (
	ActionNone      ActionStatus = "NONE"
	ActionPending   ActionStatus = "PENDING"
	ActionCompleted ActionStatus = "COMPLETED"
	ActionIgnored   ActionStatus = "IGNORED"
)

// Record is one normalized unit of captured intelligence.
type Record struct {
	ID         string     `json:"id"`
	SourceKind SourceKind `json:"source_kind"`
	NativeID   string     `json:"native_id"`

	RawContent       string   `json:"raw_content"`
	Summary          string   `json:"summary,omitempty"`
	StrategicInsight string   `json:"strategic_insight,omitempty"`
	Evidence         string   `json:"evidence,omitempty"`
	PublishedAt      string   `json:"published_at,omitempty"`
	BusinessImpact   *int     `json:"business_impact,omitempty"`
	SentimentScore   *float64 `json:"sentiment_score,omitempty"`

	Priority   Priority `json:"priority"`
	CapturedAt int64    `json:"captured_at"`

	ActionStatus    ActionStatus `json:"action_status"`
	SuggestedAction string       `json:"suggested_action,omitempty"`
	ActionDraft     string       `json:"action_draft,omitempty"`

	SenderOrSource string `json:"sender_or_source"`
	ChannelSubtype string `json:"channel_subtype,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
}

// RecordWithTags pairs a record with its tag vocabulary entries.
type RecordWithTags struct {
	Record Record `json:"record"`
	Tags   []Tag  `json:"tags"`
}

// RecordGraph is the one-hop expansion of a record: its tags and the
// records it points at via outgoing relations.
type RecordGraph struct {
	Record  Record   `json:"record"`
	Tags    []Tag    `json:"tags"`
	Related []Record `json:"related"`
}

const recordColumns = `id, source_kind, native_id, raw_content, summary, strategic_insight,
	evidence, published_at, business_impact, sentiment_score, priority, captured_at,
	action_status, suggested_action, action_draft, sender_or_source, channel_subtype, source_url`

// InsertRecord stores a record with conflict-replace semantics keyed by id.
// The ingestion pipeline's exists-check means a replace only happens when
// enrichment completes after a raw placeholder was stored.
func (db *DB) InsertRecord(r *Record) error {
	if r.ActionStatus == "" {
		r.ActionStatus = ActionNone
	}
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}

	_, err := db.Exec(`
		INSERT OR REPLACE INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''),
			?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, NULLIF(?, ''), NULLIF(?, ''))
	`, r.ID, r.SourceKind, r.NativeID, r.RawContent, r.Summary, r.StrategicInsight,
		r.Evidence, r.PublishedAt, r.BusinessImpact, r.SentimentScore,
		r.Priority, r.CapturedAt,
		r.ActionStatus, r.SuggestedAction, r.ActionDraft,
		r.SenderOrSource, r.ChannelSubtype, r.SourceURL)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	db.notify()
	return nil
}

// Exists reports whether a record with the given id is stored.
func (db *DB) Exists(id string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM records WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", id, err)
	}
	return count > 0, nil
}

// GetRecord returns a record by id, or nil if not found.
func (db *DB) GetRecord(id string) (*Record, error) {
	row := db.QueryRow("SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

// DeleteRecord removes a record. Tag associations, relations, and vectors
// cascade via foreign keys.
func (db *DB) DeleteRecord(id string) error {
	_, err := db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	db.notify()
	return nil
}

// DeleteOlderThan removes all records with captured_at below the given
// epoch-millis threshold. The delete and its cascades run in one
// transaction so readers never see a half-removed record.
func (db *DB) DeleteOlderThan(thresholdMillis int64) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin retention delete: %w", err)
	}

	result, err := tx.Exec("DELETE FROM records WHERE captured_at < ?", thresholdMillis)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("retention delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit retention delete: %w", err)
	}

	n, _ := result.RowsAffected()
	if n > 0 {
		db.notify()
	}
	return int(n), nil
}

// DeleteAll performs a full-store reset: records, associations, relations,
// vectors, and the tag vocabulary itself.
func (db *DB) DeleteAll() error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, stmt := range []string{
		"DELETE FROM record_relations",
		"DELETE FROM record_tags",
		"DELETE FROM record_vectors",
		"DELETE FROM records",
		"DELETE FROM tags",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("reset (%s): %w", stmt, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	db.notify()
	return nil
}

// Search returns records whose raw content or summary contains the given
// substring, case-insensitively, newest first. An empty query matches all.
func (db *DB) Search(query string) ([]RecordWithTags, error) {
	rows, err := db.Query(`
		SELECT `+recordColumns+` FROM records
		WHERE raw_content LIKE '%' || ? || '%'
		   OR COALESCE(summary, '') LIKE '%' || ? || '%'
		ORDER BY captured_at DESC
	`, query, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	return db.withTags(records)
}

// GetByTag returns records associated with the given tag, newest first.
func (db *DB) GetByTag(tagName string) ([]RecordWithTags, error) {
	rows, err := db.Query(`
		SELECT `+recordColumns+` FROM records
		INNER JOIN record_tags ON records.id = record_tags.record_id
		WHERE record_tags.tag_name = ?
		ORDER BY records.captured_at DESC
	`, tagName)
	if err != nil {
		return nil, fmt.Errorf("get by tag %q: %w", tagName, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	return db.withTags(records)
}

// GetWithGraph returns a record with its tags and the records reachable
// via its outgoing relations. One-hop expansion only.
func (db *DB) GetWithGraph(id string) (*RecordGraph, error) {
	r, err := db.GetRecord(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	tags, err := db.TagsFor(id)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT `+recordColumns+` FROM records
		WHERE id IN (SELECT target_id FROM record_relations WHERE source_id = ?)
		ORDER BY captured_at DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get graph %s: %w", id, err)
	}
	defer rows.Close()

	related, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	return &RecordGraph{Record: *r, Tags: tags, Related: related}, nil
}

// GetContextual returns the records reachable by exactly one relation edge
// in either direction. This backs the "why did this happen" query: the
// union of both directions, deduplicated by the IN clause.
func (db *DB) GetContextual(id string) ([]Record, error) {
	rows, err := db.Query(`
		SELECT `+recordColumns+` FROM records
		WHERE id IN (
			SELECT target_id FROM record_relations WHERE source_id = ?
			UNION
			SELECT source_id FROM record_relations WHERE target_id = ?
		)
		ORDER BY captured_at DESC
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("get contextual %s: %w", id, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// allowedTransitions encodes the action state machine. Automated
// action-taking may proceed only from NONE or PENDING.
var allowedTransitions = map[ActionStatus][]ActionStatus{
	ActionNone:    {ActionPending, ActionCompleted, ActionIgnored},
	ActionPending: {ActionCompleted, ActionIgnored},
}

// UpdateAction moves a record through the action state machine and
// optionally replaces its action draft. Invalid transitions are rejected.
func (db *DB) UpdateAction(id string, status ActionStatus, draft string) error {
	r, err := db.GetRecord(id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("update action: record %s not found", id)
	}

	if r.ActionStatus != status {
		valid := false
		for _, next := range allowedTransitions[r.ActionStatus] {
			if next == status {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("update action: invalid transition %s -> %s for %s", r.ActionStatus, status, id)
		}
	}

	_, err = db.Exec(`
		UPDATE records SET action_status = ?, action_draft = COALESCE(NULLIF(?, ''), action_draft)
		WHERE id = ?
	`, status, draft, id)
	if err != nil {
		return fmt.Errorf("update action %s: %w", id, err)
	}
	db.notify()
	return nil
}

// CountRecords returns the total number of stored records.
func (db *DB) CountRecords() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

func (db *DB) withTags(records []Record) ([]RecordWithTags, error) {
	out := make([]RecordWithTags, 0, len(records))
	for _, r := range records {
		tags, err := db.TagsFor(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RecordWithTags{Record: r, Tags: tags})
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var summary, insight, evidence, publishedAt sql.NullString
	var suggestedAction, actionDraft, channelSubtype, sourceURL sql.NullString
	var impact sql.NullInt64
	var sentiment sql.NullFloat64

	err := row.Scan(&r.ID, &r.SourceKind, &r.NativeID, &r.RawContent,
		&summary, &insight, &evidence, &publishedAt, &impact, &sentiment,
		&r.Priority, &r.CapturedAt,
		&r.ActionStatus, &suggestedAction, &actionDraft,
		&r.SenderOrSource, &channelSubtype, &sourceURL)
	if err != nil {
		return nil, err
	}

	r.Summary = summary.String
	r.StrategicInsight = insight.String
	r.Evidence = evidence.String
	r.PublishedAt = publishedAt.String
	r.SuggestedAction = suggestedAction.String
	r.ActionDraft = actionDraft.String
	r.ChannelSubtype = channelSubtype.String
	r.SourceURL = sourceURL.String
	if impact.Valid {
		v := int(impact.Int64)
		r.BusinessImpact = &v
	}
	if sentiment.Valid {
		v := sentiment.Float64
		r.SentimentScore = &v
	}
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
