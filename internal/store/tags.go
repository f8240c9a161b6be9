package store

import (
	"fmt"
)

// TagCategory classifies a tag within the shared vocabulary.
type TagCategory string

const (
	TagGeneral TagCategory = "GENERAL"
	TagProject TagCategory = "PROJECT"
	TagTopic   TagCategory = "TOPIC"
	TagPerson  TagCategory = "PERSON"
)

// Tag is a process-wide vocabulary entry, created on first use and only
// removed by a full-store reset.
type Tag struct {
	Name     string      `json:"name"`
	Category TagCategory `json:"category"`
}

// EnsureTag creates the tag if absent. Concurrent creation from two
// ingestion paths both succeed; category is last-writer-wins since it is
// a non-key field.
func (db *DB) EnsureTag(name string, category TagCategory) error {
	if category == "" {
		category = TagGeneral
	}
	_, err := db.Exec(`
		INSERT INTO tags (name, category) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET category = excluded.category
	`, name, category)
	if err != nil {
		return fmt.Errorf("ensure tag %q: %w", name, err)
	}
	return nil
}

// TagRecord associates a record with a tag, creating the tag on first
// use. Re-association is a no-op.
func (db *DB) TagRecord(recordID, tagName string) error {
	if err := db.EnsureTag(tagName, TagGeneral); err != nil {
		return err
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO record_tags (record_id, tag_name) VALUES (?, ?)
	`, recordID, tagName)
	if err != nil {
		return fmt.Errorf("tag record %s with %q: %w", recordID, tagName, err)
	}
	db.notify()
	return nil
}

// TagsFor returns the tags associated with a record.
func (db *DB) TagsFor(recordID string) ([]Tag, error) {
	rows, err := db.Query(`
		SELECT tags.name, tags.category FROM tags
		INNER JOIN record_tags ON tags.name = record_tags.tag_name
		WHERE record_tags.record_id = ?
		ORDER BY tags.name
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("tags for %s: %w", recordID, err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Category); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListTags returns the full tag vocabulary.
func (db *DB) ListTags() ([]Tag, error) {
	rows, err := db.Query("SELECT name, category FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Category); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
