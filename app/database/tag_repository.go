package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ TagRepository = (*SQLTagRepository)(nil)

// SQLTagRepository stores tags in the relational schema. Names are unique
// and case-sensitive as stored.
type SQLTagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) *SQLTagRepository {
	return &SQLTagRepository{db: db}
}

func (r *SQLTagRepository) GetOrCreateTag(name string) (*Tag, error) {
	tag, err := r.GetTagByName(name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	// ON CONFLICT DO NOTHING plus a re-read keeps this safe against a
	// concurrent writer creating the same name.
	_, err = r.db.Exec(`
		INSERT INTO tags (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	tag, err = r.GetTagByName(name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("tag %q missing after insert", name)
	}

	return tag, nil
}

func (r *SQLTagRepository) GetTagByName(name string) (*Tag, error) {
	var tag Tag
	err := r.db.QueryRow(`
		SELECT id, name, created_at FROM tags WHERE name = ?
	`, name).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}

	return &tag, nil
}

func (r *SQLTagRepository) GetTagCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get tag count: %w", err)
	}
	return count, nil
}

func (r *SQLTagRepository) ListTags(limit int) ([]TagCount, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.name, t.created_at, COUNT(at.id) AS article_count
		FROM tags t
		LEFT JOIN article_tags at ON at.tag_id = t.id
		GROUP BY t.id, t.name, t.created_at
		ORDER BY article_count DESC, t.name ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tag TagCount
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.ArticleCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}
