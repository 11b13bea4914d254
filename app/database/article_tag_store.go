package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ArticleTagStore maintains article↔tag associations and the pairwise tag
// co-occurrence counters.
//
// The original system re-ran the pairwise increment on every call, so
// re-ingesting an already-seen article inflated occurrence counts beyond
// the number of distinct articles sharing a pair. That behavior is kept as
// the default; WithIdempotentCoOccurrences switches the increment to run
// only when the call created at least one new association.
type ArticleTagStore struct {
	db         *DB
	tags       TagRepository
	idempotent bool
}

type ArticleTagStoreOption func(*ArticleTagStore)

func WithIdempotentCoOccurrences() ArticleTagStoreOption {
	return func(s *ArticleTagStore) {
		s.idempotent = true
	}
}

func NewArticleTagStore(db *DB, tags TagRepository, opts ...ArticleTagStoreOption) *ArticleTagStore {
	store := &ArticleTagStore{db: db, tags: tags}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// SaveArticleTags ensures tag rows and article↔tag associations for every
// name (in input order), then updates co-occurrence counters for every
// unordered pair of the supplied tags. An empty list is a no-op.
func (s *ArticleTagStore) SaveArticleTags(articleID int64, tagNames []string) error {
	if len(tagNames) == 0 {
		return nil
	}

	tagIDs := make([]int64, 0, len(tagNames))
	seen := make(map[int64]struct{}, len(tagNames))
	for _, name := range tagNames {
		if name == "" {
			continue
		}

		tag, err := s.tags.GetOrCreateTag(name)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		tagIDs = append(tagIDs, tag.ID)
	}

	created := 0
	for _, tagID := range tagIDs {
		wasCreated, err := s.ensureAssociation(articleID, tagID)
		if err != nil {
			return err
		}
		if wasCreated {
			created++
		}
	}

	if s.idempotent && created == 0 {
		return nil
	}

	return s.updateCoOccurrences(tagIDs)
}

func (s *ArticleTagStore) ensureAssociation(articleID, tagID int64) (bool, error) {
	var existingID int64
	err := s.db.QueryRow(`
		SELECT id FROM article_tags WHERE article_id = ? AND tag_id = ?
	`, articleID, tagID).Scan(&existingID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check article tag: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO article_tags (article_id, tag_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(article_id, tag_id) DO NOTHING
	`, articleID, tagID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert article tag: %w", err)
	}

	return true, nil
}

// updateCoOccurrences upserts the canonical (min, max) row for every
// unordered pair among tagIDs.
func (s *ArticleTagStore) updateCoOccurrences(tagIDs []int64) error {
	now := time.Now().UTC()

	for i := 0; i < len(tagIDs); i++ {
		for j := i + 1; j < len(tagIDs); j++ {
			tag1, tag2 := tagIDs[i], tagIDs[j]
			if tag1 > tag2 {
				tag1, tag2 = tag2, tag1
			}

			_, err := s.db.Exec(`
				INSERT INTO tag_co_occurrences (tag1_id, tag2_id, occurrence_count, updated_at)
				VALUES (?, ?, 1, ?)
				ON CONFLICT(tag1_id, tag2_id) DO UPDATE SET
					occurrence_count = occurrence_count + 1,
					updated_at = excluded.updated_at
			`, tag1, tag2, now)
			if err != nil {
				return fmt.Errorf("failed to update co-occurrence (%d, %d): %w", tag1, tag2, err)
			}
		}
	}

	return nil
}

// GetCoOccurrence returns the counter for a tag pair in either order, or
// nil when the pair has never co-occurred.
func (s *ArticleTagStore) GetCoOccurrence(tagID1, tagID2 int64) (*int, error) {
	if tagID1 > tagID2 {
		tagID1, tagID2 = tagID2, tagID1
	}

	var count int
	err := s.db.QueryRow(`
		SELECT occurrence_count FROM tag_co_occurrences WHERE tag1_id = ? AND tag2_id = ?
	`, tagID1, tagID2).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get co-occurrence: %w", err)
	}

	return &count, nil
}

// GetRelatedTags returns the co-occurrence neighbors of the named tag,
// strongest first.
func (s *ArticleTagStore) GetRelatedTags(tagName string, limit int) ([]RelatedTag, error) {
	rows, err := s.db.Query(`
		SELECT t.name, c.occurrence_count
		FROM tag_co_occurrences c
		JOIN tags src ON src.id IN (c.tag1_id, c.tag2_id)
		JOIN tags t ON t.id = CASE WHEN c.tag1_id = src.id THEN c.tag2_id ELSE c.tag1_id END
		WHERE src.name = ?
		ORDER BY c.occurrence_count DESC, t.name ASC
		LIMIT ?
	`, tagName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get related tags: %w", err)
	}
	defer rows.Close()

	var related []RelatedTag
	for rows.Next() {
		var r RelatedTag
		if err := rows.Scan(&r.Name, &r.OccurrenceCount); err != nil {
			return nil, fmt.Errorf("failed to scan related tag row: %w", err)
		}
		related = append(related, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating related tag rows: %w", err)
	}

	return related, nil
}
