package database

import (
	"time"
)

// Article is a persisted article row. Link is the canonical key: ingesting
// the same link twice returns the original row untouched.
type Article struct {
	ID          int64
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time
	FeedSource  string
	CreatedAt   time.Time
}

type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// TagCount pairs a tag with the number of articles carrying it.
type TagCount struct {
	Tag
	ArticleCount int
}

// RelatedTag is a co-occurrence neighbor of some tag.
type RelatedTag struct {
	Name            string
	OccurrenceCount int
}
