package api

import (
	"time"

	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
)

// SchedulerInterface is the slice of the ingest scheduler the API needs.
type SchedulerInterface interface {
	TriggerNow() bool
}

type Handler struct {
	configs     []*feed.Config
	articleRepo database.ArticleRepository
	tagRepo     database.TagRepository
	tagStore    *database.ArticleTagStore
	scheduler   SchedulerInterface
}

type articleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	FeedSource  string    `json:"feed_source"`
}

type tagResponse struct {
	Name         string `json:"name"`
	ArticleCount int    `json:"article_count"`
}

type relatedTagResponse struct {
	Name            string `json:"name"`
	OccurrenceCount int    `json:"occurrence_count"`
}
