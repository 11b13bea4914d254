package search

import (
	"context"

	"github.com/feedhive/feedhive/app/database"
)

// Indexer receives persisted articles for search indexing. Indexing is a
// best-effort side channel: callers log failures and move on.
type Indexer interface {
	Index(ctx context.Context, article *database.Article, tags []string) error
}

// Disabled is the no-op indexer used when no search backend is configured.
type Disabled struct{}

func (Disabled) Index(context.Context, *database.Article, []string) error {
	return nil
}
