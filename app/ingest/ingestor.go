package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
	"github.com/feedhive/feedhive/app/search"
	"github.com/feedhive/feedhive/app/tagging"
)

// Ingestor runs one ingestion pass over the configured feeds: fetch, parse,
// tag, persist, index. Feeds are processed sequentially; a failing feed is
// logged and skipped so it can never block the others.
type Ingestor struct {
	configs   []*feed.Config
	selector  *feed.ParserSelector
	strategy  tagging.Strategy
	articles  database.ArticleRepository
	tagStore  *database.ArticleTagStore
	indexer   search.Indexer
	extractor *feed.ContentExtractor
	client    *http.Client
	userAgent string
}

func NewIngestor(configs []*feed.Config, selector *feed.ParserSelector,
	strategy tagging.Strategy, articles database.ArticleRepository,
	tagStore *database.ArticleTagStore, indexer search.Indexer,
	client *http.Client, userAgent string) *Ingestor {
	return &Ingestor{
		configs:   configs,
		selector:  selector,
		strategy:  strategy,
		articles:  articles,
		tagStore:  tagStore,
		indexer:   indexer,
		extractor: feed.NewContentExtractor(),
		client:    client,
		userAgent: userAgent,
	}
}

// Run processes every configured feed once. Cancellation is cooperative and
// checked between feeds; a feed already in flight runs to completion. The
// returned error is only non-nil when the run itself was aborted.
func (in *Ingestor) Run(ctx context.Context) error {
	started := time.Now()
	processed := 0
	failed := 0

	for _, cfg := range in.configs {
		select {
		case <-ctx.Done():
			slog.Warn("Ingestion cancelled", "processed", processed, "remaining", len(in.configs)-processed-failed)
			return ctx.Err()
		default:
		}

		if !cfg.Settings.Enabled {
			slog.Debug("Feed disabled, skipping", "feed", cfg.Name)
			continue
		}

		if err := in.processFeed(ctx, cfg); err != nil {
			slog.Error("Feed processing failed", "feed", cfg.Name, "error", err)
			failed++
			continue
		}
		processed++
	}

	slog.Info("Ingestion run completed",
		"duration", time.Since(started).Round(time.Millisecond).String(),
		"processed", processed,
		"failed", failed)

	return nil
}

func (in *Ingestor) processFeed(ctx context.Context, cfg *feed.Config) error {
	parser, err := in.selector.ParserFor(cfg)
	if err != nil {
		return err
	}

	data, err := in.fetch(ctx, cfg.URL, cfg.Settings.Timeout)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, err := parser.Parse(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	newCount := 0
	for _, item := range items {
		item.Tags = in.strategy.GenerateTags(ctx, item)

		created, err := in.persistItem(ctx, cfg, item)
		if err != nil {
			return err
		}
		if created {
			newCount++
		}
	}

	slog.Info("Feed processed", "feed", cfg.Name, "total", len(items), "new", newCount)

	return nil
}

func (in *Ingestor) persistItem(ctx context.Context, cfg *feed.Config, item feed.Item) (bool, error) {
	article, created, err := in.articles.SaveArticle(database.Article{
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		PublishedAt: item.PublishedAt,
		FeedSource:  item.FeedSource,
	})
	if err != nil {
		return false, fmt.Errorf("failed to save article: %w", err)
	}

	if err := in.tagStore.SaveArticleTags(article.ID, item.Tags); err != nil {
		return false, fmt.Errorf("failed to save article tags: %w", err)
	}

	// Indexing is best-effort and never fails the feed.
	if err := in.indexer.Index(ctx, article, item.Tags); err != nil {
		slog.Warn("Search indexing failed", "feed", cfg.Name, "link", article.Link, "error", err)
	}

	if created && cfg.Settings.ExtractContent && article.Link != "" {
		in.extractContent(ctx, cfg, article)
	}

	return created, nil
}

// extractContent fetches the article page and stores its readable body.
// Failures are logged only: the article is already persisted.
func (in *Ingestor) extractContent(ctx context.Context, cfg *feed.Config, article *database.Article) {
	data, err := in.fetch(ctx, article.Link, cfg.Settings.Timeout)
	if err != nil {
		slog.Warn("Content fetch failed", "feed", cfg.Name, "link", article.Link, "error", err)
		return
	}

	content, err := in.extractor.Run(data, article.Link)
	if err != nil {
		slog.Warn("Content extraction failed", "feed", cfg.Name, "link", article.Link, "error", err)
		return
	}

	if err := in.articles.UpdateArticleContent(article.ID, content); err != nil {
		slog.Warn("Content update failed", "feed", cfg.Name, "link", article.Link, "error", err)
	}
}

func (in *Ingestor) fetch(ctx context.Context, url string, timeoutSeconds int) ([]byte, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", in.userAgent)

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
