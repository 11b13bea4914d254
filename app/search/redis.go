package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feedhive/feedhive/app/database"
)

var _ Indexer = (*RedisIndexer)(nil)

// RedisIndexer mirrors persisted articles into Redis: one JSON document per
// article plus one set of article ids per tag.
type RedisIndexer struct {
	client *redis.Client
}

type indexDocument struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	FeedSource  string    `json:"feed_source"`
	Tags        []string  `json:"tags"`
}

func NewRedisIndexer(addr string) (*RedisIndexer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &RedisIndexer{client: client}, nil
}

func (r *RedisIndexer) Index(ctx context.Context, article *database.Article, tags []string) error {
	doc := indexDocument{
		ID:          article.ID,
		Title:       article.Title,
		Link:        article.Link,
		Description: article.Description,
		PublishedAt: article.PublishedAt,
		FeedSource:  article.FeedSource,
		Tags:        tags,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal index document: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf("article:%d", article.ID), data, 0)
	for _, tag := range tags {
		pipe.SAdd(ctx, "tag:"+strings.ToLower(tag), article.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index article: %w", err)
	}

	return nil
}

func (r *RedisIndexer) Close() error {
	return r.client.Close()
}
