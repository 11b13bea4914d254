package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
	"github.com/feedhive/feedhive/app/search"
	"github.com/feedhive/feedhive/app/tagging"
)

func testRSS(title, link string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>%s</title>
      <link>%s</link>
      <description>Body</description>
      <category>Tech</category>
    </item>
  </channel>
</rss>`, title, link)
}

type testEnv struct {
	db       *database.DB
	articles *database.SQLArticleRepository
	tags     *database.SQLTagRepository
	ingestor *Ingestor
}

func newTestIngestor(t *testing.T, configs []*feed.Config) *testEnv {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	articles := database.NewArticleRepository(db)
	tags := database.NewTagRepository(db)
	tagStore := database.NewArticleTagStore(db, tags)

	ingestor := NewIngestor(configs, feed.NewParserSelector(),
		tagging.NewCategoryStrategy(), articles, tagStore, search.Disabled{},
		&http.Client{Timeout: 5 * time.Second}, "feedhive-test/1.0")

	return &testEnv{db: db, articles: articles, tags: tags, ingestor: ingestor}
}

func enabledConfig(name, url string) *feed.Config {
	return &feed.Config{
		Name:     name,
		URL:      url,
		Type:     feed.TypeRSS,
		Settings: feed.ConfigSettings{Enabled: true, Timeout: 5},
	}
}

func TestRunPersistsArticlesWithTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testRSS("Kubernetes Scaling Guide", "https://example.com/k8s"))
	}))
	defer server.Close()

	env := newTestIngestor(t, []*feed.Config{enabledConfig("Feed A", server.URL)})

	if err := env.ingestor.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	article, err := env.articles.GetArticleByLink("https://example.com/k8s")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if article == nil {
		t.Fatal("Expected the article to be persisted")
	}
	if article.FeedSource != "Feed A" {
		t.Errorf("Expected feed source 'Feed A', got: %s", article.FeedSource)
	}

	// The category strategy produces the feed category plus keywords.
	tag, err := env.tags.GetTagByName("Tech")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if tag == nil {
		t.Error("Expected the 'Tech' tag to be created")
	}
}

func TestRunIsolatesFailingFeeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			fmt.Fprint(w, testRSS("Article A", "https://example.com/a"))
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/c":
			fmt.Fprint(w, testRSS("Article C", "https://example.com/c"))
		}
	}))
	defer server.Close()

	env := newTestIngestor(t, []*feed.Config{
		enabledConfig("Feed A", server.URL+"/a"),
		enabledConfig("Broken Feed", server.URL+"/broken"),
		enabledConfig("Feed C", server.URL+"/c"),
	})

	if err := env.ingestor.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, link := range []string{"https://example.com/a", "https://example.com/c"} {
		article, err := env.articles.GetArticleByLink(link)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if article == nil {
			t.Errorf("Expected article %s despite the broken feed", link)
		}
	}

	count, err := env.articles.GetArticleCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 articles, got: %d", count)
	}
}

func TestRunSkipsFeedsWithoutParser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testRSS("Valid", "https://example.com/valid"))
	}))
	defer server.Close()

	jsonFeed := enabledConfig("JSON Feed", server.URL)
	jsonFeed.Type = "json"

	env := newTestIngestor(t, []*feed.Config{
		jsonFeed,
		enabledConfig("Valid Feed", server.URL),
	})

	if err := env.ingestor.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	count, err := env.articles.GetArticleCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article, got: %d", count)
	}
}

func TestRunSkipsDisabledFeeds(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, testRSS("Anything", "https://example.com/x"))
	}))
	defer server.Close()

	disabled := enabledConfig("Disabled Feed", server.URL)
	disabled.Settings.Enabled = false

	env := newTestIngestor(t, []*feed.Config{disabled})

	if err := env.ingestor.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if requests != 0 {
		t.Errorf("Expected no requests for a disabled feed, got: %d", requests)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testRSS("Anything", "https://example.com/x"))
	}))
	defer server.Close()

	env := newTestIngestor(t, []*feed.Config{enabledConfig("Feed A", server.URL)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := env.ingestor.Run(ctx); err == nil {
		t.Error("Expected a cancellation error")
	}

	count, err := env.articles.GetArticleCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no articles after cancellation, got: %d", count)
	}
}

func TestRunDuplicateIngestionKeepsOneArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testRSS("Same Article", "https://example.com/same"))
	}))
	defer server.Close()

	env := newTestIngestor(t, []*feed.Config{enabledConfig("Feed A", server.URL)})

	for i := 0; i < 2; i++ {
		if err := env.ingestor.Run(context.Background()); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	count, err := env.articles.GetArticleCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article after duplicate ingestion, got: %d", count)
	}
}
