package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
)

type stubScheduler struct {
	accepted bool
}

func (s *stubScheduler) TriggerNow() bool {
	return s.accepted
}

func newTestServer(t *testing.T, scheduler SchedulerInterface, apiAccessKey string) (*gin.Engine, *database.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	configs := []*feed.Config{
		{Name: "Feed A", Settings: feed.ConfigSettings{Enabled: true}},
		{Name: "Feed B", Settings: feed.ConfigSettings{Enabled: false}},
	}

	tagRepo := database.NewTagRepository(db)
	handler := NewHandler(configs, database.NewArticleRepository(db), tagRepo,
		database.NewArticleTagStore(db, tagRepo), scheduler)

	return NewServer(handler, apiAccessKey), db
}

func seedArticle(t *testing.T, db *database.DB, title, link string, tags []string) {
	t.Helper()

	articles := database.NewArticleRepository(db)
	tagRepo := database.NewTagRepository(db)
	tagStore := database.NewArticleTagStore(db, tagRepo)

	article, _, err := articles.SaveArticle(database.Article{
		Title:       title,
		Link:        link,
		PublishedAt: time.Now().UTC(),
		FeedSource:  "Feed A",
	})
	if err != nil {
		t.Fatalf("Failed to seed article: %v", err)
	}

	if err := tagStore.SaveArticleTags(article.ID, tags); err != nil {
		t.Fatalf("Failed to seed tags: %v", err)
	}
}

func TestGetHealth(t *testing.T) {
	server, _ := newTestServer(t, &stubScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["feeds"] != float64(2) {
		t.Errorf("Expected 2 feeds, got: %v", body["feeds"])
	}
}

func TestGetArticlesByTag(t *testing.T) {
	server, db := newTestServer(t, &stubScheduler{}, "")

	seedArticle(t, db, "Go Article", "https://example.com/go", []string{"golang"})
	seedArticle(t, db, "Rust Article", "https://example.com/rust", []string{"rust"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/articles?tag=golang", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body struct {
		Articles []articleResponse `json:"articles"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body.Total != 1 {
		t.Fatalf("Expected 1 article, got: %d", body.Total)
	}
	if body.Articles[0].Title != "Go Article" {
		t.Errorf("Expected 'Go Article', got: %s", body.Articles[0].Title)
	}
}

func TestGetRelatedTags(t *testing.T) {
	server, db := newTestServer(t, &stubScheduler{}, "")

	seedArticle(t, db, "Article", "https://example.com/a", []string{"golang", "testing"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tags/golang/related", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body struct {
		Related []relatedTagResponse `json:"related"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(body.Related) != 1 || body.Related[0].Name != "testing" {
		t.Errorf("Expected related tag 'testing', got: %+v", body.Related)
	}
}

func TestGetRelatedTagsUnknownTag(t *testing.T) {
	server, _ := newTestServer(t, &stubScheduler{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tags/missing/related", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}

func TestTriggerIngestRequiresAPIKey(t *testing.T) {
	server, _ := newTestServer(t, &stubScheduler{accepted: true}, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ingest", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got: %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/ingest", nil)
	req.Header.Set("X-API-Key", "secret")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got: %d", w.Code)
	}
}

func TestTriggerIngestAlreadyPending(t *testing.T) {
	server, _ := newTestServer(t, &stubScheduler{accepted: false}, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ingest", nil)
	req.Header.Set("Authorization", "Bearer secret")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got: %d", w.Code)
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	server, _ := newTestServer(t, &stubScheduler{accepted: true}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ingest", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", w.Code)
	}
}
