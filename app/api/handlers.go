package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
)

const defaultListLimit = 50

func NewHandler(configs []*feed.Config, articleRepo database.ArticleRepository,
	tagRepo database.TagRepository, tagStore *database.ArticleTagStore,
	scheduler SchedulerInterface) *Handler {
	return &Handler{
		configs:     configs,
		articleRepo: articleRepo,
		tagRepo:     tagRepo,
		tagStore:    tagStore,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feeds":     len(h.configs),
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	articleCount, err := h.articleRepo.GetArticleCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tagCount, err := h.tagRepo.GetTagCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_tag_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	enabled := lo.CountBy(h.configs, func(cfg *feed.Config) bool {
		return cfg.Settings.Enabled
	})

	c.JSON(http.StatusOK, gin.H{
		"feeds": gin.H{
			"total":   len(h.configs),
			"enabled": enabled,
		},
		"articles": articleCount,
		"tags":     tagCount,
	})
}

func (h *Handler) GetArticles(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	var (
		articles []database.Article
		err      error
	)

	if tag := c.Query("tag"); tag != "" {
		articles, err = h.articleRepo.GetArticlesByTag(tag, limit)
	} else {
		articles, err = h.articleRepo.GetRecentArticles(limit)
	}

	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": lo.Map(articles, func(a database.Article, _ int) articleResponse {
			return articleResponse{
				ID:          a.ID,
				Title:       a.Title,
				Link:        a.Link,
				Description: a.Description,
				PublishedAt: a.PublishedAt,
				FeedSource:  a.FeedSource,
			}
		}),
		"total": len(articles),
	})
}

func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.tagRepo.ListTags(parseLimit(c.Query("limit")))
	if err != nil {
		slog.Error("Database error", "operation", "list_tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags": lo.Map(tags, func(t database.TagCount, _ int) tagResponse {
			return tagResponse{Name: t.Name, ArticleCount: t.ArticleCount}
		}),
		"total": len(tags),
	})
}

func (h *Handler) GetRelatedTags(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tag name parameter"})
		return
	}

	tag, err := h.tagRepo.GetTagByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_tag", "tag", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	related, err := h.tagStore.GetRelatedTags(name, parseLimit(c.Query("limit")))
	if err != nil {
		slog.Error("Database error", "operation", "get_related_tags", "tag", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tag": name,
		"related": lo.Map(related, func(r database.RelatedTag, _ int) relatedTagResponse {
			return relatedTagResponse{Name: r.Name, OccurrenceCount: r.OccurrenceCount}
		}),
		"total": len(related),
	})
}

func (h *Handler) APITriggerIngest(c *gin.Context) {
	if h.scheduler.TriggerNow() {
		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "Ingestion run triggered",
		})
		return
	}

	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"message": "An ingestion run is already pending",
	})
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}

	return limit
}
