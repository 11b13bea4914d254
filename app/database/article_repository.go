package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ ArticleRepository = (*SQLArticleRepository)(nil)

// SQLArticleRepository stores articles in the relational schema.
type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

func (r *SQLArticleRepository) SaveArticle(article Article) (*Article, bool, error) {
	existing, err := r.GetArticleByLink(article.Link)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		// First write wins: duplicate sightings never touch metadata.
		return existing, false, nil
	}

	article.CreatedAt = time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO articles (title, link, description, content, published_at, feed_source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, article.Title, article.Link, article.Description, article.Content,
		article.PublishedAt.UTC(), article.FeedSource, article.CreatedAt)
	if err != nil {
		// A concurrent writer may have raced us on the unique link; fall
		// back to a lookup before reporting failure.
		if raced, lookupErr := r.GetArticleByLink(article.Link); lookupErr == nil && raced != nil {
			return raced, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get article id: %w", err)
	}

	article.ID = id
	return &article, true, nil
}

func (r *SQLArticleRepository) GetArticleByLink(link string) (*Article, error) {
	var article Article
	err := r.db.QueryRow(`
		SELECT id, title, link, description, content, published_at, feed_source, created_at
		FROM articles
		WHERE link = ?
	`, link).Scan(&article.ID, &article.Title, &article.Link, &article.Description,
		&article.Content, &article.PublishedAt, &article.FeedSource, &article.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by link: %w", err)
	}

	return &article, nil
}

func (r *SQLArticleRepository) GetRecentArticles(limit int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT id, title, link, description, content, published_at, feed_source, created_at
		FROM articles
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *SQLArticleRepository) GetArticlesByTag(tagName string, limit int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT a.id, a.title, a.link, a.description, a.content, a.published_at, a.feed_source, a.created_at
		FROM articles a
		JOIN article_tags at ON at.article_id = a.id
		JOIN tags t ON t.id = at.tag_id
		WHERE t.name = ?
		ORDER BY a.published_at DESC, a.id DESC
		LIMIT ?
	`, tagName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles by tag: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *SQLArticleRepository) GetArticleCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *SQLArticleRepository) UpdateArticleContent(articleID int64, content string) error {
	_, err := r.db.Exec("UPDATE articles SET content = ? WHERE id = ?", content, articleID)
	if err != nil {
		return fmt.Errorf("failed to update article content: %w", err)
	}
	return nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var article Article
		err := rows.Scan(&article.ID, &article.Title, &article.Link, &article.Description,
			&article.Content, &article.PublishedAt, &article.FeedSource, &article.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}
