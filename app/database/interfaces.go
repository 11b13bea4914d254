package database

type ArticleRepository interface {
	// SaveArticle inserts the article unless a row with the same link
	// already exists, in which case the existing row is returned unchanged.
	// The bool reports whether a new row was created.
	SaveArticle(article Article) (*Article, bool, error)
	GetArticleByLink(link string) (*Article, error)
	GetRecentArticles(limit int) ([]Article, error)
	GetArticlesByTag(tagName string, limit int) ([]Article, error)
	GetArticleCount() (int, error)
	UpdateArticleContent(articleID int64, content string) error
}

type TagRepository interface {
	// GetOrCreateTag returns the tag named name, creating it on first sight.
	GetOrCreateTag(name string) (*Tag, error)
	GetTagByName(name string) (*Tag, error)
	GetTagCount() (int, error)
	ListTags(limit int) ([]TagCount, error)
}
