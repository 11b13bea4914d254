package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// ContentExtractor pulls the readable article body out of a fetched article
// page. Used for feeds with extract_content enabled, where the feed itself
// only carries teasers.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted",
		"url", pageURL,
		"content_length", len(article.Content))

	return article.Content, nil
}
