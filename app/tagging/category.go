package tagging

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/feedhive/feedhive/app/feed"
)

const (
	maxKeywords   = 5
	minWordLength = 4 // keywords must be strictly longer
	wordCutset    = ",.!?:;"
)

// CategoryStrategy tags an article with its feed categories plus a handful
// of keywords pulled from the title and description.
type CategoryStrategy struct{}

func NewCategoryStrategy() *CategoryStrategy {
	return &CategoryStrategy{}
}

// GenerateTags returns the article's categories in original order followed
// by up to 5 lowercased keywords in first-seen order, deduplicated across
// the whole list (case-insensitively).
func (s *CategoryStrategy) GenerateTags(_ context.Context, item feed.Item) []string {
	categories := lo.UniqBy(
		lo.Filter(item.Categories, func(c string, _ int) bool { return c != "" }),
		strings.ToLower,
	)

	tags := make([]string, 0, len(categories)+maxKeywords)
	seen := make(map[string]struct{}, len(categories)+maxKeywords)
	for _, category := range categories {
		seen[strings.ToLower(category)] = struct{}{}
		tags = append(tags, category)
	}

	keywords := 0
	for _, word := range strings.Fields(item.Title + " " + item.Description) {
		if keywords >= maxKeywords {
			break
		}

		word = strings.ToLower(strings.Trim(word, wordCutset))
		if utf8.RuneCountInString(word) <= minWordLength {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}

		seen[word] = struct{}{}
		tags = append(tags, word)
		keywords++
	}

	return tags
}
