package tagging

import (
	"context"
	"slices"

	"github.com/feedhive/feedhive/app/feed"
)

// FixedStrategy returns the same tag list for every article. Deterministic
// stand-in for tests and local bootstrap.
type FixedStrategy struct {
	tags []string
}

func NewFixedStrategy(tags ...string) *FixedStrategy {
	return &FixedStrategy{tags: tags}
}

func (s *FixedStrategy) GenerateTags(_ context.Context, _ feed.Item) []string {
	return slices.Clone(s.tags)
}
