package tagging

import (
	"context"
	"fmt"

	"github.com/feedhive/feedhive/app/feed"
)

// Strategy assigns descriptive tags to one normalized article. Strategies
// never fail: a strategy unable to produce tags falls back to whatever the
// article already carries.
type Strategy interface {
	GenerateTags(ctx context.Context, item feed.Item) []string
}

// Strategy names accepted in process configuration.
const (
	StrategyCategories = "categories"
	StrategyOpenAI     = "openai"
	StrategyFixed      = "fixed"
)

// NewStrategy builds the strategy selected by name.
func NewStrategy(name, openAIKey, openAIModel string) (Strategy, error) {
	switch name {
	case "", StrategyCategories:
		return NewCategoryStrategy(), nil
	case StrategyOpenAI:
		return NewOpenAIStrategy(openAIKey, openAIModel)
	case StrategyFixed:
		return NewFixedStrategy("news", "feedhive"), nil
	default:
		return nil, fmt.Errorf("unknown tagging strategy: %q", name)
	}
}
