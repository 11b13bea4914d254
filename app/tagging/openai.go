package tagging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"

	"github.com/feedhive/feedhive/app/feed"
)

const tagPrompt = "You are a news tagging assistant. Given an article title and " +
	"description, respond with 5 to 10 short lowercase topic tags as a single " +
	"comma-separated list. Respond with the tags only."

// OpenAIStrategy asks a chat-completion model for tags. Any API failure
// falls back to the article's feed categories, so tagging never blocks
// ingestion.
type OpenAIStrategy struct {
	client *openai.Client
	model  string
	mu     sync.Mutex
}

func NewOpenAIStrategy(apiKey, model string) (*OpenAIStrategy, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not configured")
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAIStrategy{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (s *OpenAIStrategy) GenerateTags(ctx context.Context, item feed.Item) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	request := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: tagPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("%s\n\n%s", item.Title, item.Description),
			},
		},
		MaxTokens:   64,
		Temperature: 0.2,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil || len(resp.Choices) == 0 {
		slog.Warn("OpenAI tagging failed, falling back to feed categories",
			"feed", item.FeedSource, "error", err)
		return item.Categories
	}

	tags := parseTagList(resp.Choices[0].Message.Content)
	if len(tags) == 0 {
		return item.Categories
	}

	return tags
}

func parseTagList(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(part string, _ int) (string, bool) {
		tag := strings.ToLower(strings.TrimSpace(part))
		return tag, tag != ""
	})
}
