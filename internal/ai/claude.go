package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeBackend generates minutes through the Anthropic Messages API.
type claudeBackend struct {
	client anthropic.Client
}

func newClaudeBackend(apiKey string) *claudeBackend {
	return &claudeBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (b *claudeBackend) generate(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from claude: %w", err)
	}

	var contentBuilder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			contentBuilder.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(contentBuilder.String()), nil
}
