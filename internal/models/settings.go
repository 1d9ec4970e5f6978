package models

import (
	"fmt"
	"time"
)

// AI provider tags as stored in Settings and on MinutesRecord.
const (
	ProviderGoogleGemini    = "google_gemini"
	ProviderAnthropicClaude = "anthropic_claude"
	ProviderOpenAIChatGPT   = "openai_chatgpt"
)

// Settings is the single application-wide configuration document.
// Exactly one logical settings document is ever consulted.
type Settings struct {
	AIProvider            string    `firestore:"aiProvider" json:"ai_provider"`
	GoogleGeminiModel     string    `firestore:"googleGeminiModel" json:"google_gemini_model"`
	AnthropicClaudeModel  string    `firestore:"anthropicClaudeModel" json:"anthropic_claude_model"`
	AnthropicThinkingMode bool      `firestore:"anthropicThinkingMode" json:"anthropic_thinking_mode"`
	OpenAIChatGPTModel    string    `firestore:"openaiChatgptModel" json:"openai_chatgpt_model"`
	NotionParentPageID    string    `firestore:"notionParentPageId" json:"notion_parent_page_id"`
	UpdatedAt             time.Time `firestore:"updatedAt" json:"updated_at"`
}

// DefaultSettings returns the settings used when no document exists yet.
func DefaultSettings() *Settings {
	return &Settings{
		AIProvider:            ProviderGoogleGemini,
		GoogleGeminiModel:     "gemini-2.5-pro-exp-03-25",
		AnthropicClaudeModel:  "claude-3.7-sonnet",
		AnthropicThinkingMode: true,
		OpenAIChatGPTModel:    "gpt-4o",
		UpdatedAt:             time.Now().UTC(),
	}
}

// ResolveModel maps the configured provider tag to its model name.
// An unrecognized tag is a configuration error, not a provider failure.
func (s *Settings) ResolveModel() (string, error) {
	switch s.AIProvider {
	case ProviderGoogleGemini:
		return s.GoogleGeminiModel, nil
	case ProviderAnthropicClaude:
		return s.AnthropicClaudeModel, nil
	case ProviderOpenAIChatGPT:
		return s.OpenAIChatGPTModel, nil
	default:
		return "", fmt.Errorf("unknown ai provider: %q", s.AIProvider)
	}
}

// ThinkingMode reports whether the Claude thinking-mode instruction applies.
// It is only meaningful when the Anthropic provider is selected.
func (s *Settings) ThinkingMode() bool {
	return s.AIProvider == ProviderAnthropicClaude && s.AnthropicThinkingMode
}
