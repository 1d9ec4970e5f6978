package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/minutesflow/internal/models"
)

// GeneratedTitleMaxRunes is the hard client-side cap on the generated title,
// applied regardless of what the model returns.
const GeneratedTitleMaxRunes = 30

// minutesExcerptRunes is how much of the minutes the title call sees.
const minutesExcerptRunes = 500

const (
	minutesMaxTokens = 4000
	titleMaxTokens   = 50
)

// ErrEmptyMinutes reports that the provider call succeeded but returned no
// minutes content. It is a generation failure, not a transport error.
var ErrEmptyMinutes = errors.New("ai response contained no minutes content")

// ErrUnknownProvider reports an unrecognized provider tag in Settings. It is
// a configuration error, distinct from a provider-call failure.
var ErrUnknownProvider = errors.New("unknown ai provider")

// Config holds the credentials and endpoints for all provider backends.
// Keys are passed in explicitly at process start; a backend whose credential
// is missing stays unconfigured and fails selection with a clear error.
type Config struct {
	GoogleProjectID string
	VertexAIRegion  string
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

// Request carries one minutes-generation request. Provider and model come
// from Settings; selection is the caller's responsibility.
type Request struct {
	Content      string
	Title        string
	CreationTime string
	Speakers     []string
	Model        string
	ThinkingMode bool
}

// Result is the outcome of one generation: the full minutes text and a short
// title derived from it.
type Result struct {
	Minutes        string
	GeneratedTitle string
}

// backend is the capability each provider variant implements: produce
// long-form text from a system prompt and a user prompt.
type backend interface {
	generate(ctx context.Context, model, system, user string, maxTokens int) (string, error)
}

// Client is the capability-polymorphic AI generation client. One instance
// holds all configured backends; each Generate call picks one by provider tag.
type Client struct {
	gemini  backend
	claude  backend
	chatgpt backend
}

// NewClient builds a Client from explicit configuration. Only backends whose
// credentials are present are constructed.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{}

	if cfg.GoogleProjectID != "" {
		gemini, err := newGeminiBackend(ctx, cfg.GoogleProjectID, cfg.VertexAIRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini backend: %w", err)
		}
		c.gemini = gemini
	}
	if cfg.AnthropicAPIKey != "" {
		c.claude = newClaudeBackend(cfg.AnthropicAPIKey)
	}
	if cfg.OpenAIAPIKey != "" {
		c.chatgpt = newOpenAIBackend(cfg.OpenAIAPIKey)
	}

	return c, nil
}

// Generate produces the minutes text and a short title for one transcript.
// Any provider-side failure propagates unretried with the provider's error
// text; an empty minutes response is reported as ErrEmptyMinutes.
func (c *Client) Generate(ctx context.Context, provider string, req *Request) (*Result, error) {
	b, err := c.backendFor(provider)
	if err != nil {
		return nil, err
	}

	slog.Info("Generating minutes.",
		"provider", provider,
		"model", req.Model,
		"contentLength", len(req.Content),
		"speakerCount", len(req.Speakers))

	formattedDate := formatPromptDate(req.CreationTime)
	userPrompt := buildUserPrompt(req.Title, formattedDate, speakersText(req.Speakers), req.Content)

	systemPrompt := MinutesSystemPrompt
	if provider == models.ProviderAnthropicClaude && req.ThinkingMode {
		systemPrompt += ThinkingModeInstruction
	}

	minutes, err := b.generate(ctx, req.Model, systemPrompt, userPrompt, minutesMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("minutes generation failed (%s): %w", provider, err)
	}
	if strings.TrimSpace(minutes) == "" {
		return nil, ErrEmptyMinutes
	}

	titlePrompt := buildTitlePrompt(req.Title, formattedDate, truncateRunes(minutes, minutesExcerptRunes))
	title, err := b.generate(ctx, req.Model, "", titlePrompt, titleMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("title generation failed (%s): %w", provider, err)
	}

	return &Result{
		Minutes:        minutes,
		GeneratedTitle: truncateRunes(strings.TrimSpace(title), GeneratedTitleMaxRunes),
	}, nil
}

func (c *Client) backendFor(provider string) (backend, error) {
	var b backend
	switch provider {
	case models.ProviderGoogleGemini:
		b = c.gemini
	case models.ProviderAnthropicClaude:
		b = c.claude
	case models.ProviderOpenAIChatGPT:
		b = c.chatgpt
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if b == nil {
		return nil, fmt.Errorf("provider %s is not configured: missing credential", provider)
	}
	return b, nil
}

// promptDateLayout renders timestamps for prompt injection.
const promptDateLayout = "2006年01月02日 15:04"

// formatPromptDate renders the payload's creation time for the prompts.
// An unparseable value falls back to the raw string; a date-format problem
// must never fail the overall call.
func formatPromptDate(creationTime string) string {
	if creationTime == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02 15:04:05", creationTime)
	if err != nil {
		slog.Warn("Failed to parse creation time for prompt, using raw value.", "creationTime", creationTime)
		return creationTime
	}
	return t.Format(promptDateLayout)
}

// speakersText comma-joins the non-empty speaker names, or 不明 when none.
func speakersText(speakers []string) string {
	var names []string
	for _, s := range speakers {
		if s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return "不明"
	}
	return strings.Join(names, ", ")
}

// truncateRunes caps s at n runes. Titles are Japanese text, so the cap
// counts runes, not bytes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
