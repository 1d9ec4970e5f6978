package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Lllllllleong/minutesflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend scripts the two generate calls (minutes, then title).
type fakeBackend struct {
	calls   []fakeCall
	replies []string
	errs    []error
}

type fakeCall struct {
	model     string
	system    string
	user      string
	maxTokens int
}

func (f *fakeBackend) generate(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, fakeCall{model: model, system: system, user: user, maxTokens: maxTokens})
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", nil
}

func testRequest() *Request {
	return &Request{
		Content:      "今日の進捗を共有します。",
		Title:        "Standup",
		CreationTime: "2025-04-01 09:30:00",
		Speakers:     []string{"小林", "田中"},
		Model:        "gemini-2.5-pro-exp-03-25",
	}
}

func TestGenerateTwoCallProtocol(t *testing.T) {
	b := &fakeBackend{replies: []string{"# 議事録\n本文です。", "進捗共有ミーティング"}}
	c := &Client{gemini: b}

	res, err := c.Generate(context.Background(), models.ProviderGoogleGemini, testRequest())
	require.NoError(t, err)
	require.Len(t, b.calls, 2, "minutes call then title call")

	assert.Equal(t, MinutesSystemPrompt, b.calls[0].system)
	assert.Contains(t, b.calls[0].user, "今日の進捗を共有します。")
	assert.Contains(t, b.calls[0].user, "2025年04月01日 09:30", "prompt date should be rendered in Japanese format")
	assert.Contains(t, b.calls[0].user, "小林, 田中")
	assert.Equal(t, minutesMaxTokens, b.calls[0].maxTokens)

	assert.Empty(t, b.calls[1].system, "title call carries no system prompt")
	assert.Contains(t, b.calls[1].user, "# 議事録", "title call sees the minutes excerpt")
	assert.Equal(t, titleMaxTokens, b.calls[1].maxTokens)

	assert.Equal(t, "# 議事録\n本文です。", res.Minutes)
	assert.Equal(t, "進捗共有ミーティング", res.GeneratedTitle)
}

func TestGenerateTitleExcerptIsBounded(t *testing.T) {
	longMinutes := strings.Repeat("あ", 2000)
	b := &fakeBackend{replies: []string{longMinutes, "タイトル"}}
	c := &Client{gemini: b}

	_, err := c.Generate(context.Background(), models.ProviderGoogleGemini, testRequest())
	require.NoError(t, err)

	excerpt := b.calls[1].user
	assert.NotContains(t, excerpt, strings.Repeat("あ", minutesExcerptRunes+1),
		"title prompt should only see the first %d runes of the minutes", minutesExcerptRunes)
}

func TestGenerateTitleHardCap(t *testing.T) {
	b := &fakeBackend{replies: []string{"議事録本文", strings.Repeat("長", 80)}}
	c := &Client{gemini: b}

	res, err := c.Generate(context.Background(), models.ProviderGoogleGemini, testRequest())
	require.NoError(t, err)
	assert.Equal(t, GeneratedTitleMaxRunes, len([]rune(res.GeneratedTitle)),
		"title must be capped client-side regardless of model output")
}

func TestGenerateEmptyMinutes(t *testing.T) {
	b := &fakeBackend{replies: []string{"   \n  "}}
	c := &Client{gemini: b}

	_, err := c.Generate(context.Background(), models.ProviderGoogleGemini, testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyMinutes)
	assert.Len(t, b.calls, 1, "no title call after empty minutes")
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	b := &fakeBackend{errs: []error{boom}}
	c := &Client{chatgpt: b}

	_, err := c.Generate(context.Background(), models.ProviderOpenAIChatGPT, testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "provider error text must be preserved")
}

func TestGenerateUnknownProvider(t *testing.T) {
	c := &Client{}
	_, err := c.Generate(context.Background(), "mystery_ai", testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestGenerateUnconfiguredProvider(t *testing.T) {
	c := &Client{gemini: &fakeBackend{}}
	_, err := c.Generate(context.Background(), models.ProviderAnthropicClaude, testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGenerateClaudeThinkingMode(t *testing.T) {
	b := &fakeBackend{replies: []string{"議事録", "タイトル"}}
	c := &Client{claude: b}

	req := testRequest()
	req.ThinkingMode = true
	_, err := c.Generate(context.Background(), models.ProviderAnthropicClaude, req)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(b.calls[0].system, ThinkingModeInstruction),
		"thinking mode appends the analysis instruction to the system prompt")

	// Thinking mode is ignored outside the claude backend.
	b2 := &fakeBackend{replies: []string{"議事録", "タイトル"}}
	c2 := &Client{gemini: b2}
	req2 := testRequest()
	req2.ThinkingMode = true
	_, err = c2.Generate(context.Background(), models.ProviderGoogleGemini, req2)
	require.NoError(t, err)
	assert.Equal(t, MinutesSystemPrompt, b2.calls[0].system)
}

func TestFormatPromptDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"well-formed", "2025-01-15 14:05:00", "2025年01月15日 14:05"},
		{"unparseable falls back to raw", "next tuesday", "next tuesday"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatPromptDate(tt.in))
		})
	}
}

func TestSpeakersText(t *testing.T) {
	assert.Equal(t, "不明", speakersText(nil))
	assert.Equal(t, "不明", speakersText([]string{"", ""}))
	assert.Equal(t, "小林, 田中", speakersText([]string{"小林", "", "田中"}))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "短い", truncateRunes("短い", 30))
	long := strings.Repeat("字", 45)
	got := truncateRunes(long, 30)
	assert.Equal(t, 30, len([]rune(got)))
	assert.Equal(t, strings.Repeat("字", 30), got)
}

func TestBuildTitlePromptMentionsCap(t *testing.T) {
	prompt := buildTitlePrompt("Standup", "2025年04月01日 09:30", "抜粋")
	assert.Contains(t, prompt, fmt.Sprintf("%d文字以内", GeneratedTitleMaxRunes))
}
