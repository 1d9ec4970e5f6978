package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// geminiBackend generates minutes through Vertex AI.
type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(ctx context.Context, projectID, region string) (*geminiBackend, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("newGeminiBackend: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) generate(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	m := b.client.GenerativeModel(model)
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	// All backends share the same output cap; without it Gemini runs to
	// its model default.
	m.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: genai.Ptr[int32](int32(maxTokens)),
	}

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return extractGeminiText(resp), nil
}

// extractGeminiText robustly pulls the text parts out of a Gemini response.
// Multiple text parts are concatenated in order.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var contentBuilder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			contentBuilder.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(contentBuilder.String())
}
