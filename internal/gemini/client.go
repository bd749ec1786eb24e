// internal/gemini/client.go
package gemini

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// DefaultModel is cost-effective and good for general copywriting tasks.
// Users may need a different one if it is unavailable for their key/region.
const DefaultModel = "gemini-1.5-flash-latest"

// BlockedError is returned when the model refused to generate, with the
// provider's stated reason.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "content generation blocked by AI: " + e.Reason
}

// Client generates email copy. The API key arrives per request, so a fresh
// upstream client is built per call and nothing is retained between requests.
type Client struct {
	Model string
}

func NewClient() *Client {
	return &Client{Model: DefaultModel}
}

// Generate runs one prompt and returns the generated text. An empty result
// with an explicit block reason becomes a BlockedError; an empty result
// without one is passed through as-is.
func (c *Client) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", errors.Wrap(err, "failed to create generative client")
	}
	defer client.Close()

	m := client.GenerativeModel(c.Model)
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}

	slog.Info("generating text", "model", c.Model)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	text := sb.String()

	if text == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		slog.Warn("content generation blocked", "reason", resp.PromptFeedback.BlockReason.String())
		return "", &BlockedError{Reason: resp.PromptFeedback.BlockReason.String()}
	}
	if text == "" {
		// The model can genuinely produce no output for a valid prompt.
		slog.Warn("model generated empty text without an explicit block")
	}

	return text, nil
}
