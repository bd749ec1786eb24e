// internal/handler/ai_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/massgo/mailer-backend/internal/gemini"
)

// Generator produces email copy from a prompt using a caller-supplied key.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// AIHandler serves the copywriting assistant endpoint.
type AIHandler struct {
	Generator Generator
}

// Generate handles POST /api/ai_generate. Upstream failures are mapped to a
// small fixed set of statuses by substring of the error text; the exact
// phrases come from the provider and are part of what users see.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.APIKey == "" || body.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Google AI Studio API key and prompt are required.",
		})
		return
	}

	text, err := h.Generator.Generate(r.Context(), body.APIKey, body.Prompt)
	if err != nil {
		var blocked *gemini.BlockedError
		if errors.As(err, &blocked) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": fmt.Sprintf("Content generation blocked by AI. Reason: %s", blocked.Reason),
			})
			return
		}

		slog.Error("error from generative text service", "error", err.Error())
		writeJSON(w, upstreamStatus(err), map[string]any{"error": upstreamMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"generated_text": text})
}

func upstreamStatus(err error) int {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "api key not valid"),
		strings.Contains(s, "permission_denied"),
		strings.Contains(s, "api_key_invalid"):
		return http.StatusUnauthorized
	case strings.Contains(s, "model") && (strings.Contains(s, "not found") || strings.Contains(s, "is not supported")):
		return http.StatusNotFound
	case strings.Contains(s, "quota"):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func upstreamMessage(err error) string {
	switch upstreamStatus(err) {
	case http.StatusUnauthorized:
		return "Google AI Studio API key is not valid or has insufficient permissions. Please check your key in Settings."
	case http.StatusNotFound:
		return fmt.Sprintf("The AI model ('%s') was not found or is not supported with your API key. Check Google AI Studio for available models. Error: %v", gemini.DefaultModel, err)
	case http.StatusTooManyRequests:
		return "API quota exceeded. Please check your Google AI Studio project quotas."
	default:
		return fmt.Sprintf("Error generating text with AI: %v", err)
	}
}
