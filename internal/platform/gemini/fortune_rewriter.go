package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/snaplead-api/internal/config"
	"github.com/phrazzld/snaplead-api/internal/domain"
)

// ErrMissingAPIKey is returned when a rewriter is constructed without an API
// key. Callers treat the rewriter as optional and skip it in that case.
var ErrMissingAPIKey = errors.New("gemini API key cannot be empty")

// promptTemplate keeps the model on the fixed two-line answer format the
// parser expects.
const promptTemplate = `You write short, playful fortune messages for guests of a cocktail bar photo kiosk.
The guest's detected mood is %q.

Here is an example of the tone, written for the same mood:
GIMMICK: %s
STORY: %s

Write a brand new fortune in the same tone and length for this guest.
Answer with exactly two lines in this format and nothing else:
GIMMICK: <one short catchy line>
STORY: <two or three sentences>`

// FortuneRewriter rewrites stored fortunes with the Gemini API.
type FortuneRewriter struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewFortuneRewriter creates a rewriter from the LLM configuration.
// Returns ErrMissingAPIKey when no key is configured.
func NewFortuneRewriter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*FortuneRewriter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &FortuneRewriter{
		client: client,
		model:  cfg.Model,
		logger: logger.With(slog.String("component", "fortune_rewriter")),
	}, nil
}

// Rewrite returns a fortune with freshly generated gimmick and story text.
// On any failure the stored originals come back unchanged; the customer
// always gets a fortune.
func (r *FortuneRewriter) Rewrite(ctx context.Context, fortune domain.Fortune) domain.Fortune {
	prompt := fmt.Sprintf(promptTemplate, fortune.Mood, fortune.Gimmick, fortune.Story)

	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), nil)
	if err != nil {
		r.logger.Warn("fortune rewrite call failed, using stored fortune",
			slog.String("mood", fortune.Mood),
			slog.String("error", err.Error()))
		return fortune
	}

	gimmick, story, ok := parseFortuneResponse(resp.Text())
	if !ok {
		r.logger.Warn("fortune rewrite response did not match template, using stored fortune",
			slog.String("mood", fortune.Mood))
		return fortune
	}

	rewritten := fortune
	rewritten.Gimmick = gimmick
	rewritten.Story = story
	return rewritten
}

// parseFortuneResponse extracts the gimmick and story lines from the model's
// answer. Both markers must be present, in order, with non-empty text.
func parseFortuneResponse(text string) (gimmick, story string, ok bool) {
	_, afterGimmick, found := strings.Cut(text, "GIMMICK:")
	if !found {
		return "", "", false
	}
	gimmickPart, afterStory, found := strings.Cut(afterGimmick, "STORY:")
	if !found {
		return "", "", false
	}

	gimmick = strings.TrimSpace(gimmickPart)
	story = strings.TrimSpace(afterStory)
	if gimmick == "" || story == "" {
		return "", "", false
	}
	return gimmick, story, true
}
