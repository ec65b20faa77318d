// Package gemini implements the generation.Generator interface using
// Google's Gemini API to produce vocabulary card content.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/parlo-app/srs-engine/internal/generation"
	"google.golang.org/genai"
)

// defaultPromptTemplate asks the model for a strict JSON array so the
// response can be unmarshalled directly into candidate cards.
const defaultPromptTemplate = `You are building flashcards for a language learner.
Generate {{.Count}} vocabulary flashcards for the topic "{{.Topic}}".
Respond with a JSON array only, no surrounding text. Each element must have
the fields "front" (the word or phrase in the target language), "back" (the
translation), "pronunciation" (may be empty), "example" (an example sentence,
may be empty) and "difficulty" (one of "easy", "medium", "hard").`

// Config holds the settings for the Gemini generator.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// ModelName selects the model, e.g. "gemini-2.0-flash". Required.
	ModelName string

	// MaxRetries bounds retry attempts for transient API failures.
	MaxRetries int

	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration
}

// Generator implements generation.Generator backed by the Gemini API.
type Generator struct {
	client         *genai.Client
	config         Config
	promptTemplate *template.Template
	logger         *slog.Logger
}

// Ensure Generator implements generation.Generator
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a new Gemini-backed generator.
// Returns generation.ErrInvalidConfig if required settings are missing.
func NewGenerator(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	promptTemplate, err := template.New("cards").Parse(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Generator{
		client:         client,
		config:         cfg,
		promptTemplate: promptTemplate,
		logger:         logger.With(slog.String("component", "gemini_generator")),
	}, nil
}

// GenerateCards implements generation.Generator.GenerateCards.
func (g *Generator) GenerateCards(
	ctx context.Context,
	topic string,
	count int,
) ([]generation.CandidateCard, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic cannot be empty", generation.ErrGenerationFailed)
	}
	if count <= 0 {
		count = 1
	}

	var prompt bytes.Buffer
	err := g.promptTemplate.Execute(&prompt, struct {
		Topic string
		Count int
	}{Topic: topic, Count: count})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to render prompt: %v",
			generation.ErrGenerationFailed, err)
	}

	cards, err := g.callWithRetry(ctx, prompt.String())
	if err != nil {
		return nil, err
	}

	g.logger.Debug("generated candidate cards",
		slog.String("topic", topic),
		slog.Int("count", len(cards)))

	return cards, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with a
// linear backoff. Permanent failures (blocked content, malformed responses)
// are returned immediately.
func (g *Generator) callWithRetry(
	ctx context.Context,
	prompt string,
) ([]generation.CandidateCard, error) {
	var lastErr error

	for attempt := 1; attempt <= g.config.MaxRetries; attempt++ {
		cards, err := g.call(ctx, prompt)
		if err == nil {
			return cards, nil
		}
		lastErr = err

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		g.logger.Warn("gemini call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", g.config.MaxRetries),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.config.RetryDelay * time.Duration(attempt)):
		}
	}

	return nil, fmt.Errorf("%w: %w", generation.ErrTransientFailure, lastErr)
}

func (g *Generator) call(ctx context.Context, prompt string) ([]generation.CandidateCard, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.config.ModelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: response finished for safety reasons",
			generation.ErrContentBlocked)
	}

	return parseResponse(resp.Text())
}

// parseResponse unmarshals the model output into candidate cards and drops
// entries without both a front and a back.
func parseResponse(text string) ([]generation.CandidateCard, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	var parsed []generation.CandidateCard
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}

	cards := parsed[:0]
	for _, card := range parsed {
		if card.Front == "" || card.Back == "" {
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: response contained no usable cards",
			generation.ErrInvalidResponse)
	}

	return cards, nil
}
