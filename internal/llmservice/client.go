// Package llmservice wires the inference LLM used for answer generation.
package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/swaraj404/DeepDoc/internal/config"
)

// GenerateFunc produces text for a prompt. Implementations have unbounded
// latency; callers must bound it with the context.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// NewGenerator builds a GenerateFunc for the configured provider, wrapped
// with retry-with-backoff. Generation is the one dependency expected to see
// transient failures, so it is the only retried call in the system.
func NewGenerator(cfg *config.LLMConfig) (GenerateFunc, error) {
	llm, err := newModel(cfg)
	if err != nil {
		return nil, err
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		return llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	}
	return WithRetry(generate, cfg.Retries, time.Second), nil
}

func newModel(cfg *config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "", "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai client: %w", err)
		}
		return llm, nil
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown inference provider: %s", cfg.Provider)
	}
}

// WithRetry retries fn up to retries times with doubling backoff. The
// caller's context deadline is respected between attempts; a context error
// is returned immediately, never retried.
func WithRetry(fn GenerateFunc, retries int, initialDelay time.Duration) GenerateFunc {
	if retries < 0 {
		retries = 0
	}
	return func(ctx context.Context, prompt string) (string, error) {
		delay := initialDelay
		var lastErr error
		for attempt := 0; attempt <= retries; attempt++ {
			if attempt > 0 {
				log.Warn().Err(lastErr).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying generation")
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(delay):
				}
				delay *= 2
			}
			text, err := fn(ctx, prompt)
			if err == nil {
				return text, nil
			}
			if ctx.Err() != nil {
				return "", fmt.Errorf("generation aborted: %w", ctx.Err())
			}
			lastErr = err
		}
		return "", lastErr
	}
}
