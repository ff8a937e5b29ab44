// Package embedding wires langchaingo embedders and a bounded query cache.
package embedding

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/swaraj404/DeepDoc/internal/config"
)

// NewEmbedder builds an embedder for the configured provider. The embedding
// dimension is fixed by the provider's model and must match the store's
// vector size.
func NewEmbedder(cfg *config.LLMConfig) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case "", "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedding client: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama embedding client: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	default:
		log.Error().Str("provider", cfg.Provider).Msg("Unknown embedding provider")
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
