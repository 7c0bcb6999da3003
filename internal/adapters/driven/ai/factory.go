// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/embedding"
	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/embedding/clip"
	ollamaembed "github.com/custodia-labs/ragline-cli/internal/adapters/driven/embedding/ollama"
	anthropicllm "github.com/custodia-labs/ragline-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ragline-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ragline-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingEngine builds the embedding engine: CLIP primary plus
// an optional Ollama text fallback. An unreachable CLIP server is a
// warning, not an error, since every call degrades per chunk.
func CreateEmbeddingEngine(clipSettings domain.ClipSettings, fallbackSettings domain.FallbackSettings) driven.EmbeddingEngine {
	primary := clip.New(clip.Config{
		BaseURL:    clipSettings.BaseURL,
		Model:      clipSettings.Model,
		Dimensions: clipSettings.Dimensions,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := primary.Ping(ctx); err != nil {
		logger.Warn("clip server unreachable, embeddings will degrade: %v", err)
	}

	var fallback embedding.TextFallback
	if fallbackSettings.Enabled {
		fallback = ollamaembed.New(ollamaembed.Config{
			BaseURL:    fallbackSettings.BaseURL,
			Model:      fallbackSettings.Model,
			Dimensions: fallbackSettings.Dimensions,
		})
	}

	return embedding.NewEngine(primary, fallback)
}

// CreateLLMService creates the appropriate LLM service based on
// settings, wrapped with rate limiting when configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no LLM provider configured", domain.ErrLLMUnavailable)
	}

	var (
		svc driven.LLMService
		err error
	)

	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}

	if err != nil {
		return nil, err
	}

	if settings.RequestsPerMinute > 0 {
		svc = newRateLimitedLLM(svc, settings.RequestsPerMinute)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity before committing to it.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
