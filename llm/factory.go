package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/Brawl345/forumbot/logger"
	"github.com/Brawl345/forumbot/model"
)

var log = logger.New("llm")

// Builder creates a provider client for an API key.
type Builder func(ctx context.Context, apiKey string) (Client, error)

type Factory struct {
	mu       sync.Mutex
	builders map[string]Builder

	client   Client
	apiKey   string
	provider string
}

func NewFactory() *Factory {
	return &Factory{
		builders: map[string]Builder{
			model.ProviderOpenAI: func(_ context.Context, apiKey string) (Client, error) {
				return NewOpenAIClient(apiKey), nil
			},
			model.ProviderGemini: func(ctx context.Context, apiKey string) (Client, error) {
				client, err := NewGeminiClient(ctx, apiKey)
				if err != nil {
					return nil, err
				}
				return client, nil
			},
		},
	}
}

// WithBuilder replaces the builder for a provider.
func (f *Factory) WithBuilder(provider string, builder Builder) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[provider] = builder
	return f
}

// Client returns the cached client and rebuilds it when the API key or provider changed.
func (f *Factory) Client(ctx context.Context, settings model.Settings) (Client, error) {
	if settings.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil && f.apiKey == settings.APIKey && f.provider == settings.Provider {
		return f.client, nil
	}

	builder, ok := f.builders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", settings.Provider)
	}

	client, err := builder(context.WithoutCancel(ctx), settings.APIKey)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", settings.Provider).
		Msg("Created LLM client")

	f.client = client
	f.apiKey = settings.APIKey
	f.provider = settings.Provider
	return client, nil
}
