package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"google.golang.org/genai"
)

// ProviderFactory creates provider services and owns their shared clients
type ProviderFactory struct {
	config       *common.Config
	logger       arbor.ILogger
	mu           sync.Mutex
	geminiClient *genai.Client
	claudeClient *anthropic.Client
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		config: config,
		logger: logger,
	}
}

// GetGeminiClient returns the Gemini client, creating it on first use
func (f *ProviderFactory) GetGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	apiKey := strings.TrimSpace(f.config.Gemini.APIKey)
	if apiKey == "" {
		return nil, &common.ConfigurationError{
			Field:  "gemini.api_key",
			Reason: "Gemini API key is required (set GEMINI_API_KEY, DOCQA_GEMINI_API_KEY or gemini.api_key)",
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

// GetClaudeClient returns the Claude client, creating it on first use.
// SDK-level retries are disabled; the Generator owns the retry loop.
func (f *ProviderFactory) GetClaudeClient() (anthropic.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claudeClient != nil {
		return *f.claudeClient, nil
	}

	apiKey := strings.TrimSpace(f.config.Claude.APIKey)
	if apiKey == "" {
		return anthropic.Client{}, &common.ConfigurationError{
			Field:  "claude.api_key",
			Reason: "Anthropic API key is required (set ANTHROPIC_API_KEY, DOCQA_CLAUDE_API_KEY or claude.api_key)",
		}
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	f.claudeClient = &client
	return client, nil
}

// NewEmbeddingProvider returns the embedding provider (always Gemini)
func (f *ProviderFactory) NewEmbeddingProvider(ctx context.Context) (interfaces.EmbeddingProvider, error) {
	client, err := f.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewGeminiService(client, f.config, f.logger), nil
}

// NewGenerationProvider returns the configured generation provider
func (f *ProviderFactory) NewGenerationProvider(ctx context.Context) (interfaces.GenerationProvider, error) {
	provider := f.config.Generation.Provider

	f.logger.Debug().
		Str("provider", string(provider)).
		Msg("Creating generation provider")

	switch provider {
	case common.LLMProviderClaude:
		client, err := f.GetClaudeClient()
		if err != nil {
			return nil, err
		}
		return NewClaudeService(client, &f.config.Claude, f.logger), nil

	case common.LLMProviderGemini, "":
		client, err := f.GetGeminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewGeminiService(client, f.config, f.logger), nil

	default:
		return nil, &common.ConfigurationError{
			Field:  "generation.provider",
			Reason: fmt.Sprintf("unsupported provider %q", provider),
		}
	}
}

// UnavailableProvider stands in for a provider that could not be
// configured. Every call returns the configuration error.
type UnavailableProvider struct {
	Err error
}

func (p *UnavailableProvider) Name() string { return "unavailable" }

func (p *UnavailableProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, p.Err
}

func (p *UnavailableProvider) Generate(ctx context.Context, request *interfaces.GenerationRequest) (string, error) {
	return "", p.Err
}

var (
	_ interfaces.EmbeddingProvider  = (*UnavailableProvider)(nil)
	_ interfaces.GenerationProvider = (*UnavailableProvider)(nil)
)
