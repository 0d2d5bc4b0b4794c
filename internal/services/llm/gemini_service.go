package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiService embeds text and generates answers with Google Gemini.
// The underlying genai client is shared and safe for concurrent use.
type GeminiService struct {
	client         *genai.Client
	model          string
	embeddingModel string
	dimensions     int
	temperature    float32
	logger         arbor.ILogger
}

// NewGeminiService creates a Gemini service from a shared client
func NewGeminiService(client *genai.Client, config *common.Config, logger arbor.ILogger) *GeminiService {
	return &GeminiService{
		client:         client,
		model:          config.Gemini.Model,
		embeddingModel: config.Embedding.Model,
		dimensions:     config.Embedding.Dimensions,
		temperature:    config.Gemini.Temperature,
		logger:         logger,
	}
}

// Name returns the provider name
func (s *GeminiService) Name() string {
	return providerNameGemini
}

// Embed returns the embedding vector for one text
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	var config *genai.EmbedContentConfig
	if s.dimensions > 0 {
		config = &genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(s.dimensions)),
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	start := time.Now()
	resp, err := s.client.Models.EmbedContent(ctx, s.embeddingModel, contents, config)
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, &interfaces.ProviderError{Provider: providerNameGemini, Err: errors.New("no embedding returned")}
	}

	values := resp.Embeddings[0].Values

	s.logger.Debug().
		Str("model", s.embeddingModel).
		Int("text_length", len(text)).
		Int("embedding_dim", len(values)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return values, nil
}

// Generate sends the prompt, plus the inline image when present, and
// returns the reply text
func (s *GeminiService) Generate(ctx context.Context, request *interfaces.GenerationRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(request.Prompt)}
	if request.HasImage() {
		parts = append(parts, genai.NewPartFromBytes(request.Image, request.ImageMimeType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.temperature),
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", wrapGeminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &interfaces.ProviderError{Provider: providerNameGemini, Err: errors.New("no response generated")}
	}

	s.logger.Debug().
		Str("model", s.model).
		Bool("has_image", request.HasImage()).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Gemini generation completed")

	return text, nil
}

// wrapGeminiError attaches the API status code, if any, to err
func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &interfaces.ProviderError{Provider: providerNameGemini, StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &interfaces.ProviderError{Provider: providerNameGemini, StatusCode: apiErrPtr.Code, Err: err}
	}
	return &interfaces.ProviderError{Provider: providerNameGemini, Err: err}
}

var (
	_ interfaces.EmbeddingProvider  = (*GeminiService)(nil)
	_ interfaces.GenerationProvider = (*GeminiService)(nil)
)
