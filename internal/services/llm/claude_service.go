package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

const providerNameClaude = "claude"

// ClaudeService generates answers with Anthropic Claude. Claude offers no
// embedding endpoint, so embeddings always come from Gemini.
type ClaudeService struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	logger      arbor.ILogger
}

// NewClaudeService creates a Claude service from a shared client
func NewClaudeService(client anthropic.Client, config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeService {
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &ClaudeService{
		client:      client,
		model:       config.Model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		logger:      logger,
	}
}

// Name returns the provider name
func (s *ClaudeService) Name() string {
	return providerNameClaude
}

// Generate sends the prompt, plus the image as a base64 block when
// present, and returns the concatenated text blocks of the reply
func (s *ClaudeService) Generate(ctx context.Context, request *interfaces.GenerationRequest) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if request.HasImage() {
		encoded := base64.StdEncoding.EncodeToString(request.Image)
		blocks = append(blocks, anthropic.NewImageBlockBase64(request.ImageMimeType, encoded))
	}
	blocks = append(blocks, anthropic.NewTextBlock(request.Prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}

	if s.temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.temperature))
	}

	start := time.Now()
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", wrapClaudeError(err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(response.String())
	if text == "" {
		return "", &interfaces.ProviderError{Provider: providerNameClaude, Err: errors.New("no response generated")}
	}

	s.logger.Debug().
		Str("model", s.model).
		Bool("has_image", request.HasImage()).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Claude generation completed")

	return text, nil
}

// wrapClaudeError attaches the HTTP status code, if any, to err
func wrapClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &interfaces.ProviderError{Provider: providerNameClaude, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &interfaces.ProviderError{Provider: providerNameClaude, Err: err}
}

var _ interfaces.GenerationProvider = (*ClaudeService)(nil)
