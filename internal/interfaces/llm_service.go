package interfaces

import (
	"context"
	"fmt"
)

// EmbeddingProvider turns one text into a vector. Implementations are
// shared, stateless clients safe for concurrent use.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// GenerationRequest is a provider-agnostic generation call
type GenerationRequest struct {
	Prompt        string
	Image         []byte // Optional inline attachment
	ImageMimeType string
}

// HasImage reports whether an inline attachment accompanies the prompt
func (r *GenerationRequest) HasImage() bool {
	return len(r.Image) > 0
}

// GenerationProvider returns the raw reply text for a prompt.
// Failures should be reported as *ProviderError when a status is known.
type GenerationProvider interface {
	Generate(ctx context.Context, request *GenerationRequest) (string, error)
	Name() string
}

// ProviderError is a provider failure with an optional numeric status.
// StatusCode 0 means the failure carried no status (network fault).
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
