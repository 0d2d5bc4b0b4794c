package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// StatusOverloaded is Anthropic's "overloaded" status
const StatusOverloaded = 529

// Default retry constants for answer generation
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// RetryPolicy defines how generation failures are retried
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first (default: 3)
	MaxRetries int

	// BaseDelay is multiplied by the attempt number between attempts (default: 2s)
	BaseDelay time.Duration
}

// NewDefaultRetryPolicy returns a RetryPolicy with default values
func NewDefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// MaxAttempts is the total number of provider calls the policy allows
func (p RetryPolicy) MaxAttempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return 1 + p.MaxRetries
}

// CalculateBackoff returns the wait after the given 1-based failed attempt.
// Backoff is linear: BaseDelay * attempt.
func (p RetryPolicy) CalculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(attempt)
}

// IsRetryable classifies a provider failure. Rate limiting (429),
// overload (503, 529), timeouts and failures without any status are
// retryable. Every other status, and any configuration error, is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, common.ErrConfiguration) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var providerErr *interfaces.ProviderError
	if !errors.As(err, &providerErr) {
		// No status at all, treated as a network fault
		return true
	}

	switch providerErr.StatusCode {
	case 0, http.StatusTooManyRequests, http.StatusServiceUnavailable, StatusOverloaded:
		return true
	default:
		return false
	}
}
