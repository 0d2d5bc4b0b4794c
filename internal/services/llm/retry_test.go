package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

func TestIsRetryable(t *testing.T) {
	providerErr := func(status int) error {
		return &interfaces.ProviderError{Provider: "mock", StatusCode: status, Err: errors.New("fault")}
	}

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"rate limited", providerErr(429), true},
		{"service unavailable", providerErr(503), true},
		{"overloaded", providerErr(529), true},
		{"no status", providerErr(0), true},
		{"plain error", errors.New("connection reset"), true},
		{"wrapped rate limit", fmt.Errorf("call: %w", providerErr(429)), true},
		{"timeout", context.DeadlineExceeded, true},
		{"provider timeout", &interfaces.ProviderError{Provider: "mock", Err: context.DeadlineExceeded}, true},
		{"cancelled", context.Canceled, false},
		{"bad request", providerErr(400), false},
		{"unauthorized", providerErr(401), false},
		{"forbidden", providerErr(403), false},
		{"not found", providerErr(404), false},
		{"internal", providerErr(500), false},
		{"missing api key", &common.ConfigurationError{Field: "gemini.api_key", Reason: "not set"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	policy := NewDefaultRetryPolicy()
	assert.Equal(t, 4, policy.MaxAttempts())
	assert.Equal(t, 2*time.Second, policy.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, policy.CalculateBackoff(2))
	assert.Equal(t, 6*time.Second, policy.CalculateBackoff(3))

	assert.Equal(t, 1, RetryPolicy{MaxRetries: 0}.MaxAttempts())
	assert.Equal(t, 1, RetryPolicy{MaxRetries: -2}.MaxAttempts())
}
