package llm

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/services/prompt"
)

// Generator calls a generation provider with bounded retries and parses
// the reply into an answer and follow-up questions
type Generator struct {
	provider interfaces.GenerationProvider
	policy   RetryPolicy
	timeout  time.Duration
	logger   arbor.ILogger
	wait     func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a generator around provider
func NewGenerator(provider interfaces.GenerationProvider, policy RetryPolicy, timeout time.Duration, logger arbor.ILogger) *Generator {
	return &Generator{
		provider: provider,
		policy:   policy,
		timeout:  timeout,
		logger:   logger,
		wait:     sleepContext,
	}
}

// NewGeneratorFromConfig creates a generator using the configured retry budget
func NewGeneratorFromConfig(provider interfaces.GenerationProvider, config *common.Config, logger arbor.ILogger) *Generator {
	policy := RetryPolicy{
		MaxRetries: config.Generation.MaxRetries,
		BaseDelay:  config.GenerationBaseDelay(),
	}
	return NewGenerator(provider, policy, config.GenerationTimeout(), logger)
}

// Generate issues the prompt (with the image inline when present) and
// parses the reply. Retryable failures wait BaseDelay*attempt before the
// next attempt. Exhaustion or a terminal failure returns
// *common.GenerationFailedError.
func (g *Generator) Generate(ctx context.Context, spec prompt.Spec, image []byte, mimeType string) (*Answer, error) {
	request := &interfaces.GenerationRequest{
		Prompt:        spec.Text,
		Image:         image,
		ImageMimeType: mimeType,
	}

	maxAttempts := g.policy.MaxAttempts()

	for attempt := 1; ; attempt++ {
		raw, err := g.attempt(ctx, request)
		if err == nil {
			answer := ParseReply(raw)
			answer.Attempts = attempt

			g.logger.Debug().
				Str("provider", g.provider.Name()).
				Str("query_type", string(spec.QueryType)).
				Bool("has_image", request.HasImage()).
				Int("attempts", attempt).
				Int("follow_ups", len(answer.FollowUps)).
				Msg("Generated answer")

			return answer, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &common.GenerationFailedError{Attempts: attempt, Terminal: true, Err: ctxErr}
		}

		if !IsRetryable(err) {
			g.logger.Error().
				Err(err).
				Str("provider", g.provider.Name()).
				Int("attempt", attempt).
				Msg("Generation failed with terminal error")
			return nil, &common.GenerationFailedError{Attempts: attempt, Terminal: true, Err: err}
		}

		if attempt >= maxAttempts {
			g.logger.Error().
				Err(err).
				Str("provider", g.provider.Name()).
				Int("attempts", attempt).
				Msg("Generation retry budget exhausted")
			return nil, &common.GenerationFailedError{Attempts: attempt, Err: err}
		}

		delay := g.policy.CalculateBackoff(attempt)
		g.logger.Warn().
			Err(err).
			Str("provider", g.provider.Name()).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Msg("Generation failed, retrying")

		if err := g.wait(ctx, delay); err != nil {
			return nil, &common.GenerationFailedError{Attempts: attempt, Terminal: true, Err: err}
		}
	}
}

// attempt makes one time-bounded provider call
func (g *Generator) attempt(ctx context.Context, request *interfaces.GenerationRequest) (string, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	raw, err := g.provider.Generate(callCtx, request)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", &interfaces.ProviderError{Provider: g.provider.Name(), Err: errors.New("empty reply")}
	}
	return raw, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
