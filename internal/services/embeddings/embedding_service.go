package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/services/workers"
	"golang.org/x/time/rate"
)

// Options controls batching and retry behaviour of the embedding client
type Options struct {
	BatchSize         int
	BatchCooldown     time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration
	Dimensions        int
	RequestsPerSecond float64
}

// OptionsFromConfig reads embedding options from the application config
func OptionsFromConfig(config *common.Config) Options {
	return Options{
		BatchSize:         config.Embedding.BatchSize,
		BatchCooldown:     config.EmbeddingBatchCooldown(),
		MaxRetries:        config.Embedding.MaxRetries,
		RetryDelay:        config.EmbeddingRetryDelay(),
		Timeout:           config.EmbeddingTimeout(),
		Dimensions:        config.Embedding.Dimensions,
		RequestsPerSecond: config.Embedding.RequestsPerSecond,
	}
}

// Service implements EmbeddingService on top of a single-text provider
type Service struct {
	provider interfaces.EmbeddingProvider
	opts     Options
	limiter  *rate.Limiter
	logger   arbor.ILogger
}

// NewService creates a new embedding service
func NewService(provider interfaces.EmbeddingProvider, opts Options, logger arbor.ILogger) (*Service, error) {
	if provider == nil {
		return nil, &common.ConfigurationError{Field: "embedding.provider", Reason: "no embedding provider configured"}
	}
	if opts.BatchSize <= 0 {
		return nil, &common.ConfigurationError{Field: "embedding.batch_size", Reason: "must be greater than zero"}
	}
	if opts.MaxRetries < 0 {
		return nil, &common.ConfigurationError{Field: "embedding.max_retries", Reason: "must not be negative"}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.BatchSize)
	}

	return &Service{
		provider: provider,
		opts:     opts,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

// EmbedOne embeds a single text, retrying any failure with a fixed delay.
// After 1+MaxRetries attempts it returns *common.EmbeddingFailedError.
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", common.ErrInvalidRequest)
	}

	maxAttempts := 1 + s.opts.MaxRetries
	var lastErr error
	attempt := 0

	for attempt < maxAttempts {
		attempt++

		vector, err := s.embedAttempt(ctx, text)
		if err == nil {
			if attempt > 1 {
				s.logger.Debug().
					Int("attempt", attempt).
					Str("provider", s.provider.Name()).
					Msg("Embedding succeeded after retry")
			}
			return vector, nil
		}
		lastErr = err

		// Caller gave up, or no provider is configured
		if ctx.Err() != nil || errors.Is(err, common.ErrConfiguration) {
			break
		}
		if attempt >= maxAttempts {
			break
		}

		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("retry_delay", s.opts.RetryDelay).
			Msg("Embedding attempt failed, retrying")

		if err := sleep(ctx, s.opts.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	s.logger.Error().
		Err(lastErr).
		Int("attempts", attempt).
		Str("provider", s.provider.Name()).
		Msg("Embedding failed")

	return nil, &common.EmbeddingFailedError{Attempts: attempt, Err: lastErr}
}

// embedAttempt performs one rate-limited, time-bounded provider call
func (s *Service) embedAttempt(ctx context.Context, text string) ([]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	vector, err := s.provider.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, errors.New("provider returned empty embedding")
	}
	if s.opts.Dimensions > 0 && len(vector) != s.opts.Dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vector), s.opts.Dimensions)
	}
	return vector, nil
}

// EmbedMany embeds texts in fixed-size parallel batches with a cooldown
// between batches. Output order matches input order. Any item failing
// after its own retries fails the whole call.
func (s *Service) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	batchCount := (len(texts) + s.opts.BatchSize - 1) / s.opts.BatchSize
	start := time.Now()

	for batch := 0; batch < batchCount; batch++ {
		from := batch * s.opts.BatchSize
		to := from + s.opts.BatchSize
		if to > len(texts) {
			to = len(texts)
		}

		if err := s.embedBatch(ctx, texts, results, from, to); err != nil {
			return nil, err
		}

		s.logger.Debug().
			Int("batch", batch+1).
			Int("batches", batchCount).
			Int("items", to-from).
			Msg("Embedding batch complete")

		if batch < batchCount-1 {
			if err := sleep(ctx, s.opts.BatchCooldown); err != nil {
				return nil, fmt.Errorf("embedding cancelled between batches: %w", err)
			}
		}
	}

	s.logger.Info().
		Int("texts", len(texts)).
		Int("batches", batchCount).
		Dur("duration", time.Since(start)).
		Msg("Embedded texts")

	return results, nil
}

// embedBatch fans texts[from:to] out over a pool sized to the batch and
// writes each vector into results at its input index
func (s *Service) embedBatch(ctx context.Context, texts []string, results [][]float32, from, to int) error {
	errs := make([]error, to-from)

	pool := workers.NewPool(ctx, to-from, s.logger)
	pool.Start()

	for i := from; i < to; i++ {
		index := i
		job := func(jobCtx context.Context) error {
			vector, err := s.EmbedOne(jobCtx, texts[index])
			if err != nil {
				errs[index-from] = err
				return err
			}
			results[index] = vector
			return nil
		}
		if err := pool.Submit(job); err != nil {
			pool.Shutdown()
			return &common.EmbeddingFailedError{Attempts: 0, Err: err}
		}
	}
	pool.Wait()

	// Report the lowest failing index so failures are deterministic
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return &common.EmbeddingFailedError{Attempts: 0, Err: err}
	}
	// A job that panicked never recorded its own error
	if poolErrs := pool.Errors(); len(poolErrs) > 0 {
		return &common.EmbeddingFailedError{Attempts: 0, Err: poolErrs[0]}
	}
	for i := from; i < to; i++ {
		if results[i] == nil {
			return &common.EmbeddingFailedError{Attempts: 0, Err: fmt.Errorf("no embedding produced for text %d", i)}
		}
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
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

var _ interfaces.EmbeddingService = (*Service)(nil)
