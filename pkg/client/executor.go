package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Sternrassler/yt-finder/pkg/keypool"
	"google.golang.org/api/youtube/v3"
)

// Call performs one request with svc and returns its decoded response.
// It is invoked once per attempt, so it must build the request from
// scratch every time.
type Call[T any] func(ctx context.Context, svc *youtube.Service) (T, error)

// Execute runs call against the pool's current key.
//
// Key-related failures (400, 403, 429) rotate the pool and try again, at
// most once per key. Any other failure returns immediately wrapped in
// ErrNotRetryable. When every key has failed ErrPoolExhausted is returned.
// Rotations persist in the pool after Execute returns.
func Execute[T any](ctx context.Context, c *Client, endpoint string, call Call[T]) (T, error) {
	var zero T
	size := c.pool.Size()

	for attempts := 0; attempts < size; {
		if err := c.limiter.Wait(ctx); err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
			return zero, fmt.Errorf("%w: rate limiter: %w", ErrNotRetryable, err)
		}

		key := c.pool.Current()
		out := attempt(ctx, c, endpoint, key, call)

		switch out.Kind {
		case OutcomeSuccess:
			return out.Value, nil

		case OutcomeCredentialFailure:
			c.logger.Warn().
				Str("endpoint", endpoint).
				Str("key", keypool.Mask(key)).
				Int("status", out.Err.StatusCode).
				Str("reason", out.Err.Reason).
				Msg("API key rejected, rotating")
			c.pool.Rotate()
			attempts++

		default:
			c.logger.Error().
				Err(out.Err).
				Str("endpoint", endpoint).
				Int("status", out.Err.StatusCode).
				Str("error_class", string(out.Err.ErrorClass)).
				Msg("YouTube request failed")
			return zero, fmt.Errorf("%w: %w", ErrNotRetryable, out.Err)
		}
	}

	poolExhaustedTotal.Inc()
	c.logger.Error().
		Str("endpoint", endpoint).
		Int("keys", size).
		Msg("All API keys exhausted")

	return zero, fmt.Errorf("%w: %s after %d attempts", ErrPoolExhausted, endpoint, size)
}

// attempt issues a single request with key and classifies the result.
func attempt[T any](ctx context.Context, c *Client, endpoint, key string, call Call[T]) Outcome[T] {
	svc, err := c.service(ctx, key)
	if err != nil {
		var zero T
		return classify(zero, err)
	}

	start := time.Now()
	v, err := call(ctx, svc)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	out := classify(v, err)
	if out.Kind == OutcomeSuccess {
		requestsTotal.WithLabelValues(endpoint, "200").Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("key", keypool.Mask(key)).
			Dur("duration", time.Since(start)).
			Msg("YouTube request succeeded")
		return out
	}

	status := "network_error"
	if out.Err.StatusCode != 0 {
		status = strconv.Itoa(out.Err.StatusCode)
	}
	requestsTotal.WithLabelValues(endpoint, status).Inc()
	errorsTotal.WithLabelValues(string(out.Err.ErrorClass)).Inc()

	return out
}
