// Package ratelimit implements Bookeo rate limit backpressure handling.
// Bookeo signals backpressure with HTTP 429 and a Retry-After header; the
// client waits out the advertised duration and re-issues the request.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit waits.
var (
	bookeoRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookeo_rate_limit_waits_total",
		Help: "Total number of 429 responses absorbed by waiting",
	})

	bookeoRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookeo_rate_limit_wait_seconds",
		Help:    "Server-advertised wait duration before retrying",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120},
	})
)

const (
	// DefaultRetryAfter is used when a 429 response carries no usable
	// Retry-After header. Bookeo documents the value in seconds.
	DefaultRetryAfter = 60 * time.Second

	// ChunkPause is the courtesy delay between consecutive search chunks.
	ChunkPause = 500 * time.Millisecond
)

// Sleeper suspends the calling goroutine for d or until ctx is done.
// Injectable so tests can simulate elapsed time without real delays.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryAfter extracts the wait duration from a 429 response's headers.
// Missing or malformed values fall back to DefaultRetryAfter.
func RetryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return DefaultRetryAfter
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return DefaultRetryAfter
	}

	return time.Duration(seconds) * time.Second
}

// Wait records the wait in metrics and suspends through sleep. The retry
// loop around it is unbounded; only context cancellation ends it.
func Wait(ctx context.Context, sleep Sleeper, d time.Duration, logger zerolog.Logger) error {
	bookeoRateLimitWaitsTotal.Inc()
	bookeoRateLimitWaitSeconds.Observe(d.Seconds())

	logger.Warn().
		Dur("retry_after", d).
		Msg("Rate limited - waiting before retry")

	return sleep(ctx, d)
}
