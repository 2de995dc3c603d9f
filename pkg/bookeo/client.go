// Package bookeo provides the core Bookeo HTTP client with credential
// handling, rate limit backpressure, date-range chunking, and cursor-based
// pagination.
package bookeo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bookeo-tools/bookeo-mcp/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Bookeo client operations.
var (
	bookeoRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookeo_requests_total",
		Help: "Total Bookeo requests by endpoint and status",
	}, []string{"endpoint", "status"})

	bookeoRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookeo_request_duration_seconds",
		Help:    "Bookeo request duration in seconds by endpoint, rate limit waits included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 60},
	}, []string{"endpoint"})
)

const (
	// DefaultBaseURL is the Bookeo v2 API endpoint.
	DefaultBaseURL = "https://api.bookeo.com/v2"

	// DefaultTimezone is the reference zone for interpreting calendar days.
	DefaultTimezone = "America/Los_Angeles"

	// itemsPerPage is fixed; Bookeo caps search pages at 100 records.
	itemsPerPage = 100

	// maxChunkDays is the longest date range Bookeo accepts per search.
	maxChunkDays = 30

	defaultTimeout = 30 * time.Second
)

// Credentials is the opaque Bookeo key pair. Both halves are attached to
// every request as query parameters.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// CredentialsFromEnv loads the key pair from API_KEY and API_SECRET.
func CredentialsFromEnv() (Credentials, error) {
	key := os.Getenv("API_KEY")
	secret := os.Getenv("API_SECRET")
	if key == "" || secret == "" {
		return Credentials{}, ErrCredentialsMissing
	}
	return Credentials{APIKey: key, SecretKey: secret}, nil
}

// Config holds the client configuration.
type Config struct {
	// Credentials is the Bookeo key pair (REQUIRED).
	Credentials Credentials

	// BaseURL overrides the API endpoint (for tests).
	BaseURL string

	// Timezone is the IANA zone used to interpret calendar days before
	// conversion to UTC.
	Timezone string

	// Timeout is the per-request transport timeout.
	Timeout time.Duration

	// ChunkPause is the courtesy delay between search chunks.
	ChunkPause time.Duration

	// Sleep suspends the calling goroutine; injectable for tests.
	Sleep ratelimit.Sleeper
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(creds Credentials) Config {
	return Config{
		Credentials: creds,
		BaseURL:     DefaultBaseURL,
		Timezone:    DefaultTimezone,
		Timeout:     defaultTimeout,
		ChunkPause:  ratelimit.ChunkPause,
		Sleep:       ratelimit.Sleep,
	}
}

// Client is the Bookeo API client. It is safe for concurrent use; the
// transport is created lazily on first request and released by Close.
type Client struct {
	config   Config
	location *time.Location
	logger   zerolog.Logger

	mu         sync.Mutex
	httpClient *http.Client
	closed     bool
}

// New creates a new Bookeo client.
func New(cfg Config) (*Client, error) {
	if cfg.Credentials.APIKey == "" || cfg.Credentials.SecretKey == "" {
		return nil, ErrCredentialsMissing
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ChunkPause <= 0 {
		cfg.ChunkPause = ratelimit.ChunkPause
	}
	if cfg.Sleep == nil {
		cfg.Sleep = ratelimit.Sleep
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	logger := log.With().Str("component", "bookeo-client").Logger()

	return &Client{
		config:   cfg,
		location: location,
		logger:   logger,
	}, nil
}

// NewFromEnv creates a client with credentials from the environment.
func NewFromEnv() (*Client, error) {
	creds, err := CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return New(DefaultConfig(creds))
}

// transport returns the lazily created HTTP client.
func (c *Client) transport() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.config.Timeout}
	}
	return c.httpClient, nil
}

// Close releases the underlying transport. The client must not be used
// after Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	return nil
}

// get performs an authenticated GET and decodes the JSON response into out.
// A 429 response is never an error: the client waits for the advertised
// Retry-After duration and re-issues the identical request, without an
// attempt limit. Any other non-2xx status is terminal for the call.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	httpClient, err := c.transport()
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.config.Credentials.APIKey)
	params.Set("secretKey", c.config.Credentials.SecretKey)

	requestURL := c.config.BaseURL + endpoint + "?" + params.Encode()

	start := time.Now()
	defer func() {
		bookeoRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		// Log the endpoint path only; the query string carries credentials.
		c.logger.Debug().
			Str("endpoint", endpoint).
			Msg("Executing Bookeo request")

		resp, err := httpClient.Do(req)
		if err != nil {
			bookeoRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Bookeo request failed")
			return fmt.Errorf("bookeo request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := ratelimit.RetryAfter(resp.Header)
			resp.Body.Close()
			bookeoRequestsTotal.WithLabelValues(endpoint, "429").Inc()

			if err := ratelimit.Wait(ctx, c.config.Sleep, wait, c.logger); err != nil {
				return err
			}
			continue
		}

		bookeoRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Msg("Bookeo request error")
			return &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    resp.Status,
			}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// GetBooking fetches a single booking by number with customer expansion.
// A missing booking surfaces as an *APIError; see IsNotFound.
func (c *Client) GetBooking(ctx context.Context, bookingNumber string) (*Booking, error) {
	params := url.Values{}
	params.Set("expandCustomer", "true")

	var booking Booking
	if err := c.get(ctx, "/bookings/"+bookingNumber, params, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingPayments returns the payments recorded for one booking.
// Bookings without payments yield an empty slice.
func (c *Client) GetBookingPayments(ctx context.Context, bookingNumber string) ([]Payment, error) {
	var page paymentsPage
	if err := c.get(ctx, "/bookings/"+bookingNumber+"/payments", nil, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return []Payment{}, nil
	}
	return page.Data, nil
}
