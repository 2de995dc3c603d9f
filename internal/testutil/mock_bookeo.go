// Package testutil provides testing utilities for the Bookeo MCP server.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// MockResponse defines the behavior for a mock Bookeo endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockBookeo is a configurable mock Bookeo API server for testing. It
// records every request's query parameters so tests can assert the exact
// instants, cursors, and credentials sent over the wire.
type MockBookeo struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	queries  map[string][]url.Values

	RequestCount int
}

// NewMockBookeo creates a new mock Bookeo server.
func NewMockBookeo() *MockBookeo {
	mock := &MockBookeo{
		handlers: make(map[string]http.HandlerFunc),
		queries:  make(map[string][]url.Values),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.queries[r.URL.Path] = append(mock.queries[r.URL.Path], r.URL.Query())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBookeo) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBookeo) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockBookeo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.queries = make(map[string][]url.Values)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBookeo) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockBookeo) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBookeo) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Queries returns the recorded query parameters for a path, in request
// order.
func (m *MockBookeo) Queries(path string) []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]url.Values(nil), m.queries[path]...)
}

// defaultHandler answers any unconfigured path with an empty result set.
func (m *MockBookeo) defaultHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data": []}`))
}

// BookingsPage builds a /bookings response envelope. records holds the
// JSON objects for the data array; hasNext controls whether the paging
// block advertises a further page with the given token and current page.
func BookingsPage(records []string, hasNext bool, token string, currentPage int) string {
	data := "[" + strings.Join(records, ",") + "]"
	if !hasNext {
		return fmt.Sprintf(`{"data": %s, "info": {"paging": {"currentPage": %d}}}`, data, currentPage)
	}
	return fmt.Sprintf(
		`{"data": %s, "info": {"paging": {"currentPage": %d, "pageNavigationToken": %q, "nextPageURL": "/bookings?page=%d"}}}`,
		data, currentPage, token, currentPage+1)
}

// BookingRecord builds a minimal booking JSON object.
func BookingRecord(number, firstName, lastName, email string) string {
	return fmt.Sprintf(
		`{"bookingNumber": %q, "startTime": "2024-12-27T18:00:00Z", "productName": "Escape Room", "customer": {"firstName": %q, "lastName": %q, "emailAddress": %q}}`,
		number, firstName, lastName, email)
}

// NewRateLimitResponse creates a 429 response with an optional Retry-After
// value in seconds.
func NewRateLimitResponse(retryAfter string) MockResponse {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
	if retryAfter != "" {
		headers["Retry-After"] = retryAfter
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Rate limit exceeded"}`,
		Headers:    headers,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
