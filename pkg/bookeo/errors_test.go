package bookeo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		StatusCode: http.StatusBadGateway,
		Endpoint:   "/bookings",
		Message:    "502 Bad Gateway",
	}

	msg := err.Error()
	if !strings.Contains(msg, "502") {
		t.Errorf("Error message %q should contain the status code", msg)
	}
	if !strings.Contains(msg, "/bookings") {
		t.Errorf("Error message %q should contain the endpoint", msg)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "404 api error",
			err:      &APIError{StatusCode: http.StatusNotFound, Endpoint: "/bookings/1"},
			expected: true,
		},
		{
			name:     "wrapped 404",
			err:      fmt.Errorf("lookup: %w", &APIError{StatusCode: http.StatusNotFound}),
			expected: true,
		},
		{
			name:     "500 api error",
			err:      &APIError{StatusCode: http.StatusInternalServerError},
			expected: false,
		},
		{
			name:     "unrelated error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}
