package bookeo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bookeo-tools/bookeo-mcp/internal/testutil"
)

// newTestClient creates a client against the mock server with an
// instantaneous sleeper that records requested durations.
func newTestClient(t *testing.T, mock *testutil.MockBookeo, sleeps *[]time.Duration) *Client {
	t.Helper()

	cfg := DefaultConfig(Credentials{APIKey: "test-key", SecretKey: "test-secret"})
	cfg.BaseURL = mock.URL()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
		return ctx.Err()
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectedErr error
	}{
		{
			name:   "valid config",
			config: DefaultConfig(Credentials{APIKey: "k", SecretKey: "s"}),
		},
		{
			name:        "missing api key",
			config:      DefaultConfig(Credentials{SecretKey: "s"}),
			expectedErr: ErrCredentialsMissing,
		},
		{
			name:        "missing secret key",
			config:      DefaultConfig(Credentials{APIKey: "k"}),
			expectedErr: ErrCredentialsMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("New() error = %v, want %v", err, tt.expectedErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("Client is nil")
			}
			client.Close()
		})
	}
}

func TestNew_InvalidTimezone(t *testing.T) {
	cfg := DefaultConfig(Credentials{APIKey: "k", SecretKey: "s"})
	cfg.Timezone = "Not/AZone"

	if _, err := New(cfg); err == nil {
		t.Error("Expected error for invalid timezone, got nil")
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		t.Setenv("API_KEY", "key-from-env")
		t.Setenv("API_SECRET", "secret-from-env")

		creds, err := CredentialsFromEnv()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if creds.APIKey != "key-from-env" || creds.SecretKey != "secret-from-env" {
			t.Errorf("Credentials = %+v, want values from environment", creds)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("API_KEY", "key-from-env")
		t.Setenv("API_SECRET", "")

		if _, err := CredentialsFromEnv(); !errors.Is(err, ErrCredentialsMissing) {
			t.Errorf("Expected ErrCredentialsMissing, got %v", err)
		}
	})
}

func TestGetBooking(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/123456789", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{
			"bookingNumber": "123456789",
			"startTime": "2024-12-27T18:00:00Z",
			"endTime": "2024-12-27T19:00:00Z",
			"productName": "Escape Room",
			"productId": "P1",
			"customer": {
				"firstName": "Ada",
				"lastName": "Lovelace",
				"emailAddress": "ada@example.com",
				"phoneNumbers": [{"number": "555-0100"}]
			},
			"participants": {"numbers": [{"number": 4}]},
			"price": {"totalGross": {"amount": "120.00", "currency": "CAD"}}
		}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})

	client := newTestClient(t, mock, nil)

	booking, err := client.GetBooking(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("GetBooking() failed: %v", err)
	}

	if booking.BookingNumber != "123456789" {
		t.Errorf("BookingNumber = %q, want %q", booking.BookingNumber, "123456789")
	}
	if booking.Customer.FirstName != "Ada" {
		t.Errorf("Customer.FirstName = %q, want %q", booking.Customer.FirstName, "Ada")
	}

	queries := mock.Queries("/bookings/123456789")
	if len(queries) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(queries))
	}
	query := queries[0]
	if query.Get("expandCustomer") != "true" {
		t.Errorf("expandCustomer = %q, want %q", query.Get("expandCustomer"), "true")
	}
	if query.Get("apiKey") != "test-key" || query.Get("secretKey") != "test-secret" {
		t.Error("Expected credentials as query parameters")
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/999", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message": "Booking not found"}`,
	})

	client := newTestClient(t, mock, nil)

	_, err := client.GetBooking(context.Background(), "999")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestGetBookingPayments(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/123/payments", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{"data": [
			{"amount": {"amount": "50.00", "currency": "CAD"}, "paymentMethod": "creditCard", "gatewayName": "Stripe"},
			{"amount": {"amount": "25.00", "currency": "CAD"}, "paymentMethod": "cash"}
		]}`,
	})

	client := newTestClient(t, mock, nil)

	payments, err := client.GetBookingPayments(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetBookingPayments() failed: %v", err)
	}

	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments, got %d", len(payments))
	}
	if payments[0].GatewayName != "Stripe" {
		t.Errorf("GatewayName = %q, want %q", payments[0].GatewayName, "Stripe")
	}
	if payments[1].GatewayName != "" {
		t.Errorf("GatewayName = %q, want empty (manual payment)", payments[1].GatewayName)
	}
}

func TestGetBookingPayments_Empty(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/123/payments", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{}`,
	})

	client := newTestClient(t, mock, nil)

	payments, err := client.GetBookingPayments(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetBookingPayments() failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("Expected empty payments, got %d", len(payments))
	}
}

func TestGet_RateLimitRetry(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	// Two 429 responses, then success. The client must wait the advertised
	// duration each time and re-issue the identical request.
	attempts := 0
	mock.SetHandler("/bookings/42", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"bookingNumber": "42", "startTime": "", "productName": "", "customer": {"firstName": "", "lastName": "", "emailAddress": ""}, "participants": {"numbers": []}, "price": {}}`))
	})

	var sleeps []time.Duration
	client := newTestClient(t, mock, &sleeps)

	booking, err := client.GetBooking(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetBooking() failed: %v", err)
	}
	if booking.BookingNumber != "42" {
		t.Errorf("BookingNumber = %q, want %q", booking.BookingNumber, "42")
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts (2 retries), got %d", attempts)
	}
	if len(sleeps) != 2 {
		t.Fatalf("Expected 2 waits, got %d", len(sleeps))
	}
	for i, d := range sleeps {
		if d != 3*time.Second {
			t.Errorf("Wait %d = %v, want 3s", i, d)
		}
	}
}

func TestGet_RateLimitDefaultWait(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	attempts := 0
	mock.SetHandler("/bookings/42/payments", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// No Retry-After header.
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": []}`))
	})

	var sleeps []time.Duration
	client := newTestClient(t, mock, &sleeps)

	if _, err := client.GetBookingPayments(context.Background(), "42"); err != nil {
		t.Fatalf("GetBookingPayments() failed: %v", err)
	}

	if len(sleeps) != 1 {
		t.Fatalf("Expected 1 wait, got %d", len(sleeps))
	}
	if sleeps[0] != 60*time.Second {
		t.Errorf("Wait = %v, want 60s default", sleeps[0])
	}
}

func TestGet_RateLimitContextCancelled(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/42", testutil.NewRateLimitResponse("5"))

	ctx, cancel := context.WithCancel(context.Background())

	cfg := DefaultConfig(Credentials{APIKey: "k", SecretKey: "s"})
	cfg.BaseURL = mock.URL()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	if _, err := client.GetBooking(ctx, "42"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGet_ServerErrorTerminal(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	mock.SetResponse("/bookings/42", testutil.NewServerErrorResponse())

	client := newTestClient(t, mock, nil)

	_, err := client.GetBooking(context.Background(), "42")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	// Terminal failures do not retry.
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("Request count = %d, want 1", got)
	}
}

func TestClose(t *testing.T) {
	mock := testutil.NewMockBookeo()
	defer mock.Close()

	client := newTestClient(t, mock, nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Close is idempotent.
	if err := client.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}

	if _, err := client.GetBooking(context.Background(), "42"); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Expected ErrClientClosed after Close, got %v", err)
	}
}
