// Package tools exposes Bookeo lookups as MCP tools. Each tool drives the
// bookeo client, reshapes its output into flat summaries, and returns a
// single JSON value. Failures become {"error": ...} payloads; a tool call
// never surfaces a protocol error to the agent.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/bookeo-tools/bookeo-mcp/pkg/bookeo"
	"github.com/bookeo-tools/bookeo-mcp/pkg/logging"
)

const (
	// maxDaysBack caps the customer-search lookback window.
	maxDaysBack = 365

	// maxRangeDays caps the date-range span; the inclusive end date adds
	// one day, hence 366.
	maxRangeDays = 366

	dateFormat = "2006-01-02"
)

// Toolset owns the four Bookeo tools and the client they share.
type Toolset struct {
	client *bookeo.Client
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a Toolset around an existing client. The client's lifecycle
// stays with the caller.
func New(client *bookeo.Client) *Toolset {
	return &Toolset{
		client: client,
		logger: logging.NewLogger("tools"),
		now:    time.Now,
	}
}

// Register adds the four Bookeo tools to the MCP server.
func (t *Toolset) Register(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("get_booking",
		mcp.WithDescription("Look up a specific booking by its booking number, including customer, pricing, and product info."),
		mcp.WithString("booking_number",
			mcp.Required(),
			mcp.Description("The Bookeo booking number (e.g. \"123456789\")"),
		),
	), t.handleGetBooking)

	srv.AddTool(mcp.NewTool("search_bookings_by_customer",
		mcp.WithDescription("Search for bookings by customer name or email. At least one of the two filters is required."),
		mcp.WithString("customer_name",
			mcp.Description("Full or partial customer name (case-insensitive)"),
		),
		mcp.WithString("customer_email",
			mcp.Description("Full or partial email address (case-insensitive)"),
		),
		mcp.WithNumber("days_back",
			mcp.Description("How many days back to search (default 90, max 365)"),
			mcp.DefaultNumber(90),
		),
	), t.handleSearchByCustomer)

	srv.AddTool(mcp.NewTool("search_bookings_by_date",
		mcp.WithDescription("Find all bookings within a date range. Both dates are inclusive."),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Start date in YYYY-MM-DD format"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("End date in YYYY-MM-DD format"),
		),
		mcp.WithBoolean("include_canceled",
			mcp.Description("Whether to include canceled bookings"),
			mcp.DefaultBool(false),
		),
	), t.handleSearchByDate)

	srv.AddTool(mcp.NewTool("get_booking_payments",
		mcp.WithDescription("Get payment details for a specific booking, including totals, methods, and manual vs Stripe detection."),
		mcp.WithString("booking_number",
			mcp.Required(),
			mcp.Description("The Bookeo booking number"),
		),
	), t.handleGetPayments)
}

// errorPayload is the uniform failure shape at the tool boundary.
type errorPayload struct {
	Error string `json:"error"`
}

// jsonResult marshals v into a single text content block.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(format string, args ...any) (*mcp.CallToolResult, error) {
	return jsonResult(errorPayload{Error: fmt.Sprintf(format, args...)})
}

func (t *Toolset) handleGetBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingNumber, err := req.RequireString("booking_number")
	if err != nil {
		return errorResult("booking_number is required")
	}

	booking, err := t.client.GetBooking(ctx, bookingNumber)
	if err != nil {
		t.logger.Warn().Err(err).Str("booking_number", bookingNumber).Msg("Booking lookup failed")
		return errorResult("Booking not found or API error: %v", err)
	}

	return jsonResult(detailBooking(booking))
}

func (t *Toolset) handleSearchByCustomer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customerName := req.GetString("customer_name", "")
	customerEmail := req.GetString("customer_email", "")
	daysBack := req.GetInt("days_back", 90)

	if customerName == "" && customerEmail == "" {
		return errorResult("Must provide either customer_name or customer_email")
	}
	if daysBack > maxDaysBack {
		daysBack = maxDaysBack
	}

	nameLower := strings.ToLower(customerName)
	emailLower := strings.ToLower(customerEmail)

	// Half-open window ending tomorrow, so the current day is covered.
	now := t.now()
	start := now.AddDate(0, 0, -daysBack)
	end := now.AddDate(0, 0, 1)

	results := make([]BookingSummary, 0)
	for booking, err := range t.client.SearchBookings(ctx, start, end, bookeo.SearchOptions{ExpandCustomer: true}) {
		if err != nil {
			t.logger.Warn().Err(err).Msg("Customer search failed")
			return errorResult("Search failed: %v", err)
		}

		customer := formatCustomer(&booking)
		nameMatch := nameLower != "" && strings.Contains(strings.ToLower(customer.Name), nameLower)
		emailMatch := emailLower != "" && strings.Contains(strings.ToLower(customer.Email), emailLower)

		if nameMatch || emailMatch {
			results = append(results, summarizeBooking(&booking))
		}
	}

	return jsonResult(results)
}

func (t *Toolset) handleSearchByDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := req.RequireString("start_date")
	if err != nil {
		return errorResult("start_date is required")
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return errorResult("end_date is required")
	}
	includeCanceled := req.GetBool("include_canceled", false)

	start, err := time.Parse(dateFormat, startDate)
	if err != nil {
		return errorResult("Invalid date format. Use YYYY-MM-DD")
	}
	parsedEnd, err := time.Parse(dateFormat, endDate)
	if err != nil {
		return errorResult("Invalid date format. Use YYYY-MM-DD")
	}

	// The end date is inclusive: extend one day to form a half-open window.
	end := parsedEnd.AddDate(0, 0, 1)

	if days := int(end.Sub(start) / (24 * time.Hour)); days > maxRangeDays {
		return errorResult("Date range cannot exceed 365 days")
	}

	results := make([]BookingSummary, 0)
	for booking, err := range t.client.SearchBookings(ctx, start, end, bookeo.SearchOptions{
		ExpandCustomer:  true,
		IncludeCanceled: includeCanceled,
	}) {
		if err != nil {
			t.logger.Warn().Err(err).Msg("Date search failed")
			return errorResult("Search failed: %v", err)
		}
		results = append(results, summarizeBooking(&booking))
	}

	return jsonResult(results)
}

func (t *Toolset) handleGetPayments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingNumber, err := req.RequireString("booking_number")
	if err != nil {
		return errorResult("booking_number is required")
	}

	payments, err := t.client.GetBookingPayments(ctx, bookingNumber)
	if err != nil {
		t.logger.Warn().Err(err).Str("booking_number", bookingNumber).Msg("Payment lookup failed")
		return errorResult("Could not fetch payments: %v", err)
	}

	return jsonResult(buildPaymentReport(bookingNumber, payments))
}
