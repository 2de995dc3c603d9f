package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bookeo-tools/bookeo-mcp/pkg/bookeo"
)

// fallbackCurrency is reported when no payment carries a currency code.
const fallbackCurrency = "CAD"

// CustomerSummary is the flat customer projection of a booking.
type CustomerSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PriceSummary passes the booking's monetary blocks through untouched.
type PriceSummary struct {
	TotalGross json.RawMessage `json:"total_gross,omitempty"`
	TotalPaid  json.RawMessage `json:"total_paid,omitempty"`
	BalanceDue json.RawMessage `json:"balance_due,omitempty"`
}

// BookingSummary is the search-result projection of a booking.
type BookingSummary struct {
	BookingNumber string          `json:"booking_number"`
	StartTime     string          `json:"start_time"`
	ProductName   string          `json:"product_name"`
	Customer      CustomerSummary `json:"customer"`
	Participants  int             `json:"participants"`
	Price         PriceSummary    `json:"price"`
}

// BookingDetail is the full projection returned by get_booking.
type BookingDetail struct {
	BookingNumber    string            `json:"booking_number"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	ProductName      string            `json:"product_name"`
	ProductID        string            `json:"product_id"`
	Customer         CustomerSummary   `json:"customer"`
	Participants     int               `json:"participants"`
	Price            PriceSummary      `json:"price"`
	PriceAdjustments []json.RawMessage `json:"price_adjustments"`
	CreationTime     string            `json:"creation_time"`
	Source           json.RawMessage   `json:"source,omitempty"`
}

// PaymentDetail is the per-payment analysis of get_booking_payments.
type PaymentDetail struct {
	Amount       bookeo.Money `json:"amount"`
	Method       string       `json:"method"`
	Gateway      string       `json:"gateway"`
	IsManual     bool         `json:"is_manual"`
	Reason       string       `json:"reason"`
	Agent        string       `json:"agent"`
	ReceivedTime string       `json:"received_time"`
}

// PaymentReport aggregates a booking's payments.
type PaymentReport struct {
	BookingNumber    string          `json:"booking_number"`
	PaymentCount     int             `json:"payment_count"`
	TotalPaid        float64         `json:"total_paid"`
	Currency         string          `json:"currency"`
	HasManualPayment bool            `json:"has_manual_payment"`
	HasStripePayment bool            `json:"has_stripe_payment"`
	PaymentMethods   []string        `json:"payment_methods"`
	Payments         []PaymentDetail `json:"payments"`
}

// formatCustomer projects the customer block: name is the trimmed join of
// first and last name, phone is the first listed number if any.
func formatCustomer(b *bookeo.Booking) CustomerSummary {
	phone := ""
	if len(b.Customer.PhoneNumbers) > 0 {
		phone = b.Customer.PhoneNumbers[0].Number
	}
	return CustomerSummary{
		Name:  strings.TrimSpace(b.Customer.FirstName + " " + b.Customer.LastName),
		Email: b.Customer.EmailAddress,
		Phone: phone,
	}
}

func formatPrice(b *bookeo.Booking) PriceSummary {
	return PriceSummary{
		TotalGross: b.Price.TotalGross,
		TotalPaid:  b.Price.TotalPaid,
		BalanceDue: b.Price.BalanceDue,
	}
}

// countParticipants sums all participant-category counts.
func countParticipants(b *bookeo.Booking) int {
	total := 0
	for _, n := range b.Participants.Numbers {
		total += n.Number
	}
	return total
}

func summarizeBooking(b *bookeo.Booking) BookingSummary {
	return BookingSummary{
		BookingNumber: b.BookingNumber,
		StartTime:     b.StartTime,
		ProductName:   b.ProductName,
		Customer:      formatCustomer(b),
		Participants:  countParticipants(b),
		Price:         formatPrice(b),
	}
}

func detailBooking(b *bookeo.Booking) BookingDetail {
	adjustments := b.PriceAdjustments
	if adjustments == nil {
		adjustments = []json.RawMessage{}
	}
	return BookingDetail{
		BookingNumber:    b.BookingNumber,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		ProductName:      b.ProductName,
		ProductID:        b.ProductID,
		Customer:         formatCustomer(b),
		Participants:     countParticipants(b),
		Price:            formatPrice(b),
		PriceAdjustments: adjustments,
		CreationTime:     b.CreationTime,
		Source:           b.Source,
	}
}

// analyzePayment classifies one payment. An empty gateway name means the
// payment was recorded manually.
func analyzePayment(p bookeo.Payment) PaymentDetail {
	gateway := p.GatewayName
	if gateway == "" {
		gateway = "manual"
	}
	method := p.PaymentMethod
	if method == "" {
		method = "unknown"
	}
	return PaymentDetail{
		Amount:       p.Amount,
		Method:       method,
		Gateway:      gateway,
		IsManual:     p.GatewayName == "",
		Reason:       p.Reason,
		Agent:        p.Agent,
		ReceivedTime: p.ReceivedTime,
	}
}

// parseAmount reads a Bookeo decimal string. Absent or unparsable amounts
// count as zero rather than failing the whole report.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}

// buildPaymentReport analyzes and aggregates a booking's payments: float
// sum of amounts, distinct methods in first-seen order, manual and Stripe
// flags, currency from the first payment or the fallback.
func buildPaymentReport(bookingNumber string, payments []bookeo.Payment) PaymentReport {
	details := make([]PaymentDetail, 0, len(payments))
	methods := make([]string, 0, len(payments))
	seenMethods := make(map[string]bool)

	totalPaid := 0.0
	hasManual := false
	hasStripe := false

	for _, payment := range payments {
		detail := analyzePayment(payment)
		details = append(details, detail)

		totalPaid += parseAmount(payment.Amount.Amount)

		if detail.IsManual {
			hasManual = true
		} else if strings.Contains(strings.ToLower(detail.Gateway), "stripe") {
			hasStripe = true
		}

		if !seenMethods[detail.Method] {
			seenMethods[detail.Method] = true
			methods = append(methods, detail.Method)
		}
	}

	currency := fallbackCurrency
	if len(payments) > 0 && payments[0].Amount.Currency != "" {
		currency = payments[0].Amount.Currency
	}

	return PaymentReport{
		BookingNumber:    bookingNumber,
		PaymentCount:     len(payments),
		TotalPaid:        totalPaid,
		Currency:         currency,
		HasManualPayment: hasManual,
		HasStripePayment: hasStripe,
		PaymentMethods:   methods,
		Payments:         details,
	}
}
