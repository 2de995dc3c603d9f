package bookeo

import "encoding/json"

// Money is a Bookeo monetary value. Amount is a decimal string exactly as
// the API sends it.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// PhoneNumber is one entry in a customer's phone number list.
type PhoneNumber struct {
	Number string `json:"number"`
	Type   string `json:"type,omitempty"`
}

// Customer is the expanded customer block of a booking.
type Customer struct {
	ID           string        `json:"id,omitempty"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	EmailAddress string        `json:"emailAddress"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers,omitempty"`
}

// ParticipantNumber is a per-category participant count.
type ParticipantNumber struct {
	PeopleCategoryID string `json:"peopleCategoryId,omitempty"`
	Number           int    `json:"number"`
}

// Participants holds the participant-count block of a booking.
type Participants struct {
	Numbers []ParticipantNumber `json:"numbers"`
}

// Price carries the monetary blocks of a booking. The fields are kept as
// raw JSON; the client never reinterprets upstream amounts.
type Price struct {
	TotalGross json.RawMessage `json:"totalGross,omitempty"`
	TotalPaid  json.RawMessage `json:"totalPaid,omitempty"`
	BalanceDue json.RawMessage `json:"balanceDue,omitempty"`
}

// Booking is one booking record as returned by the Bookeo API. Time fields
// stay in the API's string form.
type Booking struct {
	BookingNumber    string            `json:"bookingNumber"`
	StartTime        string            `json:"startTime"`
	EndTime          string            `json:"endTime,omitempty"`
	ProductName      string            `json:"productName"`
	ProductID        string            `json:"productId,omitempty"`
	Customer         Customer          `json:"customer"`
	Participants     Participants      `json:"participants"`
	Price            Price             `json:"price"`
	PriceAdjustments []json.RawMessage `json:"priceAdjustments,omitempty"`
	CreationTime     string            `json:"creationTime,omitempty"`
	Source           json.RawMessage   `json:"source,omitempty"`
	Canceled         bool              `json:"canceled,omitempty"`
}

// Payment is one payment recorded against a booking. An empty GatewayName
// means the payment was recorded manually.
type Payment struct {
	ID            string `json:"id,omitempty"`
	Amount        Money  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	GatewayName   string `json:"gatewayName,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Agent         string `json:"agent,omitempty"`
	ReceivedTime  string `json:"receivedTime,omitempty"`
}

// pageInfo is the pagination metadata under info.paging.
type pageInfo struct {
	TotalItems          int    `json:"totalItems,omitempty"`
	TotalPages          int    `json:"totalPages,omitempty"`
	CurrentPage         int    `json:"currentPage,omitempty"`
	PageNavigationToken string `json:"pageNavigationToken,omitempty"`
	NextPageURL         string `json:"nextPageURL,omitempty"`
}

// bookingsPage is the envelope of a /bookings search response.
type bookingsPage struct {
	Data []Booking `json:"data"`
	Info struct {
		Paging pageInfo `json:"paging"`
	} `json:"info"`
}

// paymentsPage is the envelope of a /bookings/{id}/payments response.
type paymentsPage struct {
	Data []Payment `json:"data"`
}
