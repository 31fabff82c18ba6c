package models

type SearchMetadata struct {
	TotalResults int   `json:"total_results"`
	RawResults   int   `json:"raw_results"`
	Dropped      int   `json:"dropped"`
	SearchTimeMs int64 `json:"search_time_ms"`
	CacheHit     bool  `json:"cache_hit"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Metadata       SearchMetadata `json:"metadata"`
	Flights        []Flight       `json:"flights"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	// RedirectTo is set when the client should navigate away, e.g. to the
	// login page on a missing credential or home on an expired payment.
	RedirectTo string `json:"redirect_to,omitempty"`
}

type BookingView struct {
	BookingID        string  `json:"booking_id"`
	FlightID         string  `json:"flight_id"`
	Travellers       int     `json:"travellers"`
	TotalAmount      float64 `json:"total_amount"`
	TotalFormatted   string  `json:"total_formatted"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	RemainingSeconds int     `json:"remaining_seconds"`
}

// CheckoutOrder carries everything the browser-side checkout needs to open.
type CheckoutOrder struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Key      string  `json:"key"`
}
