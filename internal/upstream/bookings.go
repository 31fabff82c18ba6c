package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flightdesk/flightdesk/internal/auth"
)

// BookingsClient creates bookings on the external booking service.
type BookingsClient struct {
	baseURL string
	client  *Client
}

func NewBookingsClient(baseURL string, client *Client) *BookingsClient {
	return &BookingsClient{baseURL: baseURL, client: client}
}

type createBookingRequest struct {
	UserID    int64  `json:"userId"`
	FlightID  string `json:"flightId"`
	NoOfSeats int    `json:"noOfSeats"`
}

type createBookingEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID        json.Number `json:"id"`
		TotalCost float64     `json:"totalCost"`
		Status    string      `json:"status"`
	} `json:"data"`
}

// BookingCreated is the booking service's view of a freshly created booking.
type BookingCreated struct {
	ID        string
	TotalCost float64
	Status    string
}

func (c *BookingsClient) Create(ctx context.Context, ac auth.Context, flightID string, seats int) (BookingCreated, error) {
	body := createBookingRequest{
		UserID:    ac.UserID,
		FlightID:  flightID,
		NoOfSeats: seats,
	}
	headers := map[string]string{"Authorization": "Bearer " + ac.Token}

	var envelope createBookingEnvelope
	err := c.client.doJSON(ctx, ServiceBookings, http.MethodPost, c.baseURL+"/bookings", headers, body, &envelope)
	if err != nil {
		return BookingCreated{}, err
	}

	if !envelope.Success || envelope.Data.ID.String() == "" {
		msg := envelope.Message
		if msg == "" {
			msg = "booking was not created"
		}
		return BookingCreated{}, NewError(ServiceBookings, errors.New(msg))
	}

	return BookingCreated{
		ID:        envelope.Data.ID.String(),
		TotalCost: envelope.Data.TotalCost,
		Status:    envelope.Data.Status,
	}, nil
}
