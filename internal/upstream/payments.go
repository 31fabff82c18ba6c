package upstream

import (
	"context"
	"errors"
	"net/http"

	"github.com/flightdesk/flightdesk/internal/auth"
	"github.com/flightdesk/flightdesk/internal/models"
)

// PaymentsClient drives payment order creation and verification on the
// external payment service.
type PaymentsClient struct {
	baseURL string
	client  *Client
}

func NewPaymentsClient(baseURL string, client *Client) *PaymentsClient {
	return &PaymentsClient{baseURL: baseURL, client: client}
}

type createOrderRequest struct {
	TotalCost float64 `json:"totalCost"`
	UserID    int64   `json:"userId"`
	BookingID string  `json:"bookingId"`
}

type createOrderEnvelope struct {
	Data struct {
		OrderID  string  `json:"orderId"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Key      string  `json:"key"`
	} `json:"data"`
}

// VerificationFields are the provider-issued fields returned by the checkout
// completion callback, forwarded verbatim to the verification endpoint.
type VerificationFields struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type verifyPaymentRequest struct {
	VerificationFields
	BookingID string `json:"bookingId"`
	UserID    int64  `json:"userId"`
}

type verifyPaymentEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateOrder opens a payment order for a booking. The idempotency key keeps
// a retried call from double-charging.
func (c *PaymentsClient) CreateOrder(ctx context.Context, ac auth.Context, bookingID string, totalCost float64, idempotencyKey string) (models.CheckoutOrder, error) {
	body := createOrderRequest{
		TotalCost: totalCost,
		UserID:    ac.UserID,
		BookingID: bookingID,
	}
	headers := map[string]string{
		"Authorization":     "Bearer " + ac.Token,
		"x-idempotency-key": idempotencyKey,
	}

	var envelope createOrderEnvelope
	err := c.client.doJSON(ctx, ServicePayments, http.MethodPost, c.baseURL+"/bookings/payments", headers, body, &envelope)
	if err != nil {
		return models.CheckoutOrder{}, err
	}

	if envelope.Data.OrderID == "" {
		return models.CheckoutOrder{}, NewError(ServicePayments, errors.New("no order id in response"))
	}

	return models.CheckoutOrder{
		OrderID:  envelope.Data.OrderID,
		Amount:   envelope.Data.Amount,
		Currency: envelope.Data.Currency,
		Key:      envelope.Data.Key,
	}, nil
}

// Verify confirms a completed checkout with the payment service.
func (c *PaymentsClient) Verify(ctx context.Context, ac auth.Context, bookingID string, fields VerificationFields) error {
	body := verifyPaymentRequest{
		VerificationFields: fields,
		BookingID:          bookingID,
		UserID:             ac.UserID,
	}
	headers := map[string]string{"Authorization": "Bearer " + ac.Token}

	var envelope verifyPaymentEnvelope
	err := c.client.doJSON(ctx, ServicePayments, http.MethodPost, c.baseURL+"/bookings/verifyPayment", headers, body, &envelope)
	if err != nil {
		return err
	}

	if !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "signature verification failed"
		}
		return NewError(ServicePayments, errors.New(msg))
	}

	return nil
}
