// Package checkout narrows the third-party checkout capability to the two
// calls the booking flow needs, so the session state machine is testable
// without the provider's script or SDK. The browser runs the actual checkout
// widget; completion comes back through the verify endpoint, and a user who
// abandons the widget simply leaves the session pending until expiry.
package checkout

import (
	"context"

	"github.com/flightdesk/flightdesk/internal/auth"
	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/upstream"
)

type Gateway interface {
	// CreateOrder opens a provider order for the booking's full amount.
	CreateOrder(ctx context.Context, ac auth.Context, bookingID string, totalCost float64, idempotencyKey string) (models.CheckoutOrder, error)
	// Verify checks the provider-issued completion fields.
	Verify(ctx context.Context, ac auth.Context, bookingID string, fields upstream.VerificationFields) error
}

// The payment service client is the production gateway.
var _ Gateway = (*upstream.PaymentsClient)(nil)
