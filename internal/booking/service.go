package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flightdesk/flightdesk/internal/auth"
	"github.com/flightdesk/flightdesk/internal/checkout"
	"github.com/flightdesk/flightdesk/internal/events"
	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/upstream"
	"github.com/flightdesk/flightdesk/pkg/currency"
)

// User-surfaced failure kinds. Each leaves the flow retryable unless the
// session already reached a terminal state.
var (
	ErrBookingCreation     = errors.New("booking creation failed")
	ErrPaymentOrder        = errors.New("payment order failed")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrSessionNotFound     = errors.New("booking session not found")
	ErrInvalidTravellers   = errors.New("traveller count must be at least 1")
)

// BookingsAPI is the slice of the booking service the session machine uses.
type BookingsAPI interface {
	Create(ctx context.Context, ac auth.Context, flightID string, seats int) (upstream.BookingCreated, error)
}

// Effects receives the navigation side effects the state machine emits; the
// serving layer decides how they reach the client.
type Effects interface {
	NavigateAway(bookingID string)
}

// LogEffects is the default sink: expiry navigation is only logged.
type LogEffects struct{}

func (LogEffects) NavigateAway(bookingID string) {
	log.Printf("Booking %s: payment window expired, navigating away", bookingID)
}

type Config struct {
	// PaymentWindowSeconds bounds how long a created booking may stay
	// pending before it expires, 420 by default.
	PaymentWindowSeconds int
	// TickInterval is the countdown resolution. One second in production;
	// tests shrink it.
	TickInterval time.Duration
	EventsTopic  string
}

func (c Config) withDefaults() Config {
	if c.PaymentWindowSeconds <= 0 {
		c.PaymentWindowSeconds = 420
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Service owns every live BookingSession and is the single writer of their
// state. One countdown goroutine exists per pending session and is stopped
// on the first terminal transition, whichever side wins.
type Service struct {
	bookings BookingsAPI
	gateway  checkout.Gateway
	effects  Effects
	producer events.Producer
	config   Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(bookings BookingsAPI, gateway checkout.Gateway, effects Effects, producer events.Producer, config Config) *Service {
	if effects == nil {
		effects = LogEffects{}
	}
	return &Service{
		bookings: bookings,
		gateway:  gateway,
		effects:  effects,
		producer: producer,
		config:   config.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Create runs absent -> Created -> PaymentPending. The credential guard
// comes first: without a valid AuthContext nothing is sent upstream and the
// caller redirects to login. The quoted amount is recomputed locally and
// cross-checked against what the booking service echoes back.
func (s *Service) Create(ctx context.Context, ac auth.Context, flight models.Flight, travellers int) (*Session, error) {
	if !ac.Valid() {
		return nil, auth.ErrAuthRequired
	}
	if travellers < 1 {
		return nil, ErrInvalidTravellers
	}

	created, err := s.bookings.Create(ctx, ac, flight.ID, travellers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookingCreation, err)
	}

	expected := flight.Price.Amount * float64(travellers)
	if created.TotalCost != expected {
		return nil, fmt.Errorf("%w: upstream total %.2f does not match %.2f for %d travellers",
			ErrBookingCreation, created.TotalCost, expected, travellers)
	}

	sess := newSession(created.ID, flight.ID, ac.UserID, travellers, created.TotalCost,
		s.config.PaymentWindowSeconds, uuid.NewString())

	s.mu.Lock()
	s.sessions[sess.BookingID] = sess
	s.mu.Unlock()

	s.publish(ctx, "booking_created", sess)

	// A booking id in hand means payment starts immediately.
	if err := sess.compareAndSet(StatusCreated, StatusPaymentPending); err != nil {
		return nil, err
	}
	s.publish(ctx, "payment_pending", sess)
	s.startCountdown(sess)

	return sess, nil
}

// Get returns a session by booking id.
func (s *Service) Get(bookingID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[bookingID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// CreatePaymentOrder opens a checkout order for a pending session. Failure
// leaves the session pending and retryable.
func (s *Service) CreatePaymentOrder(ctx context.Context, ac auth.Context, bookingID string) (models.CheckoutOrder, error) {
	if !ac.Valid() {
		return models.CheckoutOrder{}, auth.ErrAuthRequired
	}

	sess, err := s.Get(bookingID)
	if err != nil {
		return models.CheckoutOrder{}, err
	}
	if status := sess.Status(); status != StatusPaymentPending {
		if status.Terminal() {
			return models.CheckoutOrder{}, ErrSessionTerminal
		}
		return models.CheckoutOrder{}, fmt.Errorf("%w: session is %s", ErrPaymentOrder, status)
	}

	order, err := s.gateway.CreateOrder(ctx, ac, sess.BookingID, sess.TotalAmount, sess.idempotencyKey)
	if err != nil {
		return models.CheckoutOrder{}, fmt.Errorf("%w: %v", ErrPaymentOrder, err)
	}
	return order, nil
}

// Confirm settles the timer-vs-payment race through the session's
// compare-and-set: whichever terminal transition lands first wins and the
// loser is dropped. The pending check before the upstream round trip is the
// stale-response guard; the CAS afterwards closes the window the round trip
// leaves open.
func (s *Service) Confirm(ctx context.Context, ac auth.Context, bookingID string, fields upstream.VerificationFields) error {
	if !ac.Valid() {
		return auth.ErrAuthRequired
	}

	sess, err := s.Get(bookingID)
	if err != nil {
		return err
	}
	if sess.Status() != StatusPaymentPending {
		log.Printf("Booking %s: dropping verification for %s session", bookingID, sess.Status())
		return ErrSessionTerminal
	}

	if err := s.gateway.Verify(ctx, ac, bookingID, fields); err != nil {
		s.fail(ctx, sess, err)
		return fmt.Errorf("%w: %v", ErrPaymentVerification, err)
	}

	if err := sess.compareAndSet(StatusPaymentPending, StatusPaymentConfirmed); err != nil {
		log.Printf("Booking %s: verification arrived after session finished: %v", bookingID, err)
		return ErrSessionTerminal
	}
	sess.stopCountdown()
	s.publish(ctx, "payment_confirmed", sess)
	return nil
}

// Fail records an explicit provider failure callback. A retry goes through
// Create again as a fresh attempt; this session stays failed.
func (s *Service) Fail(ctx context.Context, bookingID string, cause error) error {
	sess, err := s.Get(bookingID)
	if err != nil {
		return err
	}
	return s.fail(ctx, sess, cause)
}

func (s *Service) fail(ctx context.Context, sess *Session, cause error) error {
	if err := sess.compareAndSet(StatusPaymentPending, StatusPaymentFailed); err != nil {
		log.Printf("Booking %s: dropping failure (%v): %v", sess.BookingID, cause, err)
		return ErrSessionTerminal
	}
	sess.stopCountdown()
	s.publish(ctx, "payment_failed", sess)
	return nil
}

// startCountdown runs the payment window for one pending session. The
// goroutine exits on the first of: stop channel closed (session finished
// elsewhere) or budget exhausted.
func (s *Service) startCountdown(sess *Session) {
	go func() {
		ticker := time.NewTicker(s.config.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sess.stop:
				return
			case <-ticker.C:
				if s.handleTick(sess) {
					return
				}
			}
		}
	}()
}

// handleTick burns one second and, on the tick that exhausts the budget,
// expires the session. Reports true once ticking should stop.
func (s *Service) handleTick(sess *Session) bool {
	if !sess.tick() {
		// Stop ticking once the session is out of PaymentPending.
		return sess.Status() != StatusPaymentPending
	}
	s.expire(sess)
	return true
}

// expire moves a pending session to PaymentExpired and emits exactly one
// navigate-away effect. A session finished by payment first makes this a
// logged no-op.
func (s *Service) expire(sess *Session) {
	if err := sess.compareAndSet(StatusPaymentPending, StatusPaymentExpired); err != nil {
		log.Printf("Booking %s: dropping expiry: %v", sess.BookingID, err)
		return
	}
	sess.stopCountdown()
	s.publish(context.Background(), "payment_expired", sess)
	s.effects.NavigateAway(sess.BookingID)
}

// View renders a session for the API.
func (s *Service) View(sess *Session) models.BookingView {
	return models.BookingView{
		BookingID:        sess.BookingID,
		FlightID:         sess.FlightID,
		Travellers:       sess.Travellers,
		TotalAmount:      sess.TotalAmount,
		TotalFormatted:   currency.FormatINR(sess.TotalAmount),
		Status:           string(sess.Status()),
		CreatedAt:        sess.CreatedAt.Format(time.RFC3339),
		RemainingSeconds: sess.RemainingSeconds(),
	}
}

func (s *Service) publish(ctx context.Context, eventType string, sess *Session) {
	if s.producer == nil || s.config.EventsTopic == "" {
		return
	}
	event := events.BookingEvent{
		Type:        eventType,
		BookingID:   sess.BookingID,
		FlightID:    sess.FlightID,
		UserID:      sess.UserID,
		Travellers:  sess.Travellers,
		TotalAmount: sess.TotalAmount,
		Status:      string(sess.Status()),
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.config.EventsTopic, sess.BookingID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, sess.BookingID, err)
	}
}
