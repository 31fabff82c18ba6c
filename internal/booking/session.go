package booking

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusPaymentConfirmed Status = "PAYMENT_CONFIRMED"
	StatusPaymentFailed    Status = "PAYMENT_FAILED"
	StatusPaymentExpired   Status = "PAYMENT_EXPIRED"
)

// Terminal reports whether no further transition may be applied.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaymentConfirmed, StatusPaymentFailed, StatusPaymentExpired:
		return true
	default:
		return false
	}
}

// ErrSessionTerminal is the guard violation for a transition attempted on a
// finished session. Callers log it and drop the operation; it is what keeps
// a late expiry tick or a stale verification response from re-processing a
// booking.
var ErrSessionTerminal = errors.New("booking session already in a terminal state")

// errStateMismatch is a compare-and-set miss against a non-terminal state.
type errStateMismatch struct {
	want, got Status
}

func (e *errStateMismatch) Error() string {
	return fmt.Sprintf("session is %s, want %s", e.got, e.want)
}

// Session is one booking attempt. It is owned by the Service; all writes go
// through compareAndSet so exactly one winner finishes the session, whatever
// the ordering of timer ticks and payment callbacks. A failed attempt is
// retried with a brand new Session, never by mutating this one.
type Session struct {
	BookingID   string
	FlightID    string
	UserID      int64
	Travellers  int
	TotalAmount float64
	CreatedAt   time.Time

	// idempotencyKey accompanies every payment order created for this
	// attempt, so a retried order call cannot double-charge.
	idempotencyKey string

	mu        sync.Mutex
	status    Status
	remaining int
	stop      chan struct{}
	stopped   bool
}

func newSession(bookingID, flightID string, userID int64, travellers int, totalAmount float64, budgetSeconds int, idempotencyKey string) *Session {
	return &Session{
		BookingID:      bookingID,
		FlightID:       flightID,
		UserID:         userID,
		Travellers:     travellers,
		TotalAmount:    totalAmount,
		CreatedAt:      time.Now().UTC(),
		idempotencyKey: idempotencyKey,
		status:         StatusCreated,
		remaining:      budgetSeconds,
		stop:           make(chan struct{}),
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// RemainingSeconds is the payment window left; zero once the session is out
// of PaymentPending.
func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPaymentPending {
		return 0
	}
	return s.remaining
}

// compareAndSet applies from -> to if and only if the session is currently
// in from. A terminal current state yields ErrSessionTerminal; any other
// mismatch yields an errStateMismatch. First caller wins, losers are no-ops.
func (s *Session) compareAndSet(from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return ErrSessionTerminal
	}
	if s.status != from {
		return &errStateMismatch{want: from, got: s.status}
	}

	s.status = to
	return nil
}

// tick burns one second of the payment window. It reports true exactly once,
// on the tick that exhausts the budget while still pending.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPaymentPending || s.remaining <= 0 {
		return false
	}
	s.remaining--
	return s.remaining == 0
}

// stopCountdown cancels the ticking goroutine. Safe to call more than once
// and from any finishing path.
func (s *Session) stopCountdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
}
