package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flightdesk/flightdesk/internal/auth"
	"github.com/flightdesk/flightdesk/internal/booking"
	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/upstream"
)

const loginPath = "/auth/login"

type BookingHandler struct {
	service  *booking.Service
	verifier *auth.Verifier
}

func NewBookingHandler(service *booking.Service, verifier *auth.Verifier) *BookingHandler {
	return &BookingHandler{
		service:  service,
		verifier: verifier,
	}
}

type createBookingRequest struct {
	Flight     models.Flight `json:"flight"`
	Travellers int           `json:"travellers"`
}

// Create starts a booking session for the selected flight. Callers without
// a valid credential are redirected to login before anything is reserved.
func (h *BookingHandler) Create(c echo.Context) error {
	ac, err := h.verifier.FromAuthorizationHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return authRequired(c)
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be valid JSON",
			Code:    http.StatusBadRequest,
		})
	}
	if req.Flight.ID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "A flight must be selected",
			Code:    http.StatusBadRequest,
		})
	}

	sess, err := h.service.Create(c.Request().Context(), ac, req.Flight, req.Travellers)
	if err != nil {
		return bookingError(c, err)
	}

	return c.JSON(http.StatusCreated, h.service.View(sess))
}

// Get returns the current session snapshot, including the live countdown.
func (h *BookingHandler) Get(c echo.Context) error {
	sess, err := h.service.Get(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, h.service.View(sess))
}

// CreatePaymentOrder opens a checkout order for a pending session.
func (h *BookingHandler) CreatePaymentOrder(c echo.Context) error {
	ac, err := h.verifier.FromAuthorizationHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return authRequired(c)
	}

	order, err := h.service.CreatePaymentOrder(c.Request().Context(), ac, c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// Verify confirms a payment with the gateway's callback fields.
func (h *BookingHandler) Verify(c echo.Context) error {
	ac, err := h.verifier.FromAuthorizationHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return authRequired(c)
	}

	var fields upstream.VerificationFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be valid JSON",
			Code:    http.StatusBadRequest,
		})
	}

	if err := h.service.Confirm(c.Request().Context(), ac, c.Param("id"), fields); err != nil {
		return bookingError(c, err)
	}

	sess, err := h.service.Get(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, h.service.View(sess))
}

type failBookingRequest struct {
	Reason string `json:"reason"`
}

// Fail records a checkout dismissal or gateway failure for the session.
func (h *BookingHandler) Fail(c echo.Context) error {
	var req failBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be valid JSON",
			Code:    http.StatusBadRequest,
		})
	}

	var cause error
	if req.Reason != "" {
		cause = errors.New(req.Reason)
	}
	if err := h.service.Fail(c.Request().Context(), c.Param("id"), cause); err != nil {
		return bookingError(c, err)
	}

	sess, err := h.service.Get(c.Param("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, h.service.View(sess))
}

func authRequired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:      "auth_required",
		Message:    "Login required to book a flight",
		Code:       http.StatusUnauthorized,
		RedirectTo: loginPath,
	})
}

func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrAuthRequired):
		return authRequired(c)
	case errors.Is(err, booking.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, booking.ErrSessionTerminal):
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "booking_closed",
			Message: "This booking can no longer be modified",
			Code:    http.StatusConflict,
		})
	case errors.Is(err, booking.ErrInvalidTravellers):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.Is(err, booking.ErrBookingCreation),
		errors.Is(err, booking.ErrPaymentOrder),
		errors.Is(err, booking.ErrPaymentVerification):
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}
