package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

// statusFor maps a domain error to its HTTP status and error kind.
// Timeouts are checked first because gateway and store errors also match them.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrPaymentGateway):
		return http.StatusBadGateway, "payment_gateway"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, domain.ErrEmptySeatSelection),
		errors.Is(err, domain.ErrDuplicateSeat),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrNoPaymentIntent),
		errors.Is(err, domain.ErrPaymentNotSucceeded):
		return http.StatusBadRequest, "payment"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrShowtimeNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSeatUnavailable):
		return http.StatusConflict, "seat_unavailable"
	case errors.Is(err, domain.ErrInvalidSeatState):
		return http.StatusConflict, "invalid_seat_state"
	case errors.Is(err, domain.ErrCannotCancelConfirmed),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, err error) {
	status, kind := statusFor(err)

	resp := errorResponse{Error: kind, Message: err.Error()}

	var unavailable *domain.SeatUnavailableError
	var invalid *domain.InvalidSeatStateError
	switch {
	case errors.As(err, &unavailable):
		resp.Seats = unavailable.SeatIDs
	case errors.As(err, &invalid):
		resp.Seats = invalid.SeatIDs
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err,
			"path", c.FullPath(),
			"status_code", status)
		if status == http.StatusInternalServerError {
			resp.Message = "internal server error"
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
