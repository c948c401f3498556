package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation.
var (
	ErrEmptySeatSelection = errors.New("at least one seat must be selected")
	ErrDuplicateSeat      = errors.New("seat selected more than once")
	ErrInvalidInput       = errors.New("invalid input")
)

// Inventory conflicts.
var (
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrInvalidSeatState = errors.New("invalid seat state")
)

// State machine.
var (
	ErrCannotCancelConfirmed = errors.New("cannot cancel confirmed booking")
	ErrInvalidTransition     = errors.New("invalid booking transition")
	ErrNoPaymentIntent       = errors.New("no payment intent found for this booking")
	ErrPaymentNotSucceeded   = errors.New("payment not succeeded")
)

// Lookup and authorization.
var (
	ErrForbidden        = errors.New("operation is forbidden for user")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrPaymentNotFound  = errors.New("payment not found")
)

// Infrastructure. These are retryable by the caller.
var (
	ErrPaymentGateway   = errors.New("payment gateway error")
	ErrStoreUnavailable = errors.New("persistence unavailable")
	ErrTimeout          = errors.New("timeout")
	ErrLockTimeout      = fmt.Errorf("showtime lock not acquired: %w", ErrTimeout)
	ErrConcurrentUpdate = errors.New("concurrent inventory update")
)

// Returned by persistence adapters for conditional writes.
var (
	ErrStaleBooking    = errors.New("booking changed since it was read")
	ErrVersionConflict = errors.New("showtime version conflict")
	ErrPaymentExists   = errors.New("payment already recorded for booking")
)

type SeatUnavailableError struct {
	SeatIDs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.SeatIDs, ", "))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

type InvalidSeatStateError struct {
	SeatIDs []string
	Want    SeatStatus
}

func (e *InvalidSeatStateError) Error() string {
	return fmt.Sprintf("seats not %s: %s", e.Want, strings.Join(e.SeatIDs, ", "))
}

func (e *InvalidSeatStateError) Is(target error) bool {
	return target == ErrInvalidSeatState
}

// GatewayError wraps any failure of the payment processor.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool {
	if target == ErrPaymentGateway {
		return true
	}
	return target == ErrTimeout && isDeadline(e.Err)
}

// StoreError wraps an I/O failure of the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	if target == ErrStoreUnavailable {
		return true
	}
	return target == ErrTimeout && isDeadline(e.Err)
}

func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// IsRetryable reports whether err is an infrastructure failure the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPaymentGateway) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentUpdate)
}
