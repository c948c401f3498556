package ports

import (
	"context"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

// PaymentGateway abstracts the payment processor. Implementations wrap every
// failure in *domain.GatewayError and never retry.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (domain.IntentRef, error)
	RetrieveIntent(ctx context.Context, intentID string) (domain.IntentStatus, error)
}

// Lease is an exclusive hold on a showtime's seat map.
type Lease interface {
	Release(ctx context.Context) error
}

type ShowtimeLocker interface {
	// Acquire blocks until the lease is held or ctx is done.
	Acquire(ctx context.Context, showtimeID string) (Lease, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}
