package memory

import (
	"context"
	"sync"
	"time"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
)

// Locker hands out one lease per showtime inside a single process.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocker returns a locker whose Acquire gives up after wait. A zero wait
// blocks until the caller's context is done.
func NewLocker(wait time.Duration) *Locker {
	return &Locker{
		slots: make(map[string]chan struct{}),
		wait:  wait,
	}
}

func (l *Locker) slot(showtimeID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[showtimeID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[showtimeID] = ch
	}
	return ch
}

func (l *Locker) Acquire(ctx context.Context, showtimeID string) (ports.Lease, error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	ch := l.slot(showtimeID)

	select {
	case ch <- struct{}{}:
		return &lease{ch: ch}, nil
	case <-ctx.Done():
		return nil, domain.ErrLockTimeout
	}
}

type lease struct {
	once sync.Once
	ch   chan struct{}
}

func (l *lease) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}
