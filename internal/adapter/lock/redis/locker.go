package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

const (
	keyPrefix    = "lock:showtime:"
	pollInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only when it still carries our token, so an
// expired lease never removes the lock of the next holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type Config struct {
	// TTL bounds how long a crashed holder can keep a showtime locked.
	TTL time.Duration
	// Wait bounds how long Acquire polls before giving up.
	Wait time.Duration
}

type Locker struct {
	client   redis.Cmdable
	cfg      Config
	newToken func() string
}

func NewLocker(client redis.Cmdable, cfg Config) *Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 2 * time.Second
	}

	return &Locker{
		client:   client,
		cfg:      cfg,
		newToken: uuid.NewString,
	}
}

func Key(showtimeID string) string {
	return keyPrefix + showtimeID
}

func (l *Locker) Acquire(ctx context.Context, showtimeID string) (ports.Lease, error) {
	key := Key(showtimeID)
	token := l.newToken()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, domain.ErrLockTimeout
			}
			return nil, &domain.StoreError{Op: "acquire showtime lock", Err: err}
		}

		if ok {
			return &lease{client: l.client, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			return nil, domain.ErrLockTimeout
		case <-ticker.C:
		}
	}
}

type lease struct {
	client redis.Cmdable
	key    string
	token  string
}

func (l *lease) Release(ctx context.Context) error {
	deleted, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return &domain.StoreError{Op: "release showtime lock", Err: fmt.Errorf("%s: %w", l.key, err)}
	}

	if deleted == 0 {
		logger.WithContext(ctx).Warn("Showtime lock expired before release", "key", l.key)
	}

	return nil
}
