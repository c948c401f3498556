package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/stan.go"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// conn is the part of stan.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close() error
}

// Publisher sends events to NATS Streaming, one subject per event type.
type Publisher struct {
	conn conn
}

func NewPublisher(cfg Config) (*Publisher, error) {
	sc, err := stan.Connect(cfg.ClusterID, cfg.ClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	logger.Get().Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", cfg.ClientID)

	return &Publisher{conn: sc}, nil
}

// Publish blocks until the server acks. stan has no context support, so ctx
// is only checked before sending.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(event.Type, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", event.Type, err)
	}

	return nil
}

func (p *Publisher) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
