package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// NewMongoDB connects, pings the primary and returns the configured database.
func NewMongoDB(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb is not available: %w", err)
	}

	logger.Get().Info("MongoDB connected", "database", cfg.Database)

	return client.Database(cfg.Database), nil
}
