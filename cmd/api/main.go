package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/cinema_booking/internal/adapter/events"
	"github.com/srgjo27/cinema_booking/internal/adapter/events/nats"
	"github.com/srgjo27/cinema_booking/internal/adapter/events/rabbitmq"
	"github.com/srgjo27/cinema_booking/internal/adapter/handler"
	memlock "github.com/srgjo27/cinema_booking/internal/adapter/lock/memory"
	redislock "github.com/srgjo27/cinema_booking/internal/adapter/lock/redis"
	"github.com/srgjo27/cinema_booking/internal/adapter/payment/stripe"
	"github.com/srgjo27/cinema_booking/internal/adapter/repository/memory"
	mongostore "github.com/srgjo27/cinema_booking/internal/adapter/repository/mongo"
	"github.com/srgjo27/cinema_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/ports"
	"github.com/srgjo27/cinema_booking/internal/core/services"
	"github.com/srgjo27/cinema_booking/internal/platform/config"
	"github.com/srgjo27/cinema_booking/internal/platform/database"
	"github.com/srgjo27/cinema_booking/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	if cfg.SeedDemo {
		if err := seedDemoShowtime(ctx, store); err != nil {
			logger.Fatal("Failed to seed demo showtime", "error", err)
		}
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise showtime locker", "driver", cfg.LockDriver, "error", err)
	}
	defer closeLocker()

	publisher, err := newPublisher(cfg)
	if err != nil {
		logger.Fatal("Failed to initialise event publisher", "broker", cfg.Events.Broker, "error", err)
	}
	defer publisher.Close()

	gateway := stripe.NewGateway(stripe.Config{
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   cfg.Payment.Timeout,
		BaseURL:   cfg.Payment.APIURL,
	})

	inventory := services.NewSeatInventory(store, locker, cfg.Inventory.MaxAttempts)
	bookingService := services.NewBookingService(store, inventory, gateway, publisher, services.BookingConfig{
		Currency:      cfg.Payment.Currency,
		HoldTTL:       cfg.Holds.TTL,
		SweepInterval: cfg.Holds.SweepInterval,
		FinishTimeout: cfg.Holds.FinishTimeout,

		ReconcileWindow:   cfg.Holds.ReconcileWindow,
		ReconcileInterval: cfg.Holds.ReconcileInterval,
	})

	go bookingService.RunHoldSweeper(ctx)
	go bookingService.RunReconciler(ctx)

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(handler.NewBookingHandler(bookingService), handler.RouterConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "store", cfg.StoreDriver, "lock", cfg.LockDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
}

type seedableStore interface {
	ports.Store
	SaveShowtime(ctx context.Context, st *domain.Showtime) error
}

func newStore(ctx context.Context, cfg *config.Config) (seedableStore, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		db, err := database.NewMongoDB(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), func() { db.Close() }, nil

	case "memory":
		logger.Get().Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newLocker(ctx context.Context, cfg *config.Config) (ports.ShowtimeLocker, func(), error) {
	switch cfg.LockDriver {
	case "redis":
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		locker := redislock.NewLocker(client, redislock.Config{
			TTL:  cfg.Inventory.LockTTL,
			Wait: cfg.Inventory.LockWait,
		})
		return locker, func() { _ = client.Close() }, nil

	case "memory":
		return memlock.NewLocker(cfg.Inventory.LockWait), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown lock driver %q", cfg.LockDriver)
}

func newPublisher(cfg *config.Config) (ports.EventPublisher, error) {
	switch cfg.Events.Broker {
	case "rabbitmq":
		return rabbitmq.NewPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
	case "nats":
		return nats.NewPublisher(nats.Config{
			URL:       cfg.Events.NATSURL,
			ClusterID: cfg.Events.NATSClusterID,
			ClientID:  cfg.Events.NATSClientID,
		})
	case "none", "":
		return events.Discard{}, nil
	}

	return nil, fmt.Errorf("unknown events broker %q", cfg.Events.Broker)
}
