package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/platform/metrics"
)

type Config struct {
	SecretKey string
	Timeout   time.Duration
	// BaseURL replaces https://api.stripe.com when set.
	BaseURL string
}

// Gateway creates and inspects Stripe PaymentIntents. It never retries; the
// caller decides whether a failed call is repeated.
type Gateway struct {
	api *client.API
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}

	return &Gateway{api: client.New(cfg.SecretKey, backends)}
}

func (g *Gateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (domain.IntentRef, error) {
	start := time.Now()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	observe("create_intent", start, err)
	if err != nil {
		return domain.IntentRef{}, gatewayErr(ctx, "create intent", err)
	}

	return domain.IntentRef{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *Gateway) RetrieveIntent(ctx context.Context, intentID string) (domain.IntentStatus, error) {
	start := time.Now()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	observe("retrieve_intent", start, err)
	if err != nil {
		return domain.IntentStatus{}, gatewayErr(ctx, "retrieve intent", err)
	}

	status := domain.IntentStatus{
		ID:     pi.ID,
		Status: string(pi.Status),
	}
	if pi.PaymentMethod != nil {
		status.PaymentMethod = pi.PaymentMethod.ID
	}

	return status, nil
}

func gatewayErr(ctx context.Context, op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		err = fmt.Errorf("%s (%s): %w", stripeErr.Msg, stripeErr.Code, err)
	}

	// The HTTP client reports cancellation through its own error type.
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}

	return &domain.GatewayError{Op: op, Err: err}
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
