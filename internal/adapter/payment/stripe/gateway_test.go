package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGateway(Config{SecretKey: "sk_test_123", Timeout: time.Second, BaseURL: server.URL})
}

func TestCreateIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "b-1", r.PostForm.Get("metadata[booking_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret","status":"requires_payment_method"}`))
	})

	ref, err := gw.CreateIntent(context.Background(), 2500, "usd", map[string]string{"booking_id": "b-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.IntentRef{ID: "pi_1", ClientSecret: "pi_1_secret"}, ref)
}

func TestRetrieveIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"succeeded","payment_method":"pm_card"}`))
	})

	status, err := gw.RetrieveIntent(context.Background(), "pi_1")

	require.NoError(t, err)
	assert.True(t, status.Succeeded())
	assert.Equal(t, "pm_card", status.PaymentMethod)
}

func TestProcessorErrorIsGatewayError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := gw.CreateIntent(context.Background(), 100, "usd", nil)

	require.Error(t, err)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "create intent", gwErr.Op)
	assert.Contains(t, err.Error(), "card_declined")
	assert.True(t, domain.IsRetryable(err))
	assert.NotErrorIs(t, err, domain.ErrTimeout)
}

func TestDeadlineIsTimeout(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := gw.RetrieveIntent(ctx, "pi_1")

	assert.ErrorIs(t, err, domain.ErrPaymentGateway)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}
