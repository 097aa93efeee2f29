package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type webhookEnv struct {
	store     *memStore
	gateway   *services.GatewayAdapter
	svc       *services.WebhookService
	customer  uuid.UUID
	orderID   uuid.UUID
	paymentID string
}

// newWebhookEnv seeds a pending order with a pending gateway payment and a
// leftover cart, the state checkout leaves behind before the processor
// calls back.
func newWebhookEnv(t *testing.T) *webhookEnv {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	gateway := services.NewGatewayAdapter("whsec-test")
	svc := services.NewWebhookService(store, gateway, zap.NewNop())

	customer := uuid.New()
	order := &models.Order{
		OrderNumber: models.NewOrderNumber(),
		CustomerID:  customer,
		GrandTotal:  decimal.RequireFromString("14.61"),
		Status:      models.OrderPending,
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	paymentID := models.NewPaymentID()
	require.NoError(t, store.Payments().Create(ctx, &models.Payment{
		PaymentID:       paymentID,
		OrderID:         order.ID,
		CustomerID:      customer,
		PaymentMethodID: uuid.New(),
		Amount:          decimal.RequireFromString("14.61"),
		ProcessingFee:   decimal.RequireFromString("0.72"),
		TotalAmount:     decimal.RequireFromString("15.33"),
		Status:          models.PaymentPending,
	}))

	require.NoError(t, store.Carts().Save(ctx, models.UserOwner(customer), []models.CartEntry{
		{ProductID: uuid.New(), Quantity: 2},
	}))

	return &webhookEnv{
		store:     store,
		gateway:   gateway,
		svc:       svc,
		customer:  customer,
		orderID:   order.ID,
		paymentID: paymentID,
	}
}

func (e *webhookEnv) deliver(t *testing.T, body string) error {
	t.Helper()
	return e.svc.Process(context.Background(), e.paymentID, []byte(body), e.gateway.Sign([]byte(body)))
}

func TestWebhook_Completed(t *testing.T) {
	env := newWebhookEnv(t)
	body := `{"status":"completed","transaction_id":"TXN-12345"}`

	require.NoError(t, env.deliver(t, body))

	payment := env.store.payments[env.paymentID]
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, "TXN-12345", payment.TransactionID)
	require.NotNil(t, payment.GatewayResponse)
	assert.Equal(t, body, *payment.GatewayResponse)

	assert.Equal(t, models.OrderConfirmed, env.store.orders[env.orderID].Status)
	assert.Empty(t, env.store.carts, "confirmation clears the originating cart")
}

func TestWebhook_InvalidSignature(t *testing.T) {
	env := newWebhookEnv(t)
	body := []byte(`{"status":"completed","transaction_id":"TXN-12345"}`)

	err := env.svc.Process(context.Background(), env.paymentID, body, "deadbeef")
	assert.Equal(t, http.StatusForbidden, appErrCode(t, err))

	// Nothing moved.
	assert.Equal(t, models.PaymentPending, env.store.payments[env.paymentID].Status)
	assert.Equal(t, models.OrderPending, env.store.orders[env.orderID].Status)
	assert.Len(t, env.store.carts, 1)
}

func TestWebhook_TamperedBody(t *testing.T) {
	env := newWebhookEnv(t)
	signed := []byte(`{"status":"failed"}`)
	tampered := []byte(`{"status":"completed"}`)

	err := env.svc.Process(context.Background(), env.paymentID, tampered, env.gateway.Sign(signed))
	assert.Equal(t, http.StatusForbidden, appErrCode(t, err))
	assert.Equal(t, models.PaymentPending, env.store.payments[env.paymentID].Status)
}

func TestWebhook_UnknownPayment(t *testing.T) {
	env := newWebhookEnv(t)
	body := []byte(`{"status":"completed"}`)

	err := env.svc.Process(context.Background(), "PAY-DOESNOTEXIST", body, env.gateway.Sign(body))
	assert.Equal(t, http.StatusNotFound, appErrCode(t, err))
}

func TestWebhook_MalformedBody(t *testing.T) {
	env := newWebhookEnv(t)

	err := env.deliver(t, `{"status":`)
	assert.Equal(t, http.StatusBadRequest, appErrCode(t, err))
	assert.Equal(t, models.PaymentPending, env.store.payments[env.paymentID].Status)
}

func TestWebhook_UnknownStatus(t *testing.T) {
	env := newWebhookEnv(t)

	err := env.deliver(t, `{"status":"on_hold"}`)
	assert.Equal(t, http.StatusBadRequest, appErrCode(t, err))
	assert.Equal(t, models.PaymentPending, env.store.payments[env.paymentID].Status)
}

func TestWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	env := newWebhookEnv(t)

	require.NoError(t, env.deliver(t, `{"status":"completed","transaction_id":"TXN-1"}`))
	require.NoError(t, env.deliver(t, `{"status":"failed","transaction_id":"TXN-2"}`),
		"a delivery against a terminal payment is acknowledged without effect")

	payment := env.store.payments[env.paymentID]
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, "TXN-1", payment.TransactionID)
	assert.Equal(t, models.OrderConfirmed, env.store.orders[env.orderID].Status)
}

func TestWebhook_Failed(t *testing.T) {
	env := newWebhookEnv(t)

	require.NoError(t, env.deliver(t, `{"status":"failed"}`))

	assert.Equal(t, models.PaymentFailed, env.store.payments[env.paymentID].Status)
	assert.Equal(t, models.OrderPending, env.store.orders[env.orderID].Status,
		"a failed payment leaves the order open for retry")
	assert.Len(t, env.store.carts, 1, "the cart is only cleared on confirmation")
}

func TestWebhook_Cancelled(t *testing.T) {
	env := newWebhookEnv(t)

	require.NoError(t, env.deliver(t, `{"status":"cancelled"}`))

	assert.Equal(t, models.PaymentCancelled, env.store.payments[env.paymentID].Status)
	assert.Equal(t, models.OrderCancelled, env.store.orders[env.orderID].Status)
}

func TestWebhook_Refunded(t *testing.T) {
	env := newWebhookEnv(t)

	require.NoError(t, env.deliver(t, `{"status":"refunded"}`))

	assert.Equal(t, models.PaymentRefunded, env.store.payments[env.paymentID].Status)
	assert.Equal(t, models.OrderRefunded, env.store.orders[env.orderID].Status)
}

func TestGatewayAdapter_SignAndVerify(t *testing.T) {
	gateway := services.NewGatewayAdapter("whsec-test")
	payload := []byte(`{"status":"completed"}`)

	sig := gateway.Sign(payload)
	assert.True(t, gateway.VerifySignature(payload, sig))
	assert.False(t, gateway.VerifySignature([]byte(`{"status":"failed"}`), sig))
	assert.False(t, gateway.VerifySignature(payload, "not-hex"))
	assert.False(t, services.NewGatewayAdapter("other-secret").VerifySignature(payload, sig))
}

func TestGatewayAdapter_RedirectURL(t *testing.T) {
	gateway := services.NewGatewayAdapter("whsec-test")
	assert.Equal(t, "/payments/process/PAY-ABC123/", gateway.RedirectURL("PAY-ABC123"))
}
