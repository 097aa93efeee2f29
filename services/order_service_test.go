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
)

func seedOrder(t *testing.T, store *memStore, customer uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber: models.NewOrderNumber(),
		CustomerID:  customer,
		GrandTotal:  decimal.RequireFromString("14.61"),
		Status:      models.OrderPending,
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))
	return order
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := services.NewOrderService(store)
	customer := uuid.New()

	for i := 0; i < 3; i++ {
		seedOrder(t, store, customer)
	}
	seedOrder(t, store, uuid.New())

	resp, err := svc.ListOrders(ctx, customer, 1, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 3, "only the requesting user's orders are listed")
	assert.Equal(t, int64(3), resp.Meta.TotalOrders)
	assert.Equal(t, int64(1), resp.Meta.TotalPages)
	assert.False(t, resp.Meta.HasMore)
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := services.NewOrderService(store)
	customer := uuid.New()
	order := seedOrder(t, store, customer)

	found, err := svc.GetOrder(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	_, err = svc.GetOrder(ctx, uuid.New(), order.ID)
	assert.Equal(t, http.StatusNotFound, appErrCode(t, err), "another user's order reads as absent")
}
