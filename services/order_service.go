package services

import (
	"context"
	"net/http"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
)

var errOrderNotFound = errs.New(http.StatusNotFound, "Order not found", nil)

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderService exposes a customer's own orders. Lookups are always scoped
// to the requesting user.
type OrderService struct {
	store repository.Datastore
}

func NewOrderService(store repository.Datastore) *OrderService {
	return &OrderService{store: store}
}

// ListOrders retrieves paginated orders for a user
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.store.Orders().FindByCustomer(ctx, userID, page, limit)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetOrder retrieves one order, owned by the requesting user only.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByIDAndCustomer(ctx, orderID, userID)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	if order == nil {
		return nil, errOrderNotFound
	}
	return order, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
