package repository

import (
	"context"

	"github.com/agromarket/backend/models"
)

// CartBackend stores raw cart lines for an owner. Two implementations
// exist: a GORM-backed one for authenticated users and a Redis-backed one
// for anonymous sessions. Quantity validation and pricing live in the cart
// service; backends only persist.
type CartBackend interface {
	Get(ctx context.Context, owner models.CartOwner) ([]models.CartEntry, error)
	Save(ctx context.Context, owner models.CartOwner, entries []models.CartEntry) error
	Clear(ctx context.Context, owner models.CartOwner) error
}
