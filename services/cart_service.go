package services

import (
	"context"
	"net/http"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errQuantityTooLow = errs.New(http.StatusBadRequest, "Quantity must be greater than 0", nil)
var errProductNotFound = errs.New(http.StatusNotFound, "Product not found", nil)

// CartService implements the cart operations over an owner-selected
// backend: authenticated users get the relational cart, anonymous sessions
// the Redis one. The dispatch happens here, once, so no caller branches on
// login state.
type CartService struct {
	userCarts    repository.CartBackend
	sessionCarts repository.CartBackend
	products     repository.ProductRepository
}

func NewCartService(userCarts, sessionCarts repository.CartBackend, products repository.ProductRepository) *CartService {
	return &CartService{
		userCarts:    userCarts,
		sessionCarts: sessionCarts,
		products:     products,
	}
}

func (s *CartService) backend(owner models.CartOwner) repository.CartBackend {
	if owner.Authenticated() {
		return s.userCarts
	}
	return s.sessionCarts
}

// Add increments an existing line by qty or creates it. Returns the product
// so callers can build a confirmation message.
func (s *CartService) Add(ctx context.Context, owner models.CartOwner, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty < 1 {
		return nil, errQuantityTooLow
	}

	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	if product == nil {
		return nil, errProductNotFound
	}

	backend := s.backend(owner)
	entries, err := backend.Get(ctx, owner)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	found := false
	for i, e := range entries {
		if e.ProductID == productID {
			entries[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, models.CartEntry{ProductID: productID, Quantity: qty})
	}

	if err := backend.Save(ctx, owner, entries); err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}
	return product, nil
}

// Update sets the absolute quantity of a line, creating it if absent.
func (s *CartService) Update(ctx context.Context, owner models.CartOwner, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errQuantityTooLow
	}

	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	if product == nil {
		return errProductNotFound
	}

	backend := s.backend(owner)
	entries, err := backend.Get(ctx, owner)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}

	found := false
	for i, e := range entries {
		if e.ProductID == productID {
			entries[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, models.CartEntry{ProductID: productID, Quantity: qty})
	}

	if err := backend.Save(ctx, owner, entries); err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	return nil
}

// Remove deletes a line. Removing an absent product is a no-op.
func (s *CartService) Remove(ctx context.Context, owner models.CartOwner, productID uuid.UUID) error {
	backend := s.backend(owner)
	entries, err := backend.Get(ctx, owner)
	if err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}

	if err := backend.Save(ctx, owner, kept); err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	return nil
}

// Count sums line quantities.
func (s *CartService) Count(ctx context.Context, owner models.CartOwner) (int, error) {
	entries, err := s.backend(owner).Get(ctx, owner)
	if err != nil {
		return 0, errs.ErrInternalServer.Wrap(err)
	}
	count := 0
	for _, e := range entries {
		count += e.Quantity
	}
	return count, nil
}

// Items resolves cart entries into priced lines. Entries whose product has
// disappeared from the catalog are skipped rather than failing the cart.
func (s *CartService) Items(ctx context.Context, owner models.CartOwner) ([]models.CartLine, error) {
	entries, err := s.backend(owner).Get(ctx, owner)
	if err != nil {
		return nil, errs.ErrInternalServer.Wrap(err)
	}

	lines := make([]models.CartLine, 0, len(entries))
	for _, e := range entries {
		product, err := s.products.FindActiveByID(ctx, e.ProductID)
		if err != nil {
			return nil, errs.ErrInternalServer.Wrap(err)
		}
		if product == nil {
			continue
		}
		lines = append(lines, models.CartLine{
			Product:   *product,
			Quantity:  e.Quantity,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(e.Quantity))).Round(2),
		})
	}
	return lines, nil
}

// CartSummary is the cart view payload: priced lines plus totals.
type CartSummary struct {
	Items     []models.CartLine `json:"items"`
	CartCount int               `json:"cart_count"`
	Totals
}

// Summary builds the cart view for an owner.
func (s *CartService) Summary(ctx context.Context, owner models.CartOwner) (*CartSummary, error) {
	lines, err := s.Items(ctx, owner)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, line := range lines {
		count += line.Quantity
	}

	return &CartSummary{
		Items:     lines,
		CartCount: count,
		Totals:    ComputeTotals(lines),
	}, nil
}

// Clear empties the owner's cart.
func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) error {
	if err := s.backend(owner).Clear(ctx, owner); err != nil {
		return errs.ErrInternalServer.Wrap(err)
	}
	return nil
}
