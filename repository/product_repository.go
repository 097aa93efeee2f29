package repository

import (
	"context"
	"errors"

	"github.com/agromarket/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository covers the slice of the catalog checkout touches.
type ProductRepository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// DecrementStock atomically subtracts qty from quantity_available,
	// refusing to go below zero. Returns false when stock is insufficient.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	Create(ctx context.Context, product *models.Product) error
}

type gormProductRepo struct {
	db *gorm.DB
}

func NewGormProductRepo(db *gorm.DB) ProductRepository {
	return &gormProductRepo{db: db}
}

func (r *gormProductRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *gormProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	// Conditional update: the WHERE clause is the stock check, so two
	// concurrent buyers of the last unit cannot both pass it.
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND quantity_available >= ?", id, qty).
		UpdateColumn("quantity_available", gorm.Expr("quantity_available - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormProductRepo) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}
