package repository

import (
	"context"
	"errors"

	"github.com/agromarket/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethodRepository defines the interface for payment method configuration
type PaymentMethodRepository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	FindActive(ctx context.Context) ([]models.PaymentMethod, error)
	FindByName(ctx context.Context, name string) (*models.PaymentMethod, error)
	Create(ctx context.Context, method *models.PaymentMethod) error
}

type gormPaymentMethodRepo struct {
	db *gorm.DB
}

func NewGormPaymentMethodRepo(db *gorm.DB) PaymentMethodRepository {
	return &gormPaymentMethodRepo{db: db}
}

func (r *gormPaymentMethodRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *gormPaymentMethodRepo) FindActive(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *gormPaymentMethodRepo) FindByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *gormPaymentMethodRepo) Create(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(method).Error
}
