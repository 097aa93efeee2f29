package repository

import (
	"context"
	"errors"

	"github.com/agromarket/backend/models"

	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}
