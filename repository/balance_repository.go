package repository

import (
	"context"
	"errors"

	"github.com/agromarket/backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceRepository is the ledger for internal user balances. Debit goes
// through a conditional update so a balance can never turn negative.
type BalanceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
	// Debit subtracts amount if and only if the balance covers it.
	// Returns false, leaving the balance unchanged, when it does not.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)
	// Credit adds amount unconditionally, creating the balance row if needed.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
}

type gormBalanceRepo struct {
	db *gorm.DB
}

func NewGormBalanceRepo(db *gorm.DB) BalanceRepository {
	return &gormBalanceRepo{db: db}
}

func (r *gormBalanceRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *gormBalanceRepo) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.UserBalance{}).
		Where("user_id = ? AND amount >= ?", userID, amount).
		UpdateColumn("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormBalanceRepo) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.UserBalance{}).
		Where("user_id = ?", userID).
		UpdateColumn("amount", gorm.Expr("amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(&models.UserBalance{
			UserID: userID,
			Amount: amount,
		}).Error
	}
	return nil
}

func (r *gormBalanceRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	balance, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	balance = &models.UserBalance{UserID: userID, Amount: decimal.Zero}
	if err := r.db.WithContext(ctx).Create(balance).Error; err != nil {
		return nil, err
	}
	return balance, nil
}
