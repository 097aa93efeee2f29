package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserBalance holds a user's internal spendable balance. Debits go through
// a conditional update in the repository so the amount never turns negative.
type UserBalance struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	LastUpdated time.Time       `gorm:"autoUpdateTime" json:"last_updated"`
}

// CanAfford reports whether the balance covers the given amount.
func (b *UserBalance) CanAfford(amount decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(amount)
}
