package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog that checkout needs: a price to
// snapshot and a stock counter to decrement. Catalog CRUD lives elsewhere.
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	QuantityAvailable int             `gorm:"not null;default:0" json:"quantity_available"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
