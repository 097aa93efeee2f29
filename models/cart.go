package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the persistent cart of an authenticated user.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

// CartOwner identifies whose cart an operation targets: an authenticated
// user or an anonymous session. Exactly one of the two is set.
type CartOwner struct {
	UserID    *uuid.UUID
	SessionID string
}

func UserOwner(userID uuid.UUID) CartOwner {
	return CartOwner{UserID: &userID}
}

func SessionOwner(sessionID string) CartOwner {
	return CartOwner{SessionID: sessionID}
}

func (o CartOwner) Authenticated() bool {
	return o.UserID != nil
}

// CartEntry is the raw (product, quantity) pair a cart backend stores.
type CartEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CartLine is a priced cart line as presented to checkout and views.
type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
