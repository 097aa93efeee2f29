package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// orderStatusRank orders the main fulfilment chain. Side branches
// (cancelled, refunded) are reachable from any non-terminal rank.
var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderShipped:    3,
	OrderDelivered:  4,
}

// CanTransition reports whether an order may move from one status to
// another. The main chain only advances; cancelled and refunded leave it.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	fromRank, fromOnChain := orderStatusRank[from]
	toRank, toOnChain := orderStatusRank[to]
	if !fromOnChain {
		// cancelled/refunded are terminal
		return false
	}
	if !toOnChain {
		return to == OrderCancelled || to == OrderRefunded
	}
	return toRank > fromRank
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping_fee"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax_amount"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"grand_total"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
}

// NewOrderNumber generates a unique order number of the form ORD-XXXXXXXX.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:8]))
}
