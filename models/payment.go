package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// TerminalPaymentStatuses marks statuses that no webhook may move a payment
// out of. Duplicate deliveries against a terminal payment are no-ops.
var TerminalPaymentStatuses = map[PaymentStatus]bool{
	PaymentCompleted: true,
	PaymentFailed:    true,
	PaymentCancelled: true,
	PaymentRefunded:  true,
}

type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentID       string          `gorm:"uniqueIndex;not null" json:"payment_id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null" json:"payment_method_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	ProcessingFee   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"processing_fee"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status          PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TransactionID   string          `json:"transaction_id"`
	GatewayResponse *string         `gorm:"type:jsonb" json:"gateway_response,omitempty"`
	SecurityHash    string          `gorm:"type:varchar(64)" json:"-"`
	IPAddress       string          `json:"-"`
	UserAgent       string          `json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// NewPaymentID generates a unique payment ID of the form PAY-XXXXXXXXXXXX.
func NewPaymentID() string {
	hexID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("PAY-%s", strings.ToUpper(hexID[:12]))
}

// SecurityHashFor derives the tamper-evidence hash stored on a payment row.
func SecurityHashFor(paymentID, orderNumber string, customerID uuid.UUID, amount decimal.Decimal) string {
	data := fmt.Sprintf("%s%s%s%s", paymentID, orderNumber, customerID, amount.StringFixed(2))
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

type PaymentType string

const (
	PaymentTypeCreditCard     PaymentType = "credit_card"
	PaymentTypeDebitCard      PaymentType = "debit_card"
	PaymentTypePayPal         PaymentType = "paypal"
	PaymentTypeBankTransfer   PaymentType = "bank_transfer"
	PaymentTypeCrypto         PaymentType = "crypto"
	PaymentTypeMobileMoney    PaymentType = "mobile_money"
	PaymentTypeAccountBalance PaymentType = "account_balance"
)

// PaymentMethod is operator-configured: which processors are offered and
// what they charge.
type PaymentMethod struct {
	ID                      uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                    string          `gorm:"not null" json:"name"`
	PaymentType             PaymentType     `gorm:"type:varchar(20);not null" json:"payment_type"`
	IsActive                bool            `gorm:"not null;default:true" json:"is_active"`
	ProcessingFeePercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"processing_fee_percentage"`
	ProcessingFeeFixed      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"processing_fee_fixed"`
	MinAmount               decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0.01" json:"min_amount"`
	MaxAmount               decimal.Decimal `gorm:"type:numeric(10,2);not null;default:99999.99" json:"max_amount"`
	Description             string          `json:"description"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// CalculateFees returns the processing fee for a given amount:
// amount * (percentage/100) + fixed, rounded to cents.
func (m *PaymentMethod) CalculateFees(amount decimal.Decimal) decimal.Decimal {
	percentageFee := amount.Mul(m.ProcessingFeePercentage.Div(decimal.NewFromInt(100)))
	return percentageFee.Add(m.ProcessingFeeFixed).Round(2)
}
