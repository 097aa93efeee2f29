package models

import (
	"time"

	"github.com/google/uuid"
)

type SecurityEventType string

const (
	EventPaymentAttempt     SecurityEventType = "payment_attempt"
	EventFraudDetection     SecurityEventType = "fraud_detection"
	EventSuspiciousActivity SecurityEventType = "suspicious_activity"
	EventRateLimitExceeded  SecurityEventType = "rate_limit_exceeded"
	EventIPBlocked          SecurityEventType = "ip_blocked"
)

// SecurityEvent is an append-only audit row. Rows are never updated after
// creation except for the operator toggling IsBlocked.
type SecurityEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventType SecurityEventType `gorm:"type:varchar(30);not null;index" json:"event_type"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	IPAddress string            `gorm:"not null;index" json:"ip_address"`
	UserAgent string            `json:"user_agent"`
	Details   string            `gorm:"type:jsonb;default:'{}'" json:"details"`
	RiskScore int               `gorm:"not null;default:0" json:"risk_score"`
	IsBlocked bool              `gorm:"not null;default:false" json:"is_blocked"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}
