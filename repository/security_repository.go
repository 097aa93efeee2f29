package repository

import (
	"context"
	"time"

	"github.com/agromarket/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SecurityRepository is the append-only audit log behind the fraud and
// rate-limit gates.
type SecurityRepository interface {
	Log(ctx context.Context, event *models.SecurityEvent) error
	// CountRecentAttempts counts payment_attempt events for a user since
	// the given instant (the sliding rate-limit window).
	CountRecentAttempts(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	// IsIPBlocked reports whether any event for this IP carries the
	// operator's blocked flag.
	IsIPBlocked(ctx context.Context, ip string) (bool, error)
	// SetIPBlocked toggles the blocked flag on all events of an IP and
	// returns the number of rows touched. Operator action only.
	SetIPBlocked(ctx context.Context, ip string, blocked bool) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.SecurityEvent, error)
}

type gormSecurityRepo struct {
	db *gorm.DB
}

func NewGormSecurityRepo(db *gorm.DB) SecurityRepository {
	return &gormSecurityRepo{db: db}
}

func (r *gormSecurityRepo) Log(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormSecurityRepo) CountRecentAttempts(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SecurityEvent{}).
		Where("user_id = ? AND event_type = ? AND created_at >= ?",
			userID, models.EventPaymentAttempt, since).
		Count(&count).Error
	return count, err
}

func (r *gormSecurityRepo) IsIPBlocked(ctx context.Context, ip string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SecurityEvent{}).
		Where("ip_address = ? AND is_blocked = ?", ip, true).
		Count(&count).Error
	return count > 0, err
}

func (r *gormSecurityRepo) SetIPBlocked(ctx context.Context, ip string, blocked bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.SecurityEvent{}).
		Where("ip_address = ?", ip).
		Update("is_blocked", blocked)
	return res.RowsAffected, res.Error
}

func (r *gormSecurityRepo) Recent(ctx context.Context, limit int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
