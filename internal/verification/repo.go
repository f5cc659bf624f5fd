package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a verification session repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.VerificationSession) (*models.VerificationSession, error) {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repository) FindLiveByToken(ctx context.Context, token string, now time.Time) (*models.VerificationSession, error) {
	var session models.VerificationSession
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND expires_at > ?", token, now).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *repository) ResetPin(ctx context.Context, id uuid.UUID, pinID string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pin_id":     pinID,
			"attempts":   0,
			"expires_at": expiresAt,
		}).Error
}

func (r *repository) ClaimForVerification(ctx context.Context, token string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("session_token = ? AND verified = ? AND expires_at > ?", token, false, now).
		Update("verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.VerificationSession{}).Error
}

func (r *repository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	// Subquery keeps the delete bounded; sqlite and postgres both lack
	// DELETE ... LIMIT in standard form.
	sub := r.db.Model(&models.VerificationSession{}).
		Select("id").
		Where("expires_at <= ?", cutoff).
		Limit(limit)
	res := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Delete(&models.VerificationSession{})
	return res.RowsAffected, res.Error
}

func (r *repository) CountLive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationSession{}).
		Where("expires_at > ?", now).
		Count(&count).Error
	return count, err
}
