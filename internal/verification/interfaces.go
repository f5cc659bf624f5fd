package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
)

// Repository defines persistence operations for verification sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.VerificationSession) (*models.VerificationSession, error)
	// FindLiveByToken returns the session for token when it has not expired.
	// Verified state is not filtered here; callers decide what a consumed
	// session means for them.
	FindLiveByToken(ctx context.Context, token string, now time.Time) (*models.VerificationSession, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	// ResetPin swaps in a freshly issued pin id, zeroes the attempt counter
	// and pushes the expiry forward.
	ResetPin(ctx context.Context, id uuid.UUID, pinID string, expiresAt time.Time) error
	// ClaimForVerification flips verified false->true only while the session
	// is still live and unclaimed. It reports whether this caller won the
	// claim; a losing concurrent caller gets false, not an error.
	ClaimForVerification(ctx context.Context, token string, now time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes up to limit sessions past the cutoff, returning
	// the number of rows removed.
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	CountLive(ctx context.Context, now time.Time) (int64, error)
}
