package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Saadasw/BookOrderBackend/pkg/types"
)

// VerificationSession is a pending order awaiting SMS PIN confirmation.
// The session token is the customer's only handle on the pending order;
// the Infobip pin id is the provider's handle on the delivered PIN.
// Rows are deleted on successful confirmation, on attempt exhaustion, and by
// the expiry sweep.
type VerificationSession struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionToken string             `gorm:"column:session_token;not null;uniqueIndex"`
	PhoneNumber  string             `gorm:"column:phone_number;not null;index"`
	PinID        string             `gorm:"column:pin_id;not null"`
	Attempts     int                `gorm:"column:attempts;not null;default:0"`
	Verified     bool               `gorm:"column:verified;not null;default:false"`
	OrderData    *types.OrderIntent `gorm:"column:order_data;type:jsonb;serializer:json"`
	ExpiresAt    time.Time          `gorm:"column:expires_at;not null;index"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
