package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Saadasw/BookOrderBackend/pkg/enums"
)

// Order is a confirmed book order. Rows are only created after the customer
// verifies the SMS PIN, so every order starts life already verified.
// Orders are never deleted; cancellation is a status transition.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PhoneNumber      string              `gorm:"column:phone_number;not null;index"`
	Address          string              `gorm:"column:address;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'verified'"`
	TotalAmountCents int                 `gorm:"column:total_amount_cents;not null"`
	Verified         bool                `gorm:"column:verified;not null;default:true"`
	Items            []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
