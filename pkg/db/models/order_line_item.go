package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is the snapshot of one book on a confirmed order. Title and
// unit price are copied from the intent rather than joined from a catalog so
// later catalog edits cannot rewrite order history.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	BookID         string    `gorm:"column:book_id;not null"`
	Title          string    `gorm:"column:title;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	TotalCents     int       `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
