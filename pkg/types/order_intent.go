package types

import "github.com/Saadasw/BookOrderBackend/pkg/enums"

// IntentBook is one book line captured at initiate time. Prices are snapshotted
// as integer cents so the amount confirmed over SMS is the amount billed.
type IntentBook struct {
	BookID         string `json:"book_id"`
	Title          string `json:"title"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	TotalCents     int    `json:"total_cents"`
}

// OrderIntent is the pending order held on a verification session until the
// customer confirms the PIN. It is stored verbatim as jsonb on the session row.
type OrderIntent struct {
	PhoneNumber   string              `json:"phone_number"`
	Address       string              `json:"address"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Books         []IntentBook        `json:"books"`
	TotalCents    int                 `json:"total_cents"`
}
