package verification

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Saadasw/BookOrderBackend/pkg/enums"
)

// BookInput is one requested book line at initiate time. Price arrives as a
// decimal amount in the shop currency and is converted to cents internally.
type BookInput struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Quantity int
}

// InitiateInput carries the captured order intent plus the phone to verify.
type InitiateInput struct {
	PhoneNumber   string
	Address       string
	PaymentMethod enums.PaymentMethod
	Books         []BookInput
}

// InitiateResult is returned once the PIN has been dispatched.
type InitiateResult struct {
	SessionToken string
	ExpiresIn    time.Duration
	TotalCents   int
	TotalAmount  decimal.Decimal
}

// ResendResult reports the refreshed session deadline.
type ResendResult struct {
	ExpiresIn time.Duration
}
