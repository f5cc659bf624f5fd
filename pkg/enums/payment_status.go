package enums

// PaymentStatus tracks payment settlement on an order. Capture itself happens
// outside this service; the field is recorded for downstream reconciliation.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (p PaymentStatus) String() string {
	return string(p)
}
