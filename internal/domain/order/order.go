package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrPaymentConflict = errors.New("order: a different payment is already recorded")
	ErrNotPayable      = errors.New("order: status does not allow payment")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
	StatusFailed  Status = "Failed"
)

// Order is the ledger entry for one checkout. Number is the merchant-assigned
// order number carried through the gateway; PaymentID stays empty until the
// order is paid.
type Order struct {
	ID        int64
	Number    string
	UserID    string
	Status    Status
	PaymentID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkPaid applies the only legal transition, Pending -> Paid. It reports
// replay=true when the order is already paid with the same payment id, which
// callers must treat as a successful no-op. A different payment id on a paid
// order is a conflict and never overwrites the recorded one.
func (o *Order) MarkPaid(paymentID string) (replay bool, err error) {
	switch o.Status {
	case StatusPaid:
		if o.PaymentID == paymentID {
			return true, nil
		}
		return false, ErrPaymentConflict
	case StatusPending:
		o.Status = StatusPaid
		o.PaymentID = paymentID
		o.touch()
		return false, nil
	default:
		return false, ErrNotPayable
	}
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
