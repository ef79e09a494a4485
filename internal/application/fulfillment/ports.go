package fulfillment

import (
	"context"

	"github.com/craftline/backoffice/internal/domain/cart"
	"github.com/craftline/backoffice/internal/domain/order"
	"github.com/craftline/backoffice/internal/domain/payment"
)

// Tx is the transactional slice of the store. Everything reachable through it
// runs inside one database transaction; OrderForUpdate takes a row lock on the
// order so concurrent callbacks for the same order serialize in the database.
type Tx interface {
	OrderForUpdate(ctx context.Context, orderNumber string) (*order.Order, error)
	AttemptByPaymentID(ctx context.Context, paymentID string) (*payment.Attempt, error)
	// InsertAttempt fails with payment.ErrDuplicateAttempt when the payment id
	// is already recorded; the uniqueness constraint is the idempotency gate.
	InsertAttempt(ctx context.Context, attempt *payment.Attempt) error
	MarkPaid(ctx context.Context, orderID int64, paymentID string) error
	// CartLines reads the user's cart joined with the catalog, locking the
	// referenced product rows for the pending stock decrements.
	CartLines(ctx context.Context, userID string) ([]cart.Line, error)
	// DeductStock subtracts quantity from the product's stock, floored at
	// zero, and returns the remaining stock.
	DeductStock(ctx context.Context, productID int64, quantity int) (int, error)
}

// Store is the persistence port for the confirmation workflow.
type Store interface {
	// InTx runs fn inside a single transaction, committing when fn returns
	// nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	AttemptByPaymentID(ctx context.Context, paymentID string) (*payment.Attempt, error)
	ClearCart(ctx context.Context, userID string) error
	MarkCartCleared(ctx context.Context, paymentID string) error
	// UnclearedAttempts lists attempts whose post-commit cart clear has not
	// succeeded yet, oldest first.
	UnclearedAttempts(ctx context.Context, limit int) ([]payment.Attempt, error)
}
