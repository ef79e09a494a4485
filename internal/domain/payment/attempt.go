package payment

import (
	"errors"
	"time"

	"github.com/craftline/backoffice/internal/domain/cart"
)

var (
	ErrAttemptNotFound  = errors.New("payment: attempt not found")
	ErrDuplicateAttempt = errors.New("payment: attempt already recorded")
)

// Attempt records that a gateway payment id has been applied to an order.
// It is the idempotency gate for the whole confirmation workflow: inserted
// exactly once inside the confirm transaction, never updated except for the
// CartCleared flag, and consulted before any side effect on replays.
//
// Receipt holds the cart lines as they were read before the cart was cleared,
// so a replayed callback can return the original receipt byte for byte.
type Attempt struct {
	PaymentID   string
	OrderNumber string
	UserID      string
	Receipt     []cart.Line
	CartCleared bool
	CreatedAt   time.Time
}
