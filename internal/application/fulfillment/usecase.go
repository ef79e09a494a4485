package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/craftline/backoffice/internal/domain/cart"
	domorder "github.com/craftline/backoffice/internal/domain/order"
	dompayment "github.com/craftline/backoffice/internal/domain/payment"
	"github.com/craftline/backoffice/internal/pkg/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	useCaseConfirm = "payment.confirm"
	spanConfirm    = "UC.ConfirmPayment"
)

// ConfirmPaymentInput carries the gateway callback fields. All are required.
type ConfirmPaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	OrderNumber      string
	UserID           string
}

// Receipt is the caller-facing result. Items reflect the cart as read before
// it was cleared; replays return the receipt stored on the attempt record.
type Receipt struct {
	PaymentID   string      `json:"payment_id"`
	OrderNumber string      `json:"order_number"`
	Items       []cart.Line `json:"items"`
}

// ConfirmPaymentUseCase sequences the payment confirmation workflow:
// signature verification, then one transaction covering the ledger transition,
// idempotency record, and stock decrements, then a best-effort cart clear.
type ConfirmPaymentUseCase struct {
	verifier *dompayment.Verifier
	store    Store
	tracer   trace.Tracer
	log      *zap.Logger
	metrics  *Metrics
}

func NewConfirmPaymentUseCase(
	verifier *dompayment.Verifier,
	store Store,
	tracer trace.Tracer,
	logger *zap.Logger,
	metrics *Metrics,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		verifier: verifier,
		store:    store,
		tracer:   tracer,
		log:      logger.With(zap.String("component", "fulfillment")),
		metrics:  metrics,
	}
}

// Execute processes one callback invocation. Returning nil error always means
// the payment is durably recorded; a failed post-commit cart clear is reported
// as success and repaired asynchronously.
func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, in ConfirmPaymentInput) (_ *Receipt, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("use_case", useCaseConfirm),
		zap.String("order_number", in.OrderNumber),
		zap.String("payment_id", in.GatewayPaymentID),
	)

	ctx, span := uc.tracer.Start(ctx, spanConfirm,
		trace.WithAttributes(
			attribute.String("use_case", useCaseConfirm),
			attribute.String("order.number", in.OrderNumber),
		),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.metrics.Requests.WithLabelValues(outcome).Inc()
		uc.metrics.Duration.Observe(lat)

		fields := []zap.Field{
			zap.String("outcome", outcome),
			zap.String("status", statusText),
			zap.Float64("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("use_case_done", fields...)
	}()

	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" ||
		in.OrderNumber == "" || in.UserID == "" {
		outcome, statusText = "rejected", "INVALID_INPUT"
		return nil, ErrInvalidInput
	}

	if !uc.verifier.Verify(in.GatewayOrderID, in.GatewayPaymentID, in.Signature) {
		outcome, statusText = "rejected", "SIGNATURE_MISMATCH"
		return nil, ErrSignatureMismatch
	}

	// Replay fast path: a recorded attempt means every side effect already
	// happened; serve the stored receipt without taking any locks.
	if att, aerr := uc.store.AttemptByPaymentID(ctx, in.GatewayPaymentID); aerr == nil {
		if att.OrderNumber != in.OrderNumber {
			outcome, statusText = "rejected", "ORDER_CONFLICT"
			return nil, ErrOrderConflict
		}
		outcome, statusText = "replay", "REPLAY"
		return receiptFromAttempt(att), nil
	} else if !errors.Is(aerr, dompayment.ErrAttemptNotFound) {
		outcome, statusText = "error", "STORE_FAILURE"
		return nil, transient("lookup attempt", aerr)
	}

	// The transaction must survive a caller disconnect: partial application
	// driven by client cancellation is not acceptable, so detach the context.
	txCtx := context.WithoutCancel(ctx)

	var (
		receipt *Receipt
		mutated bool
	)
	txErr := uc.store.InTx(txCtx, func(tx Tx) error {
		o, terr := tx.OrderForUpdate(txCtx, in.OrderNumber)
		if terr != nil {
			return terr
		}

		replay, terr := o.MarkPaid(in.GatewayPaymentID)
		if terr != nil {
			return terr
		}
		if replay {
			att, lerr := tx.AttemptByPaymentID(txCtx, in.GatewayPaymentID)
			if lerr != nil {
				if errors.Is(lerr, dompayment.ErrAttemptNotFound) {
					// Paid before attempts were recorded; nothing left to
					// apply and no stored receipt to return.
					receipt = &Receipt{PaymentID: in.GatewayPaymentID, OrderNumber: in.OrderNumber}
					return nil
				}
				return lerr
			}
			receipt = receiptFromAttempt(att)
			return nil
		}

		lines, terr := tx.CartLines(txCtx, in.UserID)
		if terr != nil {
			return terr
		}

		if terr = tx.InsertAttempt(txCtx, &dompayment.Attempt{
			PaymentID:   in.GatewayPaymentID,
			OrderNumber: in.OrderNumber,
			UserID:      in.UserID,
			Receipt:     lines,
			CreatedAt:   time.Now().UTC(),
		}); terr != nil {
			return terr
		}

		if terr = tx.MarkPaid(txCtx, o.ID, in.GatewayPaymentID); terr != nil {
			return terr
		}

		for _, ln := range lines {
			remaining, derr := tx.DeductStock(txCtx, ln.ProductID, ln.Quantity)
			if derr != nil {
				return derr
			}
			if remaining == 0 {
				logger.Warn("stock_depleted",
					zap.Int64("product_id", ln.ProductID),
					zap.Int("quantity", ln.Quantity),
				)
			}
		}

		mutated = true
		receipt = &Receipt{
			PaymentID:   in.GatewayPaymentID,
			OrderNumber: in.OrderNumber,
			Items:       lines,
		}
		return nil
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, domorder.ErrNotFound):
			outcome, statusText = "rejected", "ORDER_NOT_FOUND"
			return nil, ErrOrderNotFound
		case errors.Is(txErr, domorder.ErrPaymentConflict), errors.Is(txErr, domorder.ErrNotPayable):
			outcome, statusText = "rejected", "ORDER_CONFLICT"
			return nil, ErrOrderConflict
		case errors.Is(txErr, dompayment.ErrDuplicateAttempt):
			// Lost the insert race to a concurrent duplicate; the winner's
			// transaction is durable, so serve its receipt.
			att, aerr := uc.store.AttemptByPaymentID(ctx, in.GatewayPaymentID)
			if aerr != nil {
				outcome, statusText = "error", "STORE_FAILURE"
				return nil, transient("lookup attempt after race", aerr)
			}
			if att.OrderNumber != in.OrderNumber {
				outcome, statusText = "rejected", "ORDER_CONFLICT"
				return nil, ErrOrderConflict
			}
			outcome, statusText = "replay", "REPLAY"
			return receiptFromAttempt(att), nil
		default:
			outcome, statusText = "error", "STORE_FAILURE"
			return nil, transient("confirm transaction", txErr)
		}
	}

	if mutated {
		// Best effort: ledger and inventory are committed, so a failure here
		// must not fail the callback. The sweeper retries uncleared attempts.
		if cerr := uc.store.ClearCart(txCtx, in.UserID); cerr != nil {
			uc.metrics.CartClearFailures.Inc()
			outcome, statusText = "partial", "PARTIAL_CART_CLEAR"
			logger.Warn("cart_clear_failed",
				zap.String("user_id", in.UserID),
				zap.Error(cerr),
			)
		} else if merr := uc.store.MarkCartCleared(txCtx, in.GatewayPaymentID); merr != nil {
			logger.Warn("mark_cart_cleared_failed", zap.Error(merr))
		}
	} else {
		outcome, statusText = "replay", "REPLAY"
	}

	return receipt, nil
}

func receiptFromAttempt(att *dompayment.Attempt) *Receipt {
	return &Receipt{
		PaymentID:   att.PaymentID,
		OrderNumber: att.OrderNumber,
		Items:       att.Receipt,
	}
}
