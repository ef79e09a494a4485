package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/craftline/backoffice/internal/application/fulfillment"
	"github.com/craftline/backoffice/internal/domain/cart"
	"github.com/craftline/backoffice/internal/domain/order"
	"github.com/craftline/backoffice/internal/domain/payment"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Store implements fulfillment.Store on database/sql. Transactional methods
// hang off storeTx so everything inside InTx shares one *sql.Tx.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx fulfillment.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) AttemptByPaymentID(ctx context.Context, paymentID string) (*payment.Attempt, error) {
	return attemptByPaymentID(ctx, s.db, paymentID)
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (s *Store) MarkCartCleared(ctx context.Context, paymentID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE payment_attempts SET cart_cleared = true WHERE payment_id = $1`, paymentID)
	return err
}

func (s *Store) UnclearedAttempts(ctx context.Context, limit int) ([]payment.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_id, order_number, user_id, receipt, cart_cleared, created_at
		FROM payment_attempts
		WHERE cart_cleared = false
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []payment.Attempt
	for rows.Next() {
		att, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *att)
	}
	return attempts, rows.Err()
}

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) OrderForUpdate(ctx context.Context, orderNumber string) (*order.Order, error) {
	var (
		o         order.Order
		paymentID sql.NullString
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, order_number, user_id, payment_status, payment_id, created_at, updated_at
		FROM orders
		WHERE order_number = $1
		FOR UPDATE`, orderNumber).
		Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &paymentID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.PaymentID = paymentID.String
	return &o, nil
}

func (t *storeTx) AttemptByPaymentID(ctx context.Context, paymentID string) (*payment.Attempt, error) {
	return attemptByPaymentID(ctx, t.tx, paymentID)
}

func (t *storeTx) InsertAttempt(ctx context.Context, att *payment.Attempt) error {
	receipt, err := json.Marshal(att.Receipt)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO payment_attempts (payment_id, order_number, user_id, receipt, cart_cleared, created_at)
		VALUES ($1, $2, $3, $4, false, $5)`,
		att.PaymentID, att.OrderNumber, att.UserID, receipt, att.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return payment.ErrDuplicateAttempt
	}
	return err
}

func (t *storeTx) MarkPaid(ctx context.Context, orderID int64, paymentID string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, payment_id = $2, updated_at = now()
		WHERE id = $3`,
		order.StatusPaid, paymentID, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}

// CartLines locks the referenced product rows so the stock decrements that
// follow cannot interleave with admin adjustments.
func (t *storeTx) CartLines(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT p.id, p.name, p.price_cents, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY p.id
		FOR UPDATE OF p`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.PriceCents, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (t *storeTx) DeductStock(ctx context.Context, productID int64, quantity int) (int, error) {
	var remaining int
	err := t.tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock = GREATEST(stock - $2, 0)
		WHERE id = $1
		RETURNING stock`, productID, quantity).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("deduct stock: product %d missing", productID)
	}
	return remaining, err
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func attemptByPaymentID(ctx context.Context, q rowQueryer, paymentID string) (*payment.Attempt, error) {
	row := q.QueryRowContext(ctx, `
		SELECT payment_id, order_number, user_id, receipt, cart_cleared, created_at
		FROM payment_attempts
		WHERE payment_id = $1`, paymentID)
	att, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrAttemptNotFound
	}
	return att, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*payment.Attempt, error) {
	var (
		att     payment.Attempt
		receipt []byte
	)
	if err := s.Scan(&att.PaymentID, &att.OrderNumber, &att.UserID, &receipt, &att.CartCleared, &att.CreatedAt); err != nil {
		return nil, err
	}
	if len(receipt) > 0 {
		if err := json.Unmarshal(receipt, &att.Receipt); err != nil {
			return nil, fmt.Errorf("decode receipt: %w", err)
		}
	}
	return &att, nil
}
