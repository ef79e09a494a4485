package fulfillment_test

import (
	"context"
	"sync"

	"github.com/craftline/backoffice/internal/application/fulfillment"
	"github.com/craftline/backoffice/internal/domain/cart"
	"github.com/craftline/backoffice/internal/domain/order"
	"github.com/craftline/backoffice/internal/domain/payment"
)

// fakeState is the store's world: orders by number, attempts by payment id,
// carts by user id, stock by product id.
type fakeState struct {
	orders   map[string]*order.Order
	attempts map[string]*payment.Attempt
	carts    map[string][]cart.Line
	stock    map[int64]int
}

func newFakeState() *fakeState {
	return &fakeState{
		orders:   make(map[string]*order.Order),
		attempts: make(map[string]*payment.Attempt),
		carts:    make(map[string][]cart.Line),
		stock:    make(map[int64]int),
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.attempts {
		a := *v
		a.Receipt = append([]cart.Line(nil), v.Receipt...)
		c.attempts[k] = &a
	}
	for k, v := range s.carts {
		c.carts[k] = append([]cart.Line(nil), v...)
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	return c
}

// fakeStore implements fulfillment.Store with snapshot-rollback transactions:
// a failing InTx leaves the committed state untouched, mirroring the database.
type fakeStore struct {
	mu    sync.Mutex
	state *fakeState

	deductErr  error // injected mid-transaction failure
	clearErr   error // injected post-commit cart clear failure
	clearCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newFakeState()}
}

func (f *fakeStore) InTx(_ context.Context, fn func(tx fulfillment.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := f.state.clone()
	if err := fn(&fakeTx{store: f, state: staged}); err != nil {
		return err
	}
	f.state = staged
	return nil
}

func (f *fakeStore) AttemptByPaymentID(_ context.Context, paymentID string) (*payment.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return attemptFrom(f.state, paymentID)
}

func (f *fakeStore) ClearCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.state.carts, userID)
	f.clearCalls++
	return nil
}

func (f *fakeStore) MarkCartCleared(_ context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if att, ok := f.state.attempts[paymentID]; ok {
		att.CartCleared = true
	}
	return nil
}

func (f *fakeStore) UnclearedAttempts(_ context.Context, limit int) ([]payment.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []payment.Attempt
	for _, att := range f.state.attempts {
		if !att.CartCleared {
			out = append(out, *att)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeTx struct {
	store *fakeStore
	state *fakeState
}

func (t *fakeTx) OrderForUpdate(_ context.Context, orderNumber string) (*order.Order, error) {
	o, ok := t.state.orders[orderNumber]
	if !ok {
		return nil, order.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (t *fakeTx) AttemptByPaymentID(_ context.Context, paymentID string) (*payment.Attempt, error) {
	return attemptFrom(t.state, paymentID)
}

func (t *fakeTx) InsertAttempt(_ context.Context, att *payment.Attempt) error {
	if _, exists := t.state.attempts[att.PaymentID]; exists {
		return payment.ErrDuplicateAttempt
	}
	c := *att
	c.Receipt = append([]cart.Line(nil), att.Receipt...)
	t.state.attempts[att.PaymentID] = &c
	return nil
}

func (t *fakeTx) MarkPaid(_ context.Context, orderID int64, paymentID string) error {
	for _, o := range t.state.orders {
		if o.ID == orderID {
			o.Status = order.StatusPaid
			o.PaymentID = paymentID
			return nil
		}
	}
	return order.ErrNotFound
}

func (t *fakeTx) CartLines(_ context.Context, userID string) ([]cart.Line, error) {
	return append([]cart.Line(nil), t.state.carts[userID]...), nil
}

func (t *fakeTx) DeductStock(_ context.Context, productID int64, quantity int) (int, error) {
	if t.store.deductErr != nil {
		return 0, t.store.deductErr
	}
	remaining := t.state.stock[productID] - quantity
	if remaining < 0 {
		remaining = 0
	}
	t.state.stock[productID] = remaining
	return remaining, nil
}

func attemptFrom(s *fakeState, paymentID string) (*payment.Attempt, error) {
	att, ok := s.attempts[paymentID]
	if !ok {
		return nil, payment.ErrAttemptNotFound
	}
	c := *att
	c.Receipt = append([]cart.Line(nil), att.Receipt...)
	return &c, nil
}
