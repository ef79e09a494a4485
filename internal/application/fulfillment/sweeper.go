package fulfillment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Sweeper repairs partially applied confirmations: attempts whose ledger and
// inventory changes committed but whose cart clear failed. It retries the
// clear on an interval until it sticks.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(store Store, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      logger.With(zap.String("component", "fulfillment_sweeper")),
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("sweeper_started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper_stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes one batch of uncleared attempts.
func (s *Sweeper) Sweep(ctx context.Context) {
	attempts, err := s.store.UnclearedAttempts(ctx, sweepBatchSize)
	if err != nil {
		s.log.Warn("sweep_list_failed", zap.Error(err))
		return
	}

	for _, att := range attempts {
		if err := s.store.ClearCart(ctx, att.UserID); err != nil {
			s.log.Warn("sweep_clear_failed",
				zap.String("payment_id", att.PaymentID),
				zap.String("user_id", att.UserID),
				zap.Error(err),
			)
			continue
		}
		if err := s.store.MarkCartCleared(ctx, att.PaymentID); err != nil {
			s.log.Warn("sweep_mark_failed",
				zap.String("payment_id", att.PaymentID),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("sweep_cart_cleared",
			zap.String("payment_id", att.PaymentID),
			zap.String("user_id", att.UserID),
		)
	}
}
