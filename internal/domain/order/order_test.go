package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_MarkPaid(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		recorded   string
		paymentID  string
		wantReplay bool
		wantErr    error
	}{
		{"pending transitions to paid", StatusPending, "", "pay_1", false, nil},
		{"paid with same id is a replay", StatusPaid, "pay_1", "pay_1", true, nil},
		{"paid with different id conflicts", StatusPaid, "pay_1", "pay_2", false, ErrPaymentConflict},
		{"failed order is not payable", StatusFailed, "", "pay_1", false, ErrNotPayable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{ID: 1, Number: "ORD-1", Status: tt.status, PaymentID: tt.recorded}

			replay, err := o.MarkPaid(tt.paymentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, o.Status, "failed transition must not mutate status")
				assert.Equal(t, tt.recorded, o.PaymentID, "failed transition must not overwrite payment id")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReplay, replay)
			assert.Equal(t, StatusPaid, o.Status)
			assert.Equal(t, tt.paymentID, o.PaymentID)
		})
	}
}

func TestOrder_MarkPaid_IsIdempotent(t *testing.T) {
	o := &Order{ID: 1, Number: "ORD-1", Status: StatusPending}

	replay, err := o.MarkPaid("pay_1")
	require.NoError(t, err)
	assert.False(t, replay)

	replay, err = o.MarkPaid("pay_1")
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, "pay_1", o.PaymentID)
}
