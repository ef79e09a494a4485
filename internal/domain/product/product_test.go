package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		pname      string
		priceCents int64
		wantErr    error
	}{
		{"valid", "Mug", 500, nil},
		{"blank name", "   ", 500, ErrInvalidName},
		{"zero price", "Mug", 0, ErrInvalidPrice},
		{"negative price", "Mug", -1, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.pname, tt.priceCents, "/uploads/x.png")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Mug", p.Name)
			assert.Equal(t, 0, p.Stock)
		})
	}
}

func TestClampDeduct(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		qty   int
		want  int
	}{
		{"normal deduct", 10, 3, 7},
		{"exact depletion", 3, 3, 0},
		{"oversell clamps at zero", 2, 5, 0},
		{"zero stock stays zero", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampDeduct(tt.stock, tt.qty))
		})
	}
}
