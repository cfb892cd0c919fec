package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name string
		base string
		zone string
		row  string
		want string
	}{
		{"plain seat", "100.00", "1.00", "1.00", "100.00"},
		{"zone premium", "500.00", "1.20", "1.00", "600.00"},
		{"zone and row premium", "200.00", "1.50", "1.10", "330.00"},
		{"discount zone", "100.00", "0.50", "1.00", "50.00"},
		{"half rounds up", "10.05", "1.50", "1.00", "15.08"},
		{"rounds once at the end", "33.33", "1.15", "1.05", "40.25"},
		// a stored 0.00 multiplier is a real price factor, not an
		// absence: absence is normalized to 1.00 by the store.
		{"free zone prices the seat at zero", "80.00", "0.00", "1.25", "0.00"},
		{"free row prices the seat at zero", "80.00", "1.25", "0.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &SeatPricing{
				BasePrice: decimal.RequireFromString(tt.base),
				ZoneMult:  decimal.RequireFromString(tt.zone),
				RowMult:   decimal.RequireFromString(tt.row),
			}
			assert.Equal(t, tt.want, FinalPrice(p).StringFixed(2))
		})
	}
}
