package booking

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// two decimal places, half-up: 0.005 rounds to 0.01.
const priceScale = 2

// FinalPrice computes base_price × zone_multiplier × row_multiplier for
// one seat, rounding half-up to two decimal places once, after the full
// multiplication. Rounding per factor would drift from the receipt the
// payment collaborator settles against.
//
// The multipliers arrive already normalized: the store substitutes 1.00
// for a seat with no zone or row assigned. A stored 0.00 is therefore a
// deliberate multiplier and prices the seat at zero.
func FinalPrice(p *SeatPricing) decimal.Decimal {
	return p.BasePrice.Mul(p.ZoneMult).Mul(p.RowMult).Round(priceScale)
}

// priceSeat loads a seat's pricing factors on the caller's transaction
// and returns its final price. Reading the multipliers inside the
// reservation transaction keeps the price consistent with the
// availability check that precedes it.
func priceSeat(ctx context.Context, tx Tx, seatID uint64) (decimal.Decimal, error) {
	p, err := tx.SeatPricing(ctx, seatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, notFoundf("seat %d not found", seatID)
		}
		return decimal.Zero, internal("load seat pricing", err)
	}
	return FinalPrice(p), nil
}
