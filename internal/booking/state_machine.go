package booking

import (
	"context"

	"github.com/shopspring/decimal"
)

// The order lifecycle: awaiting_payment is the sole initial state and
// the three terminal states are reached exactly once. There is no
// transition out of a terminal state.
var transitions = map[Status]map[Status]bool{
	StatusAwaitingPayment: {
		StatusPaid:          true,
		StatusPaymentFailed: true,
		StatusCancelled:     true,
	},
}

// canTransition reports whether from → to is a legal edge.
func canTransition(from, to Status) bool {
	return transitions[from][to]
}

// transition applies from → to on an order already locked in tx,
// together with its compensating actions:
//
//	→ paid:            one sale per ticket; tickets and bookings retained.
//	→ payment_failed,
//	→ cancelled:       bookings deleted, then the orphaned tickets; the
//	                   seats become available again. The order row stays
//	                   for audit with its final status.
//
// The status update and the actions share the caller's transaction, so a
// partial failure rolls the whole transition back and leaves the order
// in its prior state for a retry.
//
// Callers must have verified the edge with canTransition; terminal
// no-op and conflict handling live in the settlement layer.
func (e *Engine) transition(ctx context.Context, tx Tx, ord *Order, to Status, method string) (total decimal.Decimal, err error) {
	switch to {
	case StatusPaid:
		tickets, err := tx.TicketsByOrder(ctx, ord.ID)
		if err != nil {
			return decimal.Zero, internal("load tickets for sale", err)
		}
		for _, t := range tickets {
			if err := tx.CreateSale(ctx, ord.ID, t.TicketID, t.FinalPrice, method); err != nil {
				return decimal.Zero, internal("create sale", err)
			}
			total = total.Add(t.FinalPrice)
		}
	case StatusPaymentFailed, StatusCancelled:
		ticketIDs, err := tx.DeleteBookingsByOrder(ctx, ord.ID)
		if err != nil {
			return decimal.Zero, internal("release bookings", err)
		}
		if err := tx.DeleteTickets(ctx, ticketIDs); err != nil {
			return decimal.Zero, internal("release tickets", err)
		}
	default:
		return decimal.Zero, conflictf("no transition to %s", to)
	}
	if err := tx.UpdateOrderStatus(ctx, ord.ID, to); err != nil {
		return decimal.Zero, internal("update order status", err)
	}
	return total, nil
}
