package booking

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// LineItem is one priced seat within an initiated order.
type LineItem struct {
	SeatID   uint64          `json:"seat_id"`
	TicketID uint64          `json:"ticket_id"`
	Price    decimal.Decimal `json:"price"`
}

// InitiateResult is handed back to the caller so the external payment
// collaborator can resolve the order through the payment handle.
type InitiateResult struct {
	OrderID       uint64          `json:"order_id"`
	Items         []LineItem      `json:"line_items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentHandle string          `json:"payment_handle"`
}

// Initiate reserves the given seats for a schedule instance and creates
// an order awaiting payment. The whole operation runs in one store
// transaction: schedule resolution, hall membership check, availability
// check under seat row locks, pricing, and persistence of the order,
// tickets and bookings. Any failure rolls the transaction back, so no
// caller ever observes a partially ticketed order.
func (e *Engine) Initiate(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*InitiateResult, error) {
	if userID == 0 {
		return nil, invalidArgumentf("user id is required")
	}
	if scheduleID == 0 {
		return nil, invalidArgumentf("schedule id is required")
	}
	if err := validateSeatIDs(seatIDs); err != nil {
		return nil, err
	}

	res := &InitiateResult{PaymentHandle: e.newHandle()}
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		hallID, err := tx.ScheduleHall(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundf("schedule %d not found", scheduleID)
			}
			return internal("resolve schedule", err)
		}

		// Every seat must exist and belong to the schedule's hall; a seat
		// from another hall can never be booked for this staging.
		halls, err := tx.SeatHalls(ctx, seatIDs)
		if err != nil {
			return internal("resolve seat halls", err)
		}
		for _, id := range seatIDs {
			h, ok := halls[id]
			if !ok {
				return notFoundf("seat %d not found", id)
			}
			if h != hallID {
				return invalidArgumentf("seat %d does not belong to hall %d", id, hallID)
			}
		}

		if err := checkAvailableLocked(ctx, tx, scheduleID, seatIDs); err != nil {
			return err
		}

		orderID, err := tx.CreateOrder(ctx, userID, StatusAwaitingPayment, res.PaymentHandle)
		if err != nil {
			return internal("create order", err)
		}
		res.OrderID = orderID

		total := decimal.Zero
		items := make([]LineItem, 0, len(seatIDs))
		for _, seatID := range seatIDs {
			price, err := priceSeat(ctx, tx, seatID)
			if err != nil {
				return err
			}
			ticketID, err := tx.CreateTicket(ctx, seatID, price)
			if err != nil {
				return internal("create ticket", err)
			}
			if err := tx.CreateBooking(ctx, ticketID, orderID, scheduleID); err != nil {
				return internal("create booking", err)
			}
			items = append(items, LineItem{SeatID: seatID, TicketID: ticketID, Price: price})
			total = total.Add(price)
		}
		res.Items = items
		res.TotalAmount = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
