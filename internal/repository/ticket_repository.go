package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// TicketRepo persists tickets: immutable priced claims on one seat.
// final_price is written exactly once at creation and never updated;
// there is deliberately no update method here.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketRecord mirrors the tickets table.
type TicketRecord struct {
	ID         uint64
	SeatID     uint64
	FinalPrice decimal.Decimal
}

// CreateTx inserts a ticket within the given transaction and returns
// its generated id.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, seatID uint64, finalPrice decimal.Decimal) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (seat_id, final_price) VALUES (?, ?)`,
		seatID, finalPrice.StringFixed(2))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ByOrderTx returns all tickets reachable through the order's bookings,
// within the given transaction.
func (r *TicketRepo) ByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]TicketRecord, error) {
	const q = `SELECT t.id, t.seat_id, t.final_price
	           FROM tickets t
	           JOIN bookings b ON b.ticket_id = t.id
	           WHERE b.order_id = ?
	           ORDER BY t.id`
	rows, err := tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickets []TicketRecord
	for rows.Next() {
		var t TicketRecord
		if err := rows.Scan(&t.ID, &t.SeatID, &t.FinalPrice); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// DeleteTx removes the given tickets within the transaction. Used only
// by the release path after their bookings are gone; a ticket with a
// live booking is protected by the FK.
func (r *TicketRepo) DeleteTx(ctx context.Context, tx *sql.Tx, ticketIDs []uint64) error {
	if len(ticketIDs) == 0 {
		return nil
	}
	q := `DELETE FROM tickets WHERE id IN (` + placeholders(len(ticketIDs)) + `)`
	_, err := tx.ExecContext(ctx, q, uint64Args(ticketIDs)...)
	return err
}
