package repository

import (
	"context"
	"database/sql"
	"strings"
)

// BookingRepo persists bookings, the join of a ticket to an order and a
// schedule instance. The existence of a booking (via its ticket's seat)
// is what makes a seat unavailable for that schedule.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts one booking within the given transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, ticketID, orderID, scheduleID uint64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (ticket_id, order_id, schedule_id) VALUES (?, ?, ?)`,
		ticketID, orderID, scheduleID)
	return err
}

const bookedSeatsQuery = `
	SELECT t.seat_id
	FROM bookings b
	JOIN tickets t ON t.id = b.ticket_id
	WHERE b.schedule_id = ? AND t.seat_id IN (%in%)`

const blockedSeatsQuery = `
	SELECT sr.seat_id
	FROM seat_reservations sr
	WHERE sr.schedule_id = ? AND sr.seat_id IN (%in%)`

// holdQuery expands the seat id markers in one of the hold queries and
// appends the locking clause when asked to.
func holdQuery(base string, n int, lock bool) string {
	q := strings.ReplaceAll(base, "%in%", placeholders(n))
	if lock {
		q += " FOR UPDATE"
	}
	return q
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// unavailableSeats returns the subset of seatIDs held for the schedule
// by a booking or an administrative block. With lock set, both reads are
// locking reads: under REPEATABLE READ a plain SELECT would keep
// returning the consistent snapshot established by the transaction's
// earlier statements, which can predate a concurrent booking committed
// while this transaction waited on the seat row lock. A locking read
// always reads the latest committed rows, so the lock acquirer decides
// availability from what actually committed before it.
func unavailableSeats(ctx context.Context, q querier, scheduleID uint64, seatIDs []uint64, lock bool) ([]uint64, error) {
	taken := make(map[uint64]bool)
	for _, base := range []string{bookedSeatsQuery, blockedSeatsQuery} {
		args := make([]interface{}, 0, len(seatIDs)+1)
		args = append(args, scheduleID)
		args = append(args, uint64Args(seatIDs)...)
		rows, err := q.QueryContext(ctx, holdQuery(base, len(seatIDs), lock), args...)
		if err != nil {
			return nil, err
		}
		ids, err := scanSeatIDs(rows)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			taken[id] = true
		}
	}
	out := make([]uint64, 0, len(taken))
	for _, id := range seatIDs {
		if taken[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// UnavailableTx is the authoritative availability check, run inside the
// reservation transaction after the seat rows are locked. Its reads lock
// the matching booking and reservation rows too, so it observes every
// booking committed before the seat lock was granted.
func (r *BookingRepo) UnavailableTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	return unavailableSeats(ctx, tx, scheduleID, seatIDs, true)
}

// UnavailableSnapshot is the lock-free variant for read-side queries. It
// runs on the pool, outside any transaction: a best-effort answer for
// seat-map rendering, re-verified under the lock by a later Initiate.
func (r *BookingRepo) UnavailableSnapshot(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	return unavailableSeats(ctx, r.db, scheduleID, seatIDs, false)
}

func scanSeatIDs(rows *sql.Rows) ([]uint64, error) {
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByOrderTx removes all bookings of an order and returns the ids
// of the tickets they referenced, so the caller can delete the orphans.
func (r *BookingRepo) DeleteByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT ticket_id FROM bookings WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	ticketIDs, err := scanSeatIDs(rows)
	if err != nil {
		return nil, err
	}
	if len(ticketIDs) == 0 {
		return []uint64{}, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE order_id = ?`, orderID); err != nil {
		return nil, err
	}
	return ticketIDs, nil
}
