package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// SeatReservationRepo persists administrative seat blocks: explicit
// (seat, schedule) holds created by an operator, independent of any
// order. For availability they count exactly like bookings.
type SeatReservationRepo struct {
	db *sql.DB
}

// NewSeatReservationRepo returns a SeatReservationRepo bound to the
// given database.
func NewSeatReservationRepo(db *sql.DB) *SeatReservationRepo {
	return &SeatReservationRepo{db: db}
}

// SeatReservationRecord mirrors the seat_reservations table.
type SeatReservationRecord struct {
	ID              uint64
	SeatID          uint64
	ScheduleID      uint64
	ReservationType string
	Notes           string
	UserID          uint64
}

// CreateTx inserts one administrative block within the transaction. The
// UNIQUE(seat_id, schedule_id) constraint backs up the engine's locked
// availability check; a violation maps to ErrDuplicate.
func (r *SeatReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *SeatReservationRecord) error {
	const q = `INSERT INTO seat_reservations (seat_id, schedule_id, reservation_type, notes, user_id)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rec.SeatID, rec.ScheduleID, rec.ReservationType, rec.Notes, rec.UserID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 { // duplicate entry
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// DeleteTx removes a block by id. Returns ErrNotFound when no row
// matched.
func (r *SeatReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM seat_reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBySeatScheduleTx removes the block for a (seat, schedule) pair
// and reports whether one existed.
func (r *SeatReservationRepo) DeleteBySeatScheduleTx(ctx context.Context, tx *sql.Tx, seatID, scheduleID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE seat_id = ? AND schedule_id = ?`, seatID, scheduleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
