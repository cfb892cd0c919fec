package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SeatRepo provides read access to seats and their pricing factors.
// Seats are master data owned by an external CRUD collaborator; this
// repository never mutates them, it only reads and locks them on behalf
// of the reservation flow.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// SeatPricingRecord mirrors the columns needed to price one seat. The
// multipliers come back as 1.00 when the seat has no zone or row.
type SeatPricingRecord struct {
	SeatID    uint64
	BasePrice decimal.Decimal
	ZoneMult  decimal.Decimal
	RowMult   decimal.Decimal
}

// HallsTx maps each existing seat id in seatIDs to its hall id within
// the given transaction. Ids that match no seat are simply absent from
// the result; the caller decides whether that is an error.
func (r *SeatRepo) HallsTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) (map[uint64]uint64, error) {
	if len(seatIDs) == 0 {
		return map[uint64]uint64{}, nil
	}
	q := `SELECT id, hall_id FROM seats WHERE id IN (` + placeholders(len(seatIDs)) + `)`
	rows, err := tx.QueryContext(ctx, q, uint64Args(seatIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]uint64, len(seatIDs))
	for rows.Next() {
		var id, hallID uint64
		if err := rows.Scan(&id, &hallID); err != nil {
			return nil, err
		}
		out[id] = hallID
	}
	return out, rows.Err()
}

// PricingTx loads the pricing factors for one seat within the given
// transaction, so the multipliers cannot change between the availability
// check and ticket creation. Returns sql.ErrNoRows for a missing seat.
func (r *SeatRepo) PricingTx(ctx context.Context, tx *sql.Tx, seatID uint64) (*SeatPricingRecord, error) {
	const q = `SELECT s.id, s.base_price,
	                  COALESCE(z.price_multiplier, 1.00),
	                  COALESCE(tr.price_multiplier, 1.00)
	           FROM seats s
	           LEFT JOIN zones z ON z.id = s.zone_id
	           LEFT JOIN theater_rows tr ON tr.id = s.row_id
	           WHERE s.id = ?`
	var rec SeatPricingRecord
	err := tx.QueryRowContext(ctx, q, seatID).Scan(&rec.SeatID, &rec.BasePrice, &rec.ZoneMult, &rec.RowMult)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LockTx acquires row-level write locks on the given seat rows for the
// remainder of the transaction. The ids are locked in ascending order so
// two transactions over overlapping sets always collide instead of
// deadlocking. Returns the ids that were actually locked (and therefore
// exist).
func (r *SeatRepo) LockTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	ordered := append([]uint64(nil), seatIDs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	q := `SELECT id FROM seats WHERE id IN (` + placeholders(len(ordered)) + `) ORDER BY id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, uint64Args(ordered)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locked []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		locked = append(locked, id)
	}
	return locked, rows.Err()
}

// placeholders returns "?, ?, ..., ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// uint64Args widens ids into the []interface{} QueryContext expects.
func uint64Args(ids []uint64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
