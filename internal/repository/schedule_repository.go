package repository

import (
	"context"
	"database/sql"
	"time"
)

// ScheduleRepo reads schedule instances: one staging of a performance in
// a hall at a date/time. Master data, read-only from the engine's side.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// ScheduleRecord mirrors the schedule table.
type ScheduleRecord struct {
	ID               uint64
	PerformanceTitle string
	HallID           uint64
	StartsAt         time.Time
}

// HallIDTx resolves the hall a schedule instance is staged in, within
// the given transaction. Returns sql.ErrNoRows when the schedule does
// not exist.
func (r *ScheduleRepo) HallIDTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) (uint64, error) {
	var hallID uint64
	err := tx.QueryRowContext(ctx, `SELECT hall_id FROM schedule WHERE id = ?`, scheduleID).Scan(&hallID)
	if err != nil {
		return 0, err
	}
	return hallID, nil
}

// GetByID loads one schedule instance outside any transaction, for
// display purposes.
func (r *ScheduleRepo) GetByID(ctx context.Context, scheduleID uint64) (*ScheduleRecord, error) {
	const q = `SELECT id, performance_title, hall_id, starts_at FROM schedule WHERE id = ?`
	var rec ScheduleRecord
	err := r.db.QueryRowContext(ctx, q, scheduleID).Scan(&rec.ID, &rec.PerformanceTitle, &rec.HallID, &rec.StartsAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
