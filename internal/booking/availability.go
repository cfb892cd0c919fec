package booking

import "context"

// checkAvailableLocked verifies inside tx that every requested seat is
// free for the schedule. It locks the seat rows first, so a concurrent
// check on an overlapping set blocks until this transaction finishes;
// whichever transaction acquires the lock second observes the first's
// committed bookings. The lock covers only the requested seat rows,
// never the whole hall.
func checkAvailableLocked(ctx context.Context, tx Tx, scheduleID uint64, seatIDs []uint64) error {
	taken, err := tx.LockUnavailable(ctx, scheduleID, seatIDs)
	if err != nil {
		return internal("lock and check seat availability", err)
	}
	if len(taken) > 0 {
		return conflictSeats(taken)
	}
	return nil
}

// CheckAvailability returns the subset of seatIDs that is currently held
// for the schedule, reading without locks. It exists for seat-map
// rendering; the answer can be stale by the time the caller acts on it,
// and Initiate re-checks under the lock.
func (e *Engine) CheckAvailability(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	if scheduleID == 0 {
		return nil, invalidArgumentf("schedule id is required")
	}
	if err := validateSeatIDs(seatIDs); err != nil {
		return nil, err
	}
	taken, err := e.store.SnapshotUnavailable(ctx, scheduleID, seatIDs)
	if err != nil {
		return nil, internal("availability snapshot", err)
	}
	if taken == nil {
		taken = []uint64{}
	}
	return taken, nil
}

// validateSeatIDs enforces the Initiate input contract: non-empty,
// positive, duplicate-free. Duplicates are a caller error, not something
// to silently collapse, because the caller's total would not match the
// priced order.
func validateSeatIDs(seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return invalidArgumentf("seat_ids is required")
	}
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			return invalidArgumentf("seat id must be a positive identifier")
		}
		if _, dup := seen[id]; dup {
			return invalidArgumentf("duplicate seat id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
