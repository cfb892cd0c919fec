package booking

import (
	"context"
	"errors"
)

// BlockSeat places an administrative hold on a (seat, schedule) pair.
// For availability purposes the hold behaves exactly like a booking, so
// it is created under the same seat row lock discipline as Initiate: a
// block cannot slip in underneath a racing reservation for the same
// seat, and vice versa.
func (e *Engine) BlockSeat(ctx context.Context, seatID, scheduleID, adminID uint64, kind, note string) (*SeatBlock, error) {
	if seatID == 0 || scheduleID == 0 {
		return nil, invalidArgumentf("seat id and schedule id are required")
	}
	if kind == "" {
		kind = "blocked_by_admin"
	}
	blk := &SeatBlock{SeatID: seatID, ScheduleID: scheduleID, Kind: kind, Note: note, CreatedBy: adminID}
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		hallID, err := tx.ScheduleHall(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundf("schedule %d not found", scheduleID)
			}
			return internal("resolve schedule", err)
		}
		halls, err := tx.SeatHalls(ctx, []uint64{seatID})
		if err != nil {
			return internal("resolve seat", err)
		}
		h, ok := halls[seatID]
		if !ok {
			return notFoundf("seat %d not found", seatID)
		}
		if h != hallID {
			return invalidArgumentf("seat %d does not belong to hall %d", seatID, hallID)
		}
		if err := checkAvailableLocked(ctx, tx, scheduleID, []uint64{seatID}); err != nil {
			return err
		}
		if err := tx.CreateSeatBlock(ctx, blk); err != nil {
			return internal("create seat block", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blk, nil
}

// UnblockSeat removes an administrative hold by its id.
func (e *Engine) UnblockSeat(ctx context.Context, blockID uint64) error {
	if blockID == 0 {
		return invalidArgumentf("block id is required")
	}
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		return tx.DeleteSeatBlock(ctx, blockID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFoundf("seat block %d not found", blockID)
		}
		return internal("delete seat block", err)
	}
	return nil
}

// UnblockSeatPair removes the hold for a (seat, schedule) pair. Removing
// a hold that does not exist is not an error; the desired end state is
// already true.
func (e *Engine) UnblockSeatPair(ctx context.Context, seatID, scheduleID uint64) error {
	if seatID == 0 || scheduleID == 0 {
		return invalidArgumentf("seat id and schedule id are required")
	}
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		_, err := tx.DeleteSeatBlockBySeat(ctx, seatID, scheduleID)
		return err
	})
	if err != nil {
		return internal("delete seat block", err)
	}
	return nil
}
