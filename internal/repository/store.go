package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teatralka/box-office/internal/booking"
)

// Store adapts the MySQL repositories to the engine's booking.Store
// interface. All exclusion the engine relies on comes from InnoDB row
// locks taken inside WithinTx; the adapter itself holds no state beyond
// the pool handle and the repos.
type Store struct {
	db           *sql.DB
	Seats        *SeatRepo
	Schedule     *ScheduleRepo
	Orders       *OrderRepo
	Tickets      *TicketRepo
	Bookings     *BookingRepo
	Sales        *SaleRepo
	Reservations *SeatReservationRepo
}

// NewStore builds a Store and its repositories over one pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Seats:        NewSeatRepo(db),
		Schedule:     NewScheduleRepo(db),
		Orders:       NewOrderRepo(db),
		Tickets:      NewTicketRepo(db),
		Bookings:     NewBookingRepo(db),
		Sales:        NewSaleRepo(db),
		Reservations: NewSeatReservationRepo(db),
	}
}

// WithinTx runs fn inside one database transaction. The transaction is
// rolled back on error or panic and committed otherwise; row locks
// taken by fn are released at that point.
func (s *Store) WithinTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbtx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: dbtx}); err != nil {
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SnapshotUnavailable implements the lock-free read-side availability
// query.
func (s *Store) SnapshotUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	return s.Bookings.UnavailableSnapshot(ctx, scheduleID, seatIDs)
}

// storeTx wires one *sql.Tx through the repositories, translating
// sql.ErrNoRows and repo sentinels into booking.ErrNotFound.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func notFoundErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return booking.ErrNotFound
	}
	return err
}

func (t *storeTx) ScheduleHall(ctx context.Context, scheduleID uint64) (uint64, error) {
	hallID, err := t.store.Schedule.HallIDTx(ctx, t.tx, scheduleID)
	if err != nil {
		return 0, notFoundErr(err)
	}
	return hallID, nil
}

func (t *storeTx) SeatHalls(ctx context.Context, seatIDs []uint64) (map[uint64]uint64, error) {
	return t.store.Seats.HallsTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) LockUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	// Lock the seat rows first; everything after runs under exclusion.
	// The availability check itself is a locking read so it sees
	// bookings committed while we waited for the seat locks, not the
	// transaction's earlier read snapshot.
	if _, err := t.store.Seats.LockTx(ctx, t.tx, seatIDs); err != nil {
		return nil, err
	}
	return t.store.Bookings.UnavailableTx(ctx, t.tx, scheduleID, seatIDs)
}

func (t *storeTx) SeatPricing(ctx context.Context, seatID uint64) (*booking.SeatPricing, error) {
	rec, err := t.store.Seats.PricingTx(ctx, t.tx, seatID)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return &booking.SeatPricing{
		SeatID:    rec.SeatID,
		BasePrice: rec.BasePrice,
		ZoneMult:  rec.ZoneMult,
		RowMult:   rec.RowMult,
	}, nil
}

func (t *storeTx) CreateOrder(ctx context.Context, userID uint64, status booking.Status, paymentHandle string) (uint64, error) {
	return t.store.Orders.CreateTx(ctx, t.tx, userID, string(status), paymentHandle)
}

func (t *storeTx) CreateTicket(ctx context.Context, seatID uint64, finalPrice decimal.Decimal) (uint64, error) {
	return t.store.Tickets.CreateTx(ctx, t.tx, seatID, finalPrice)
}

func (t *storeTx) CreateBooking(ctx context.Context, ticketID, orderID, scheduleID uint64) error {
	return t.store.Bookings.CreateTx(ctx, t.tx, ticketID, orderID, scheduleID)
}

func (t *storeTx) LockOrder(ctx context.Context, orderID uint64) (*booking.Order, error) {
	rec, err := t.store.Orders.LockByIDTx(ctx, t.tx, orderID)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return &booking.Order{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Status:        booking.Status(rec.Status),
		PaymentHandle: rec.PaymentHandle,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

func (t *storeTx) UpdateOrderStatus(ctx context.Context, orderID uint64, status booking.Status) error {
	return t.store.Orders.UpdateStatusTx(ctx, t.tx, orderID, string(status))
}

func (t *storeTx) TicketsByOrder(ctx context.Context, orderID uint64) ([]booking.TicketRef, error) {
	recs, err := t.store.Tickets.ByOrderTx(ctx, t.tx, orderID)
	if err != nil {
		return nil, err
	}
	refs := make([]booking.TicketRef, 0, len(recs))
	for _, rec := range recs {
		refs = append(refs, booking.TicketRef{
			TicketID:   rec.ID,
			SeatID:     rec.SeatID,
			FinalPrice: rec.FinalPrice,
		})
	}
	return refs, nil
}

func (t *storeTx) CreateSale(ctx context.Context, orderID, ticketID uint64, totalPrice decimal.Decimal, method string) error {
	return t.store.Sales.CreateTx(ctx, t.tx, orderID, ticketID, totalPrice, method)
}

func (t *storeTx) DeleteBookingsByOrder(ctx context.Context, orderID uint64) ([]uint64, error) {
	return t.store.Bookings.DeleteByOrderTx(ctx, t.tx, orderID)
}

func (t *storeTx) DeleteTickets(ctx context.Context, ticketIDs []uint64) error {
	return t.store.Tickets.DeleteTx(ctx, t.tx, ticketIDs)
}

func (t *storeTx) CreateSeatBlock(ctx context.Context, b *booking.SeatBlock) error {
	rec := &SeatReservationRecord{
		SeatID:          b.SeatID,
		ScheduleID:      b.ScheduleID,
		ReservationType: b.Kind,
		Notes:           b.Note,
		UserID:          b.CreatedBy,
	}
	if err := t.store.Reservations.CreateTx(ctx, t.tx, rec); err != nil {
		return err
	}
	b.ID = rec.ID
	return nil
}

func (t *storeTx) DeleteSeatBlock(ctx context.Context, id uint64) error {
	return notFoundErr(t.store.Reservations.DeleteTx(ctx, t.tx, id))
}

func (t *storeTx) DeleteSeatBlockBySeat(ctx context.Context, seatID, scheduleID uint64) (bool, error) {
	return t.store.Reservations.DeleteBySeatScheduleTx(ctx, t.tx, seatID, scheduleID)
}

func (t *storeTx) StaleAwaitingOrders(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	return t.store.Orders.StaleAwaitingTx(ctx, t.tx, cutoff, limit)
}
