package booking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the order lifecycle. awaiting_payment is the only
// non-terminal state; the remaining three are terminal and reached
// exactly once through the state machine.
type Status string

const (
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusPaymentFailed   Status = "payment_failed"
	StatusCancelled       Status = "cancelled"
)

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusPaymentFailed || s == StatusCancelled
}

// valid reports whether s is a member of the closed status enumeration.
func (s Status) valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusPaid, StatusPaymentFailed, StatusCancelled:
		return true
	}
	return false
}

// Outcome is the minimal settlement vocabulary external triggers speak.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Order is the engine's view of an orders row.
type Order struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	Status        Status    `json:"status"`
	PaymentHandle string    `json:"payment_handle,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SeatPricing carries the factors needed to price one seat.
// Implementations return 1.0 for the zone or row multiplier when the
// seat has no zone or row assigned, so a 0.00 here is a stored value,
// not an absence.
type SeatPricing struct {
	SeatID    uint64
	BasePrice decimal.Decimal
	ZoneMult  decimal.Decimal
	RowMult   decimal.Decimal
}

// TicketRef identifies a priced ticket under an order.
type TicketRef struct {
	TicketID   uint64
	SeatID     uint64
	FinalPrice decimal.Decimal
}

// SeatBlock is an administrative hold on a (seat, schedule) pair that is
// not tied to any order.
type SeatBlock struct {
	ID         uint64 `json:"id"`
	SeatID     uint64 `json:"seat_id"`
	ScheduleID uint64 `json:"schedule_id"`
	Kind       string `json:"kind"`
	Note       string `json:"note,omitempty"`
	CreatedBy  uint64 `json:"created_by"`
}

// ErrNotFound is the store-level sentinel for a missing row. The engine
// translates it into the taxonomy; store implementations return it
// instead of driver-specific errors.
var ErrNotFound = errors.New("not found")

// Store is the relational store the engine drives. Implementations must
// provide read-committed-or-stronger transactions whose row locks block
// concurrent writers until commit or rollback (InnoDB semantics in the
// MySQL implementation).
type Store interface {
	// WithinTx runs fn inside one transaction. A non-nil error from fn
	// rolls the transaction back; otherwise it is committed. Locks taken
	// by fn are held until that point.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// SnapshotUnavailable returns the subset of seatIDs currently held by
	// a booking or an administrative block for the schedule, without
	// taking locks. Best-effort: a subsequent Initiate is authoritative.
	SnapshotUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error)
}

// Tx is the set of operations available inside a Store transaction. All
// reads observe the transaction's snapshot plus its own writes.
type Tx interface {
	// ScheduleHall resolves a schedule instance to the hall it is staged
	// in. Returns ErrNotFound when the schedule does not exist.
	ScheduleHall(ctx context.Context, scheduleID uint64) (hallID uint64, err error)

	// SeatHalls maps each existing seat id to its hall. Seats absent from
	// the result do not exist.
	SeatHalls(ctx context.Context, seatIDs []uint64) (map[uint64]uint64, error)

	// LockUnavailable acquires row-level write locks on the given seat
	// rows, then returns the subset held by a booking or administrative
	// block for the schedule. The locks are held until the transaction
	// ends; a concurrent call for an overlapping set blocks here.
	LockUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error)

	// SeatPricing loads the pricing factors for one seat, with absent
	// zone or row multipliers normalized to 1.0. Returns ErrNotFound
	// when the seat does not exist.
	SeatPricing(ctx context.Context, seatID uint64) (*SeatPricing, error)

	// CreateOrder inserts an orders row and returns its id.
	CreateOrder(ctx context.Context, userID uint64, status Status, paymentHandle string) (uint64, error)

	// CreateTicket inserts an immutable priced ticket for a seat.
	CreateTicket(ctx context.Context, seatID uint64, finalPrice decimal.Decimal) (uint64, error)

	// CreateBooking links a ticket to an order and a schedule instance.
	CreateBooking(ctx context.Context, ticketID, orderID, scheduleID uint64) error

	// LockOrder fetches the order row under a row-level write lock so
	// concurrent settlement attempts for the same order serialize here.
	// Returns ErrNotFound when the order does not exist.
	LockOrder(ctx context.Context, orderID uint64) (*Order, error)

	// UpdateOrderStatus sets the order's status column.
	UpdateOrderStatus(ctx context.Context, orderID uint64, status Status) error

	// TicketsByOrder returns the tickets under the order's bookings.
	TicketsByOrder(ctx context.Context, orderID uint64) ([]TicketRef, error)

	// CreateSale inserts one immutable receipt row for a ticket.
	CreateSale(ctx context.Context, orderID, ticketID uint64, totalPrice decimal.Decimal, method string) error

	// DeleteBookingsByOrder removes all bookings for the order and
	// returns the ids of the tickets they referenced.
	DeleteBookingsByOrder(ctx context.Context, orderID uint64) (ticketIDs []uint64, err error)

	// DeleteTickets removes the given (now orphaned) tickets.
	DeleteTickets(ctx context.Context, ticketIDs []uint64) error

	// CreateSeatBlock inserts an administrative (seat, schedule) hold.
	CreateSeatBlock(ctx context.Context, b *SeatBlock) error

	// DeleteSeatBlock removes an administrative hold by id. Returns
	// ErrNotFound when no such hold exists.
	DeleteSeatBlock(ctx context.Context, id uint64) error

	// DeleteSeatBlockBySeat removes the hold for a (seat, schedule) pair
	// and reports whether one existed.
	DeleteSeatBlockBySeat(ctx context.Context, seatID, scheduleID uint64) (bool, error)

	// StaleAwaitingOrders lists orders still awaiting payment that were
	// created before the cutoff, oldest first, up to limit.
	StaleAwaitingOrders(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error)
}
