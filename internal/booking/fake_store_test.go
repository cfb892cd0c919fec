package booking

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store for engine tests. One mutex is held
// for the whole of each transaction, which is the coarsest behavior the
// Store contract permits: everything a row lock would serialize, the
// mutex serializes. State is snapshotted at transaction start and
// restored when fn fails, so rollback semantics hold too.
type memStore struct {
	mu     sync.Mutex
	nextID uint64

	schedules map[uint64]uint64 // schedule id -> hall id
	seats     map[uint64]uint64 // seat id -> hall id
	pricing   map[uint64]SeatPricing
	orders    map[uint64]Order
	tickets   map[uint64]memTicket  // ticket id -> seat, price
	bookings  map[uint64]memBooking // ticket id -> order, schedule
	sales     []memSale
	blocks    map[uint64]SeatBlock

	// error injection, checked by the corresponding Tx method
	createBookingErr error
	createSaleErr    error
	lockOrderErr     error
}

type memTicket struct {
	seatID uint64
	price  decimal.Decimal
}

type memBooking struct {
	ticketID   uint64
	orderID    uint64
	scheduleID uint64
}

type memSale struct {
	orderID  uint64
	ticketID uint64
	total    decimal.Decimal
	method   string
}

func newMemStore() *memStore {
	return &memStore{
		schedules: make(map[uint64]uint64),
		seats:     make(map[uint64]uint64),
		pricing:   make(map[uint64]SeatPricing),
		orders:    make(map[uint64]Order),
		tickets:   make(map[uint64]memTicket),
		bookings:  make(map[uint64]memBooking),
		blocks:    make(map[uint64]SeatBlock),
	}
}

// addSeat registers a seat in a hall with its pricing factors.
func (s *memStore) addSeat(seatID, hallID uint64, base, zone, row string) {
	s.seats[seatID] = hallID
	s.pricing[seatID] = SeatPricing{
		SeatID:    seatID,
		BasePrice: decimal.RequireFromString(base),
		ZoneMult:  decimal.RequireFromString(zone),
		RowMult:   decimal.RequireFromString(row),
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.pricing {
		c.pricing[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.blocks {
		c.blocks[k] = v
	}
	c.sales = append(c.sales, s.sales...)
	return c
}

func (s *memStore) restore(c *memStore) {
	s.nextID = c.nextID
	s.schedules = c.schedules
	s.seats = c.seats
	s.pricing = c.pricing
	s.orders = c.orders
	s.tickets = c.tickets
	s.bookings = c.bookings
	s.blocks = c.blocks
	s.sales = c.sales
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) SnapshotUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unavailable(scheduleID, seatIDs), nil
}

func (s *memStore) unavailable(scheduleID uint64, seatIDs []uint64) []uint64 {
	want := make(map[uint64]bool, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = true
	}
	taken := make(map[uint64]bool)
	for _, b := range s.bookings {
		if b.scheduleID == scheduleID {
			if t, ok := s.tickets[b.ticketID]; ok && want[t.seatID] {
				taken[t.seatID] = true
			}
		}
	}
	for _, blk := range s.blocks {
		if blk.ScheduleID == scheduleID && want[blk.SeatID] {
			taken[blk.SeatID] = true
		}
	}
	out := make([]uint64, 0, len(taken))
	for _, id := range seatIDs {
		if taken[id] {
			out = append(out, id)
		}
	}
	return out
}

// memTx performs Tx operations directly on the store; the transaction
// mutex is already held by WithinTx.
type memTx struct {
	s *memStore
}

func (t *memTx) ScheduleHall(ctx context.Context, scheduleID uint64) (uint64, error) {
	hallID, ok := t.s.schedules[scheduleID]
	if !ok {
		return 0, ErrNotFound
	}
	return hallID, nil
}

func (t *memTx) SeatHalls(ctx context.Context, seatIDs []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(seatIDs))
	for _, id := range seatIDs {
		if hallID, ok := t.s.seats[id]; ok {
			out[id] = hallID
		}
	}
	return out, nil
}

func (t *memTx) LockUnavailable(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	return t.s.unavailable(scheduleID, seatIDs), nil
}

func (t *memTx) SeatPricing(ctx context.Context, seatID uint64) (*SeatPricing, error) {
	p, ok := t.s.pricing[seatID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (t *memTx) CreateOrder(ctx context.Context, userID uint64, status Status, paymentHandle string) (uint64, error) {
	id := t.s.id()
	t.s.orders[id] = Order{ID: id, UserID: userID, Status: status, PaymentHandle: paymentHandle, CreatedAt: time.Now()}
	return id, nil
}

func (t *memTx) CreateTicket(ctx context.Context, seatID uint64, finalPrice decimal.Decimal) (uint64, error) {
	id := t.s.id()
	t.s.tickets[id] = memTicket{seatID: seatID, price: finalPrice}
	return id, nil
}

func (t *memTx) CreateBooking(ctx context.Context, ticketID, orderID, scheduleID uint64) error {
	if t.s.createBookingErr != nil {
		return t.s.createBookingErr
	}
	t.s.bookings[ticketID] = memBooking{ticketID: ticketID, orderID: orderID, scheduleID: scheduleID}
	return nil
}

func (t *memTx) LockOrder(ctx context.Context, orderID uint64) (*Order, error) {
	if t.s.lockOrderErr != nil {
		return nil, t.s.lockOrderErr
	}
	ord, ok := t.s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ord, nil
}

func (t *memTx) UpdateOrderStatus(ctx context.Context, orderID uint64, status Status) error {
	ord, ok := t.s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	ord.Status = status
	t.s.orders[orderID] = ord
	return nil
}

func (t *memTx) TicketsByOrder(ctx context.Context, orderID uint64) ([]TicketRef, error) {
	var out []TicketRef
	for _, b := range t.s.bookings {
		if b.orderID == orderID {
			tk := t.s.tickets[b.ticketID]
			out = append(out, TicketRef{TicketID: b.ticketID, SeatID: tk.seatID, FinalPrice: tk.price})
		}
	}
	return out, nil
}

func (t *memTx) CreateSale(ctx context.Context, orderID, ticketID uint64, totalPrice decimal.Decimal, method string) error {
	if t.s.createSaleErr != nil {
		return t.s.createSaleErr
	}
	t.s.sales = append(t.s.sales, memSale{orderID: orderID, ticketID: ticketID, total: totalPrice, method: method})
	return nil
}

func (t *memTx) DeleteBookingsByOrder(ctx context.Context, orderID uint64) ([]uint64, error) {
	var ids []uint64
	for ticketID, b := range t.s.bookings {
		if b.orderID == orderID {
			ids = append(ids, ticketID)
			delete(t.s.bookings, ticketID)
		}
	}
	return ids, nil
}

func (t *memTx) DeleteTickets(ctx context.Context, ticketIDs []uint64) error {
	for _, id := range ticketIDs {
		delete(t.s.tickets, id)
	}
	return nil
}

func (t *memTx) CreateSeatBlock(ctx context.Context, b *SeatBlock) error {
	b.ID = t.s.id()
	t.s.blocks[b.ID] = *b
	return nil
}

func (t *memTx) DeleteSeatBlock(ctx context.Context, id uint64) error {
	if _, ok := t.s.blocks[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.blocks, id)
	return nil
}

func (t *memTx) DeleteSeatBlockBySeat(ctx context.Context, seatID, scheduleID uint64) (bool, error) {
	for id, b := range t.s.blocks {
		if b.SeatID == seatID && b.ScheduleID == scheduleID {
			delete(t.s.blocks, id)
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) StaleAwaitingOrders(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	var out []uint64
	for id, ord := range t.s.orders {
		if ord.Status == StatusAwaitingPayment && ord.CreatedAt.Before(cutoff) {
			out = append(out, id)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// capturePublisher records settlement events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []OrderSettledEvent
	err    error
}

func (p *capturePublisher) PublishOrderSettled(ctx context.Context, ev OrderSettledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}
