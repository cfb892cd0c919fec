package booking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// EventPublisher receives settlement events after a terminal transition
// commits. Publish failures never un-commit the transition; the store is
// authoritative and consumers reconcile from it.
type EventPublisher interface {
	PublishOrderSettled(ctx context.Context, ev OrderSettledEvent) error
}

// OrderSettledEvent is emitted once per terminal transition.
type OrderSettledEvent struct {
	OrderID    uint64 `json:"order_id"`
	UserID     uint64 `json:"user_id"`
	Status     Status `json:"status"`
	Method     string `json:"method"`
	TotalPrice string `json:"total_price"`
	SettledAt  string `json:"settled_at"`
}

// Engine exposes the reservation and settlement operations. It is safe
// for concurrent use: all exclusion is delegated to the store's row
// locks, so multiple service instances may run one Engine each.
type Engine struct {
	store  Store
	events EventPublisher
	now    func() time.Time

	// newHandle yields the opaque payment handle for a new order.
	newHandle func() string
}

// NewEngine builds an Engine over the given store. events may be nil,
// in which case settlement events are dropped.
func NewEngine(store Store, events EventPublisher) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{
		store:     store,
		events:    events,
		now:       time.Now,
		newHandle: func() string { return uuid.NewString() },
	}
}

func (e *Engine) publishSettled(ctx context.Context, ev OrderSettledEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishOrderSettled(ctx, ev); err != nil {
		log.Printf("booking: publish order.settled for order %d failed: %v", ev.OrderID, err)
	}
}
