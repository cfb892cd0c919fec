package booking

import (
	"context"
	"errors"
	"log"
	"time"
)

// Ack is the answer every settlement notification gets. It is always a
// success from the caller's point of view; Result says what actually
// happened so operators and tests can tell the cases apart.
type Ack struct {
	OrderID uint64 `json:"order_id"`
	Result  string `json:"result"`
	Status  Status `json:"status,omitempty"`
}

// Ack results.
const (
	AckApplied        = "applied"         // transition performed
	AckAlreadySettled = "already_settled" // order already terminal, no-op
	AckUnknownOrder   = "unknown_order"   // order does not exist here
	AckDeferred       = "deferred"        // internal fault, left for a later pass
)

// outcomeStatus maps the external settlement vocabulary onto target
// states of the state machine.
func outcomeStatus(outcome Outcome) (Status, bool) {
	switch outcome {
	case OutcomeSucceeded:
		return StatusPaid, true
	case OutcomeFailed:
		return StatusPaymentFailed, true
	}
	return "", false
}

// Notify idempotently applies a payment outcome to an order. The gateway
// webhook and the payment simulator both funnel into this one
// entrypoint. It deliberately never returns an error: a payment
// gateway cannot be trusted to stop retrying on a hard failure, so every
// fault is logged, the order is left non-terminal for a corrective pass,
// and the caller gets a neutral acknowledgement.
//
// Concurrent notifications for the same order serialize on the order row
// lock; the second to acquire it observes the first's terminal state and
// becomes a no-op.
func (e *Engine) Notify(ctx context.Context, orderID uint64, outcome Outcome, source string) Ack {
	target, ok := outcomeStatus(outcome)
	if !ok {
		log.Printf("settlement: order %d: unknown outcome %q from %s, ignored", orderID, outcome, source)
		return Ack{OrderID: orderID, Result: AckDeferred}
	}

	var ack Ack
	var ev *OrderSettledEvent
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		ord, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// A misdirected or late retry; acknowledge so the
				// gateway stops resending.
				log.Printf("settlement: order %d not found, notification from %s acknowledged", orderID, source)
				ack = Ack{OrderID: orderID, Result: AckUnknownOrder}
				return nil
			}
			return internal("lock order", err)
		}
		if ord.Status.Terminal() {
			if ord.Status != target {
				log.Printf("settlement: order %d already %s, contradictory %s from %s ignored", orderID, ord.Status, outcome, source)
			}
			ack = Ack{OrderID: orderID, Result: AckAlreadySettled, Status: ord.Status}
			return nil
		}
		total, err := e.transition(ctx, tx, ord, target, source)
		if err != nil {
			return err
		}
		ack = Ack{OrderID: orderID, Result: AckApplied, Status: target}
		ev = &OrderSettledEvent{
			OrderID:    ord.ID,
			UserID:     ord.UserID,
			Status:     target,
			Method:     source,
			TotalPrice: total.StringFixed(2),
			SettledAt:  e.now().UTC().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		// Transaction rolled back; the order is still awaiting payment
		// and a reconciliation pass or gateway retry will land later.
		log.Printf("settlement: order %d: %s notification from %s failed, deferred: %v", orderID, outcome, source, err)
		return Ack{OrderID: orderID, Result: AckDeferred}
	}
	if ev != nil {
		e.publishSettled(ctx, *ev)
	}
	return ack
}

// SetStatus is the administrative override. Unlike Notify it surfaces
// the error taxonomy: operators see real failures instead of neutral
// acknowledgements. It drives the exact same state machine, so the
// webhook path and the admin path cannot drift apart.
func (e *Engine) SetStatus(ctx context.Context, orderID uint64, status Status, actor string) (*Order, error) {
	if orderID == 0 {
		return nil, invalidArgumentf("order id is required")
	}
	if !status.valid() {
		return nil, invalidArgumentf("unknown status %q", status)
	}
	if status == StatusAwaitingPayment {
		return nil, invalidArgumentf("cannot reset an order to %s", StatusAwaitingPayment)
	}

	var out *Order
	var ev *OrderSettledEvent
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		ord, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundf("order %d not found", orderID)
			}
			return internal("lock order", err)
		}
		if ord.Status == status {
			// Re-applying the state the order is already in is an
			// idempotent no-op, not an error.
			out = ord
			return nil
		}
		if ord.Status.Terminal() {
			return conflictf("order %d is already %s", orderID, ord.Status)
		}
		if !canTransition(ord.Status, status) {
			return conflictf("no transition %s -> %s", ord.Status, status)
		}
		total, err := e.transition(ctx, tx, ord, status, actor)
		if err != nil {
			return err
		}
		ord.Status = status
		out = ord
		ev = &OrderSettledEvent{
			OrderID:    ord.ID,
			UserID:     ord.UserID,
			Status:     status,
			Method:     actor,
			TotalPrice: total.StringFixed(2),
			SettledAt:  e.now().UTC().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		e.publishSettled(ctx, *ev)
	}
	return out, nil
}

// ReconcileStale cancels orders stuck in awaiting_payment since before
// maxAge ago, releasing their seats through the normal state machine.
// It returns the ids of the orders it cancelled. Each order is handled
// in its own transaction so one failure does not poison the batch.
func (e *Engine) ReconcileStale(ctx context.Context, maxAge time.Duration, limit int) ([]uint64, error) {
	cutoff := e.now().UTC().Add(-maxAge)
	var stale []uint64
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		stale, err = tx.StaleAwaitingOrders(ctx, cutoff, limit)
		return err
	})
	if err != nil {
		return nil, internal("list stale orders", err)
	}
	cancelled := make([]uint64, 0, len(stale))
	for _, id := range stale {
		if _, err := e.SetStatus(ctx, id, StatusCancelled, "reconciler"); err != nil {
			// Conflict means a settlement raced us and won; that is the
			// desired end state, not a problem.
			if KindOf(err) == KindConflict {
				continue
			}
			log.Printf("reconcile: cancel order %d: %v", id, err)
			continue
		}
		cancelled = append(cancelled, id)
	}
	return cancelled, nil
}
