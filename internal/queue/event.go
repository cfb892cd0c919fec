// Package queue contains the settlement event consumer that listens to
// the order.settled queue and appends an audit line per settlement to
// logs/settlement.log.
package queue

// SettledQueueName is the durable queue settlement events travel on.
// The publisher and the consumer both declare it, so whichever side
// starts first creates it.
const SettledQueueName = "order.settled"

// OrderSettledEvent is the wire form of a settlement. It carries enough
// for downstream logging, notification and analytics consumers to act
// without querying the primary database.
type OrderSettledEvent struct {
	OrderID    uint64 `json:"order_id"`
	UserID     uint64 `json:"user_id"`
	Status     string `json:"status"`
	Method     string `json:"method"`
	TotalPrice string `json:"total_price"`
	SettledAt  string `json:"settled_at"`
}
