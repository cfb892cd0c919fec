package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderRepo provides persistence for orders. Status changes go through
// the engine's state machine; this layer only executes the statements.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderRecord mirrors the orders table.
type OrderRecord struct {
	ID            uint64
	UserID        uint64
	Status        string
	PaymentHandle string
	CreatedAt     time.Time
}

// CreateTx inserts a new order within the given transaction and returns
// its generated id.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, status, paymentHandle string) (uint64, error) {
	const q = `INSERT INTO orders (user_id, status, payment_handle) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, userID, status, paymentHandle)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// LockByIDTx fetches the order row under a row-level write lock. Two
// concurrent settlement attempts for the same order serialize on this
// statement. Returns sql.ErrNoRows when the order does not exist.
func (r *OrderRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*OrderRecord, error) {
	const q = `SELECT id, user_id, status, payment_handle, created_at FROM orders WHERE id = ? FOR UPDATE`
	var rec OrderRecord
	err := tx.QueryRowContext(ctx, q, orderID).Scan(&rec.ID, &rec.UserID, &rec.Status, &rec.PaymentHandle, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateStatusTx sets the order's status within the given transaction.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return err
}

// StaleAwaitingTx lists orders still awaiting payment created before the
// cutoff, oldest first. Used by the reconciliation job.
func (r *OrderRepo) StaleAwaitingTx(ctx context.Context, tx *sql.Tx, cutoff time.Time, limit int) ([]uint64, error) {
	const q = `SELECT id FROM orders
	           WHERE status = 'awaiting_payment' AND created_at < ?
	           ORDER BY created_at
	           LIMIT ?`
	rows, err := tx.QueryContext(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OrderLineItem is one priced seat of an order as shown to callers.
type OrderLineItem struct {
	SeatID     uint64          `json:"seat_id"`
	SeatNumber string          `json:"seat_number"`
	TicketID   uint64          `json:"ticket_id"`
	Price      decimal.Decimal `json:"price"`
}

// OrderDetail is an order with its line items, used by the read-side
// endpoints. For settled-and-released orders the item list is empty;
// the order row itself is kept for audit.
type OrderDetail struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderLineItem `json:"line_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	// Sales holds the receipt rows of a paid order. Filled by the
	// handler on single-order reads; nil elsewhere.
	Sales []SaleRecord `json:"sales,omitempty"`
}

// GetDetailForUser loads one order with its line items, enforcing that
// it belongs to userID. Returns sql.ErrNoRows when no such order exists
// for the user.
func (r *OrderRepo) GetDetailForUser(ctx context.Context, orderID, userID uint64) (*OrderDetail, error) {
	const q = `SELECT id, user_id, status, created_at FROM orders WHERE id = ? AND user_id = ?`
	var det OrderDetail
	if err := r.db.QueryRowContext(ctx, q, orderID, userID).Scan(&det.ID, &det.UserID, &det.Status, &det.CreatedAt); err != nil {
		return nil, err
	}
	if err := r.fillItems(ctx, &det); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByUser returns all orders of a user, newest first, each with its
// line items.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]OrderDetail, error) {
	const q = `SELECT id, user_id, status, created_at FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]OrderDetail, 0)
	for rows.Next() {
		var det OrderDetail
		if err := rows.Scan(&det.ID, &det.UserID, &det.Status, &det.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range details {
		if err := r.fillItems(ctx, &details[i]); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func (r *OrderRepo) fillItems(ctx context.Context, det *OrderDetail) error {
	const q = `SELECT t.seat_id, s.seat_number, t.id, t.final_price
	           FROM bookings b
	           JOIN tickets t ON t.id = b.ticket_id
	           JOIN seats s ON s.id = t.seat_id
	           WHERE b.order_id = ?
	           ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, det.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	det.Items = make([]OrderLineItem, 0)
	det.TotalAmount = decimal.Zero
	for rows.Next() {
		var it OrderLineItem
		if err := rows.Scan(&it.SeatID, &it.SeatNumber, &it.TicketID, &it.Price); err != nil {
			return err
		}
		det.Items = append(det.Items, it)
		det.TotalAmount = det.TotalAmount.Add(it.Price)
	}
	return rows.Err()
}
