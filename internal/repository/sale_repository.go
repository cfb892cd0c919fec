package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// SaleRepo persists sales: immutable receipt rows created only when an
// order transitions to paid, one per ticket. Sales are never deleted in
// normal flow, so there is no delete method.
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo returns a SaleRepo bound to the given database.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// SaleRecord mirrors the sales table.
type SaleRecord struct {
	ID            uint64          `json:"id"`
	OrderID       uint64          `json:"order_id"`
	TicketID      uint64          `json:"ticket_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	SaleDate      time.Time       `json:"sale_date"`
}

// CreateTx inserts one sale within the given transaction.
func (r *SaleRepo) CreateTx(ctx context.Context, tx *sql.Tx, orderID, ticketID uint64, totalPrice decimal.Decimal, method string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sales (order_id, ticket_id, total_price, payment_method) VALUES (?, ?, ?, ?)`,
		orderID, ticketID, totalPrice.StringFixed(2), method)
	return err
}

// ListByOrder returns the sales recorded for an order, if any.
func (r *SaleRepo) ListByOrder(ctx context.Context, orderID uint64) ([]SaleRecord, error) {
	const q = `SELECT id, order_id, ticket_id, total_price, payment_method, sale_date
	           FROM sales WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sales := make([]SaleRecord, 0)
	for rows.Next() {
		var s SaleRecord
		if err := rows.Scan(&s.ID, &s.OrderID, &s.TicketID, &s.TotalPrice, &s.PaymentMethod, &s.SaleDate); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
