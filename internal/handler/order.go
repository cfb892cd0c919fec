package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teatralka/box-office/internal/booking"
	"github.com/teatralka/box-office/internal/repository"
)

// orderInitiator is the slice of the engine the order handler needs.
type orderInitiator interface {
	Initiate(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error)
}

// orderReader is the read side of the order endpoints, implemented by
// repository.OrderRepo.
type orderReader interface {
	GetDetailForUser(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.OrderDetail, error)
}

// saleReader surfaces the receipt rows of settled orders, implemented by
// repository.SaleRepo.
type saleReader interface {
	ListByOrder(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error)
}

// OrderHandler serves order initiation and the customer-facing order
// read endpoints. Writes go through the engine; reads go straight to the
// repository because they take no locks and carry no business rules.
type OrderHandler struct {
	Engine orderInitiator
	Orders orderReader
	Sales  saleReader
}

func NewOrderHandler(engine orderInitiator, orders orderReader, sales saleReader) *OrderHandler {
	if engine == nil || orders == nil || sales == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Engine: engine, Orders: orders, Sales: sales}
}

// Create handles POST /v1/orders. The body names a schedule instance and
// the seats to book; on success the response carries the new order, its
// priced line items and the payment handle the external payment
// collaborator resolves against. Seat conflicts come back as 409 with
// the unavailable seat ids.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ScheduleID uint64   `json:"schedule_id"`
		SeatIDs    []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Engine.Initiate(c.Request().Context(), userID, body.ScheduleID, body.SeatIDs)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/orders and returns the caller's orders, newest
// first, each with its line items.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get handles GET /v1/orders/:id. Ownership is part of the lookup, so an
// order belonging to someone else is indistinguishable from a missing
// one. Paid orders carry their sale receipts.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	det, err := h.Orders.GetDetailForUser(c.Request().Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if det.Status == string(booking.StatusPaid) {
		sales, err := h.Sales.ListByOrder(c.Request().Context(), orderID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		det.Sales = sales
	}
	return c.JSON(http.StatusOK, det)
}
