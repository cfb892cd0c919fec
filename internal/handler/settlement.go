package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teatralka/box-office/internal/booking"
)

type settler interface {
	Notify(ctx context.Context, orderID uint64, outcome booking.Outcome, source string) booking.Ack
	SetStatus(ctx context.Context, orderID uint64, status booking.Status, actor string) (*booking.Order, error)
}

// SettlementHandler exposes the three surfaces that resolve an order's
// payment: the gateway webhook, the authenticated simulator, and the
// admin status override. The first two funnel into the engine's
// idempotent Notify; the override uses SetStatus and does surface
// errors, since admins are not retry loops.
type SettlementHandler struct {
	Engine settler
}

func NewSettlementHandler(engine settler) *SettlementHandler {
	if engine == nil {
		panic("nil engine passed to NewSettlementHandler")
	}
	return &SettlementHandler{Engine: engine}
}

type settlementBody struct {
	OrderID uint64 `json:"order_id"`
	Outcome string `json:"outcome"`
}

// Webhook handles POST /v1/payments/webhook/:gateway. Gateways retry on
// anything that is not a 2xx, so the only non-200 answers are for
// requests that will never parse differently on a retry. Everything
// else, including an unknown order or an internal fault, is acknowledged
// with 200 and a result field describing what happened.
func (h *SettlementHandler) Webhook(c echo.Context) error {
	gateway := c.Param("gateway")
	var body settlementBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}
	source := "webhook:" + gateway
	ack := h.Engine.Notify(c.Request().Context(), body.OrderID, booking.Outcome(body.Outcome), source)
	return c.JSON(http.StatusOK, ack)
}

// Simulate handles POST /v1/payments/simulate. It lets an authenticated
// user settle their own flow in non-production environments without a
// real gateway, going through the exact same notification path.
func (h *SettlementHandler) Simulate(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body settlementBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}
	source := fmt.Sprintf("simulator:user:%d", userID)
	ack := h.Engine.Notify(c.Request().Context(), body.OrderID, booking.Outcome(body.Outcome), source)
	return c.JSON(http.StatusOK, ack)
}

// AdminSetStatus handles PUT /v1/admin/orders/:id/status. Unlike the
// webhook this is a direct command from a human, so contradictions and
// bad targets come back as real error codes: 409 for an order already
// settled differently, 400 for a status outside the admin's reach.
func (h *SettlementHandler) AdminSetStatus(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	actor := fmt.Sprintf("admin:%d", adminID)
	ord, err := h.Engine.SetStatus(c.Request().Context(), orderID, booking.Status(body.Status), actor)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, ord)
}
