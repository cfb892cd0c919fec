package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/teatralka/box-office/internal/booking"
)

type seatBlocker interface {
	BlockSeat(ctx context.Context, seatID, scheduleID, adminID uint64, kind, note string) (*booking.SeatBlock, error)
	UnblockSeat(ctx context.Context, blockID uint64) error
	UnblockSeatPair(ctx context.Context, seatID, scheduleID uint64) error
}

// BlockHandler serves the administrative seat-block endpoints. A block
// makes a (seat, schedule) pair unavailable without attaching it to any
// order, for broken seats, press holds and similar.
type BlockHandler struct {
	Engine seatBlocker
}

func NewBlockHandler(engine seatBlocker) *BlockHandler {
	if engine == nil {
		panic("nil engine passed to NewBlockHandler")
	}
	return &BlockHandler{Engine: engine}
}

// Create handles POST /v1/admin/seat-blocks. The seat must be free for
// the schedule; blocking a seat someone already holds is a 409 like any
// other seat conflict.
func (h *BlockHandler) Create(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SeatID     uint64 `json:"seat_id"`
		ScheduleID uint64 `json:"schedule_id"`
		Kind       string `json:"kind"`
		Note       string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatID == 0 || body.ScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id and schedule_id are required"})
	}
	blk, err := h.Engine.BlockSeat(c.Request().Context(), body.SeatID, body.ScheduleID, adminID, body.Kind, body.Note)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, blk)
}

// Delete handles DELETE /v1/admin/seat-blocks/:id and removes one block
// by its id. A missing block is a 404.
func (h *BlockHandler) Delete(c echo.Context) error {
	blockID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid block id"})
	}
	if err := h.Engine.UnblockSeat(c.Request().Context(), blockID); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePair handles DELETE /v1/admin/seat-blocks?seat_id=&schedule_id=.
// Removal by pair is idempotent: unblocking a seat that carries no block
// succeeds, so cleanup scripts can run without checking first.
func (h *BlockHandler) DeletePair(c echo.Context) error {
	seatID, err1 := strconv.ParseUint(c.QueryParam("seat_id"), 10, 64)
	scheduleID, err2 := strconv.ParseUint(c.QueryParam("schedule_id"), 10, 64)
	if err1 != nil || err2 != nil || seatID == 0 || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id and schedule_id query parameters are required"})
	}
	if err := h.Engine.UnblockSeatPair(c.Request().Context(), seatID, scheduleID); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
