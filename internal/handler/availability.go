package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/teatralka/box-office/internal/repository"
)

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error)
}

// scheduleReader resolves schedule instances for display, implemented by
// repository.ScheduleRepo.
type scheduleReader interface {
	GetByID(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error)
}

// AvailabilityHandler serves the lock-free seat availability snapshot
// used by seat-map rendering. The snapshot is advisory: order initiation
// re-checks every seat under row locks.
type AvailabilityHandler struct {
	Engine    availabilityChecker
	Schedules scheduleReader
}

func NewAvailabilityHandler(engine availabilityChecker, schedules scheduleReader) *AvailabilityHandler {
	if engine == nil || schedules == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Engine: engine, Schedules: schedules}
}

// Snapshot handles GET /v1/schedule/:id/availability?seat_ids=1,2,3 and
// returns which of the requested seats are currently taken for the
// schedule instance, along with the performance being staged. Unknown
// schedules are a 404 here, before any seat query runs.
func (h *AvailabilityHandler) Snapshot(c echo.Context) error {
	scheduleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	seatIDs, err := parseSeatIDs(c.QueryParam("seat_ids"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	sched, err := h.Schedules.GetByID(c.Request().Context(), scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	unavailable, err := h.Engine.CheckAvailability(c.Request().Context(), scheduleID, seatIDs)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id":          sched.ID,
		"performance_title":    sched.PerformanceTitle,
		"hall_id":              sched.HallID,
		"starts_at":            sched.StartsAt,
		"unavailable_seat_ids": unavailable,
	})
}

// parseSeatIDs parses the comma-separated seat_ids query parameter.
// Validation of positivity and duplicates belongs to the engine; this
// only rejects values that are not numbers at all.
func parseSeatIDs(raw string) ([]uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errSeatIDsRequired
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errSeatIDsMalformed
		}
		ids = append(ids, n)
	}
	return ids, nil
}

var (
	errSeatIDsRequired  = errors.New("seat_ids query parameter is required")
	errSeatIDsMalformed = errors.New("seat_ids must be comma-separated numbers")
)
