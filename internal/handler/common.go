// Package handler contains the HTTP transport layer. Handlers parse and
// validate requests, delegate to the booking engine or the read-side
// repositories, and translate the engine's error taxonomy into status
// codes. They hold no business rules of their own.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/teatralka/box-office/internal/booking"
)

// getUserID extracts the authenticated user id placed into the context
// by the JWT middleware. Tokens minted by different issuers store the
// subject in different numeric shapes, hence the type switch.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// engineError maps a booking taxonomy error onto an HTTP response. Seat
// conflicts carry the offending seat ids so clients can re-render the
// seat map instead of guessing.
func engineError(c echo.Context, err error) error {
	var status int
	switch booking.KindOf(err) {
	case booking.KindInvalidArgument:
		status = http.StatusBadRequest
	case booking.KindNotFound:
		status = http.StatusNotFound
	case booking.KindConflict:
		status = http.StatusConflict
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	body := echo.Map{"error": err.Error()}
	if seats := booking.ConflictSeats(err); len(seats) > 0 {
		body["unavailable_seat_ids"] = seats
	}
	return c.JSON(status, body)
}
