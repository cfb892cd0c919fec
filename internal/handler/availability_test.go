package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatralka/box-office/internal/repository"
)

type fakeChecker struct {
	fn func(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error)
}

func (f *fakeChecker) CheckAvailability(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
	return f.fn(ctx, scheduleID, seatIDs)
}

type fakeScheduleReader struct {
	fn func(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error)
}

func (f *fakeScheduleReader) GetByID(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error) {
	return f.fn(ctx, scheduleID)
}

func knownSchedule(t *testing.T) *fakeScheduleReader {
	return &fakeScheduleReader{
		fn: func(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error) {
			assert.Equal(t, uint64(1), scheduleID)
			return &repository.ScheduleRecord{
				ID:               1,
				PerformanceTitle: "The Cherry Orchard",
				HallID:           3,
				StartsAt:         time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
			}, nil
		},
	}
}

func availabilityRequest(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c, rec
}

func TestAvailabilitySnapshot(t *testing.T) {
	h := NewAvailabilityHandler(&fakeChecker{
		fn: func(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
			assert.Equal(t, uint64(1), scheduleID)
			assert.Equal(t, []uint64{101, 102, 103}, seatIDs)
			return []uint64{102}, nil
		},
	}, knownSchedule(t))
	c, rec := availabilityRequest("/v1/schedule/1/availability?seat_ids=101,102,103")

	require.NoError(t, h.Snapshot(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ScheduleID       uint64   `json:"schedule_id"`
		PerformanceTitle string   `json:"performance_title"`
		HallID           uint64   `json:"hall_id"`
		Unavailable      []uint64 `json:"unavailable_seat_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.ScheduleID)
	assert.Equal(t, "The Cherry Orchard", body.PerformanceTitle)
	assert.Equal(t, uint64(3), body.HallID)
	assert.Equal(t, []uint64{102}, body.Unavailable)
}

func TestAvailabilitySnapshotUnknownSchedule(t *testing.T) {
	h := NewAvailabilityHandler(&fakeChecker{
		fn: func(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
			t.Fatal("the engine must not be reached")
			return nil, nil
		},
	}, &fakeScheduleReader{
		fn: func(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error) {
			return nil, sql.ErrNoRows
		},
	})
	c, rec := availabilityRequest("/v1/schedule/1/availability?seat_ids=101")

	require.NoError(t, h.Snapshot(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilitySnapshotBadInput(t *testing.T) {
	h := NewAvailabilityHandler(&fakeChecker{
		fn: func(ctx context.Context, scheduleID uint64, seatIDs []uint64) ([]uint64, error) {
			t.Fatal("the engine must not be reached")
			return nil, nil
		},
	}, &fakeScheduleReader{
		fn: func(ctx context.Context, scheduleID uint64) (*repository.ScheduleRecord, error) {
			t.Fatal("the schedule lookup must not be reached")
			return nil, nil
		},
	})

	for name, target := range map[string]string{
		"missing seat_ids":   "/v1/schedule/1/availability",
		"malformed seat_ids": "/v1/schedule/1/availability?seat_ids=101,abc",
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := availabilityRequest(target)
			require.NoError(t, h.Snapshot(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
