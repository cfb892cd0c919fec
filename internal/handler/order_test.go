package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatralka/box-office/internal/booking"
	"github.com/teatralka/box-office/internal/repository"
)

type fakeInitiator struct {
	fn func(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error)
}

func (f *fakeInitiator) Initiate(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error) {
	return f.fn(ctx, userID, scheduleID, seatIDs)
}

type fakeOrderReader struct {
	get  func(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error)
	list func(ctx context.Context, userID uint64) ([]repository.OrderDetail, error)
}

func (f *fakeOrderReader) GetDetailForUser(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error) {
	return f.get(ctx, orderID, userID)
}

func (f *fakeOrderReader) ListByUser(ctx context.Context, userID uint64) ([]repository.OrderDetail, error) {
	return f.list(ctx, userID)
}

type fakeSaleReader struct {
	fn func(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error)
}

func (f *fakeSaleReader) ListByOrder(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error) {
	return f.fn(ctx, orderID)
}

// untouchedReads fails the test if any read-side dependency is reached.
func untouchedReads(t *testing.T) (*fakeOrderReader, *fakeSaleReader) {
	orders := &fakeOrderReader{
		get: func(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error) {
			t.Fatal("the order read side must not be reached")
			return nil, nil
		},
		list: func(ctx context.Context, userID uint64) ([]repository.OrderDetail, error) {
			t.Fatal("the order read side must not be reached")
			return nil, nil
		},
	}
	sales := &fakeSaleReader{
		fn: func(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error) {
			t.Fatal("the sale read side must not be reached")
			return nil, nil
		},
	}
	return orders, sales
}

func noInitiator(t *testing.T) *fakeInitiator {
	return &fakeInitiator{
		fn: func(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error) {
			t.Fatal("the engine must not be reached")
			return nil, nil
		},
	}
}

func getOrder(orderID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders/"+orderID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	return c, rec
}

func TestOrderCreate(t *testing.T) {
	orders, sales := untouchedReads(t)
	h := NewOrderHandler(&fakeInitiator{
		fn: func(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error) {
			assert.Equal(t, uint64(7), userID)
			assert.Equal(t, uint64(1), scheduleID)
			assert.Equal(t, []uint64{101, 102}, seatIDs)
			return &booking.InitiateResult{
				OrderID:       5,
				TotalAmount:   decimal.RequireFromString("900.00"),
				PaymentHandle: "8d1a2f6e",
			}, nil
		},
	}, orders, sales)

	c, rec := postJSON("/v1/orders", `{"schedule_id":1,"seat_ids":[101,102]}`)
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got booking.InitiateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(5), got.OrderID)
	assert.Equal(t, "8d1a2f6e", got.PaymentHandle)
}

func TestOrderCreateSeatConflict(t *testing.T) {
	orders, sales := untouchedReads(t)
	h := NewOrderHandler(&fakeInitiator{
		fn: func(ctx context.Context, userID, scheduleID uint64, seatIDs []uint64) (*booking.InitiateResult, error) {
			return nil, &booking.Error{
				Kind:    booking.KindConflict,
				Msg:     "seats unavailable",
				SeatIDs: []uint64{102},
			}
		},
	}, orders, sales)

	c, rec := postJSON("/v1/orders", `{"schedule_id":1,"seat_ids":[101,102]}`)
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Unavailable []uint64 `json:"unavailable_seat_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []uint64{102}, body.Unavailable,
		"the client needs to know which seats to re-pick")
}

func TestOrderCreateRequiresIdentity(t *testing.T) {
	orders, sales := untouchedReads(t)
	h := NewOrderHandler(noInitiator(t), orders, sales)

	c, rec := postJSON("/v1/orders", `{"schedule_id":1,"seat_ids":[101]}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderGetPaidIncludesSales(t *testing.T) {
	saleDate := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	orders := &fakeOrderReader{
		get: func(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error) {
			assert.Equal(t, uint64(5), orderID)
			assert.Equal(t, uint64(7), userID)
			return &repository.OrderDetail{
				ID:          5,
				UserID:      7,
				Status:      "paid",
				Items:       []repository.OrderLineItem{},
				TotalAmount: decimal.RequireFromString("600.00"),
			}, nil
		},
	}
	sales := &fakeSaleReader{
		fn: func(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error) {
			assert.Equal(t, uint64(5), orderID)
			return []repository.SaleRecord{{
				ID:            1,
				OrderID:       5,
				TicketID:      11,
				TotalPrice:    decimal.RequireFromString("600.00"),
				PaymentMethod: "card",
				SaleDate:      saleDate,
			}}, nil
		},
	}
	h := NewOrderHandler(noInitiator(t), orders, sales)

	c, rec := getOrder("5")
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Sales  []struct {
			TicketID      uint64 `json:"ticket_id"`
			PaymentMethod string `json:"payment_method"`
		} `json:"sales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "paid", body.Status)
	require.Len(t, body.Sales, 1)
	assert.Equal(t, uint64(11), body.Sales[0].TicketID)
	assert.Equal(t, "card", body.Sales[0].PaymentMethod)
}

func TestOrderGetUnsettledOmitsSales(t *testing.T) {
	orders := &fakeOrderReader{
		get: func(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error) {
			return &repository.OrderDetail{
				ID:     5,
				UserID: 7,
				Status: "awaiting_payment",
				Items:  []repository.OrderLineItem{},
			}, nil
		},
	}
	sales := &fakeSaleReader{
		fn: func(ctx context.Context, orderID uint64) ([]repository.SaleRecord, error) {
			t.Fatal("sales must only be read for paid orders")
			return nil, nil
		},
	}
	h := NewOrderHandler(noInitiator(t), orders, sales)

	c, rec := getOrder("5")
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"sales"`)
}
