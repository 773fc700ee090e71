package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/model"
)

type stubPayments struct {
	payments map[string]*model.Payment
}

func (s *stubPayments) PaymentByCart(ctx context.Context, cartPublicID string) (*model.Payment, error) {
	p, ok := s.payments[cartPublicID]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return p, nil
}

func paymentStatusCall(t *testing.T, h *BookingHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/carts/"+id+"/payment", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/carts/:id/payment")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.PaymentStatus(c))
	return rec
}

func TestPaymentStatusSettledCart(t *testing.T) {
	h := &BookingHandler{Payments: &stubPayments{payments: map[string]*model.Payment{
		"5f3a": {ID: 1, CartID: 5, AmountMinor: 250_00, Status: model.PaymentPaid, CreatedAt: time.Now()},
	}}}

	rec := paymentStatusCall(t, h, "5f3a")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Paid        bool  `json:"paid"`
		AmountMinor int64 `json:"amount_minor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Paid)
	assert.Equal(t, int64(250_00), body.AmountMinor)
}

func TestPaymentStatusPendingCart(t *testing.T) {
	h := &BookingHandler{Payments: &stubPayments{payments: map[string]*model.Payment{
		"5f3a": {ID: 1, CartID: 5, AmountMinor: 100_00, Status: model.PaymentNotPaid, CreatedAt: time.Now()},
	}}}

	rec := paymentStatusCall(t, h, "5f3a")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Paid bool `json:"paid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Paid)
}

func TestPaymentStatusUnknownCart(t *testing.T) {
	h := &BookingHandler{Payments: &stubPayments{payments: map[string]*model.Payment{}}}

	rec := paymentStatusCall(t, h, "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
