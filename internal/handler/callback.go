package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/booking"
)

// CallbackHandler receives settlement callbacks from the payment
// provider. The provider authenticates with Basic auth configured out
// of band; everything else about the request is untrusted input.
type CallbackHandler struct {
	Svc      *booking.Service
	Login    string
	Password string
}

func NewCallbackHandler(svc *booking.Service, login, password string) *CallbackHandler {
	if svc == nil {
		panic("nil service passed to NewCallbackHandler")
	}
	return &CallbackHandler{Svc: svc, Login: login, Password: password}
}

type callbackReq struct {
	OrderID string `json:"orderId"`
	Status  int    `json:"status"` // 1 = paid, anything else = failed
}

// HandleCallback processes POST /v1/payments/callback. Replayed
// callbacks for an already settled payment return 200 without side
// effects; the provider retries until it sees a 2xx.
func (h *CallbackHandler) HandleCallback(c echo.Context) error {
	login, password, ok := c.Request().BasicAuth()
	if !ok ||
		subtle.ConstantTimeCompare([]byte(login), []byte(h.Login)) != 1 ||
		subtle.ConstantTimeCompare([]byte(password), []byte(h.Password)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req callbackReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.OrderID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "orderId is required"})
	}

	err := h.Svc.ConfirmPayment(c.Request().Context(), req.OrderID, req.Status == 1)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
	}
	return c.NoContent(http.StatusOK)
}
