package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/model"
	"github.com/mtourkz/booking-api/internal/repository"
)

// PaymentReader is the slice of the payment repository the status
// endpoint needs.
type PaymentReader interface {
	PaymentByCart(ctx context.Context, cartPublicID string) (*model.Payment, error)
}

// BookingHandler fronts the booking core: availability, checkout, the
// caller's reservation list, payment-status polling and explicit
// cancellation.
type BookingHandler struct {
	Svc          *booking.Service
	Units        *repository.UnitRepo
	Reservations *repository.ReservationRepo
	Payments     PaymentReader
}

func NewBookingHandler(svc *booking.Service, units *repository.UnitRepo, reservations *repository.ReservationRepo, payments PaymentReader) *BookingHandler {
	if svc == nil || units == nil || reservations == nil || payments == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Units: units, Reservations: reservations, Payments: payments}
}

// ListTourUnits handles GET /v1/tours/:id/units, the public catalog
// view. Responses are cached by the Redis middleware.
func (h *BookingHandler) ListTourUnits(c echo.Context) error {
	tourID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	units, err := h.Units.ListByTour(c.Request().Context(), tourID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"units": units})
}

// Availability handles GET /v1/availability?unit_id=&start=&end=. The
// returned count is advisory: it is recomputed under lock at checkout.
func (h *BookingHandler) Availability(c echo.Context) error {
	unitID, err := strconv.ParseUint(c.QueryParam("unit_id"), 10, 64)
	if err != nil || unitID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit_id"})
	}
	rng, err := rangeFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	free, err := h.Svc.FreeCount(c.Request().Context(), unitID, rng)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"unit_id": unitID,
		"start":   rng.StartString(),
		"end":     rng.EndString(),
		"free":    free,
	})
}

type visitorReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Birthday    string `json:"birthday"`
	Citizenship string `json:"citizenship"`
	DocType     int    `json:"doc_type"`
	DocNumber   string `json:"doc_number"`
	Gender      int    `json:"gender"`
}

type checkoutReq struct {
	TourID    uint64       `json:"tour_id"`
	UnitID    uint64       `json:"unit_id"`
	Start     string       `json:"start"`
	End       string       `json:"end"`
	Visitors  []visitorReq `json:"visitors"`
	CabinetID uint64       `json:"cabinet_id"` // optional preferred cabinet
	FullName  string       `json:"full_name"`
	Phone     string       `json:"phone"`
	Email     string       `json:"email"`
}

// Checkout handles POST /v1/checkout. On success the response carries
// the provider redirect URL the customer must follow to pay.
func (h *BookingHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UnitID == 0 || req.TourID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tour_id/unit_id required"})
	}
	if len(req.Visitors) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visitors is required"})
	}
	rng, err := model.ParseDateRange(req.Start, req.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	visitors := make([]model.Visitor, 0, len(req.Visitors))
	for _, v := range req.Visitors {
		if strings.TrimSpace(v.FirstName) == "" || strings.TrimSpace(v.LastName) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "visitor name is required"})
		}
		visitors = append(visitors, model.Visitor{
			FirstName:   v.FirstName,
			LastName:    v.LastName,
			Birthday:    v.Birthday,
			Citizenship: v.Citizenship,
			DocType:     v.DocType,
			DocNumber:   v.DocNumber,
			Gender:      v.Gender,
		})
	}

	res, err := h.Svc.Checkout(c.Request().Context(), booking.CheckoutInput{
		TourID:             req.TourID,
		UnitID:             req.UnitID,
		UserID:             userID,
		Range:              rng,
		Visitors:           visitors,
		PreferredCabinetID: req.CabinetID,
		Contact:            booking.Contact{Email: req.Email, Phone: req.Phone},
		FullName:           req.FullName,
	})
	if err != nil {
		var taken *booking.CabinetTakenError
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		case errors.As(err, &taken):
			return c.JSON(http.StatusNotAcceptable, echo.Map{
				"error":      "cabinet is not available",
				"cabinet_id": taken.CabinetID,
			})
		case errors.Is(err, booking.ErrNoCapacity):
			return c.JSON(http.StatusNotAcceptable, echo.Map{"error": "not enough free cabinets"})
		case errors.Is(err, booking.ErrGateway):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
		case errors.Is(err, booking.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"cart_id":         res.CartPublicID,
		"reservation_ids": res.ReservationIDs,
		"cabinet_ids":     res.CabinetIDs,
		"amount_minor":    res.AmountMinor,
		"redirect_url":    res.RedirectURL,
	})
}

// MyReservations handles GET /v1/my-reservations.
func (h *BookingHandler) MyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rows, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]reservationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, toReservationView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// PaymentStatus handles GET /v1/carts/:id/payment. The gateway success
// redirect carries the cart public id; buyers poll this until the
// provider callback settles the cart. The id is an unguessable UUID,
// so no session is required.
func (h *BookingHandler) PaymentStatus(c echo.Context) error {
	publicID := strings.TrimSpace(c.Param("id"))
	if publicID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart id"})
	}
	p, err := h.Payments.PaymentByCart(c.Request().Context(), publicID)
	if errors.Is(err, booking.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"paid":         p.Status == model.PaymentPaid,
		"amount_minor": p.AmountMinor,
		"created_at":   p.CreatedAt,
	})
}

// CancelReservation handles DELETE /v1/reservations/:id. Only unpaid
// reservations owned by the caller can be cancelled.
func (h *BookingHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	err = h.Svc.Cancel(c.Request().Context(), reservationID, userID)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "paid reservations cannot be cancelled"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
}
