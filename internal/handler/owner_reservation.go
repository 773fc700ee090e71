package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/model"
	"github.com/mtourkz/booking-api/internal/repository"
)

// OwnerReservationHandler serves the occupancy views and repair
// closures available to ORG users for their own units.
type OwnerReservationHandler struct {
	Users        *repository.UserRepo
	Units        *repository.UnitRepo
	Reservations *repository.ReservationRepo
}

func NewOwnerReservationHandler(users *repository.UserRepo, units *repository.UnitRepo, reservations *repository.ReservationRepo) *OwnerReservationHandler {
	if users == nil || units == nil || reservations == nil {
		panic("nil repository passed to NewOwnerReservationHandler")
	}
	return &OwnerReservationHandler{Users: users, Units: units, Reservations: reservations}
}

// ownUnit runs the shared ownership gate. A nil error means the caller
// owns the unit; otherwise the response has already been written.
func (h *OwnerReservationHandler) ownUnit(c echo.Context, userID, unitID uint64) error {
	err := h.Users.OwnsUnit(c.Request().Context(), userID, unitID)
	if err == nil {
		return nil
	}
	if err == repository.ErrForbidden {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your unit"})
	}
	if repository.IsNoRows(err) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

type reservationView struct {
	ID             uint64 `json:"id"`
	CabinetID      uint64 `json:"cabinet_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Paid           bool   `json:"paid"`
	RepairClosure  bool   `json:"repair_closure"`
	FullName       string `json:"full_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	AmountMinor    int64  `json:"amount_minor"`
	ApprovedStatus int    `json:"approved_status"`
}

func toReservationView(r model.Reservation) reservationView {
	return reservationView{
		ID:             r.ID,
		CabinetID:      r.CabinetID,
		Start:          r.Range.StartString(),
		End:            r.Range.EndString(),
		Paid:           r.Paid,
		RepairClosure:  r.ClosedForRepair,
		FullName:       r.FullName,
		Phone:          r.Phone,
		Email:          r.Email,
		AmountMinor:    r.AmountMinor,
		ApprovedStatus: r.ApprovedStatus,
	}
}

// ListUnitReservations handles GET /v1/owner/units/:id/reservations.
// Query parameters start/end bound the view; every active row
// overlapping the range is returned, repair closures included.
func (h *OwnerReservationHandler) ListUnitReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rng, err := rangeFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if resp := h.ownUnit(c, userID, unitID); resp != nil {
		return resp
	}

	rows, err := h.Reservations.ListByUnitAndRange(c.Request().Context(), unitID, rng)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]reservationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, toReservationView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

type repairReq struct {
	CabinetIDs []uint64 `json:"cabinet_ids"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
}

// CloseForRepair handles POST /v1/owner/units/:id/repair-closures.
// Closed cabinets disappear from availability entirely until reopened.
func (h *OwnerReservationHandler) CloseForRepair(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req repairReq
	if err := c.Bind(&req); err != nil || len(req.CabinetIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cabinet_ids is required"})
	}
	rng, err := model.ParseDateRange(req.Start, req.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if resp := h.ownUnit(c, userID, unitID); resp != nil {
		return resp
	}

	ctx := c.Request().Context()
	// reject cabinet ids that do not belong to this unit
	owned, err := h.Units.Cabinets(ctx, unitID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	valid := make(map[uint64]bool, len(owned))
	for _, cab := range owned {
		valid[cab.ID] = true
	}
	for _, id := range req.CabinetIDs {
		if !valid[id] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cabinet does not belong to unit"})
		}
	}

	if err := h.Reservations.CloseForRepair(ctx, unitID, req.CabinetIDs, rng); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "close for repair failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"closed": len(req.CabinetIDs)})
}

// ReopenAfterRepair handles DELETE /v1/owner/units/:id/repair-closures.
func (h *OwnerReservationHandler) ReopenAfterRepair(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req repairReq
	if err := c.Bind(&req); err != nil || len(req.CabinetIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cabinet_ids is required"})
	}
	if resp := h.ownUnit(c, userID, unitID); resp != nil {
		return resp
	}

	if err := h.Reservations.ReopenAfterRepair(c.Request().Context(), unitID, req.CabinetIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reopen failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
