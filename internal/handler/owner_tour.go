package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/repository"
)

// OwnerHandler bundles the repositories ORG users need to manage their
// catalog: tours, lodging units and the cabinet inventory underneath.
type OwnerHandler struct {
	Users *repository.UserRepo
	Tours *repository.TourRepo
	Units *repository.UnitRepo
}

// NewOwnerHandler constructs an OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(users *repository.UserRepo, tours *repository.TourRepo, units *repository.UnitRepo) *OwnerHandler {
	if users == nil || tours == nil || units == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Users: users, Tours: tours, Units: units}
}

type tourReq struct {
	Title string `json:"title"`
	City  string `json:"city"`
}

// CreateTour handles POST /v1/owner/tours. The tour is attached to the
// caller's organization; unmoderated organizations may create tours
// but their units stay hidden from the public catalog.
func (h *OwnerHandler) CreateTour(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx := c.Request().Context()
	org, err := h.Users.OrganizationByUser(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no organization profile"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	id, err := h.Tours.Create(ctx, org.ID, req.Title, strings.TrimSpace(req.City))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tour failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListTours handles GET /v1/owner/tours.
func (h *OwnerHandler) ListTours(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	org, err := h.Users.OrganizationByUser(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no organization profile"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tours, err := h.Tours.ListByOrg(ctx, org.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": tours})
}

// UpdateTour handles PUT /v1/owner/tours/:id.
func (h *OwnerHandler) UpdateTour(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx := c.Request().Context()
	if err := h.Users.OwnsTour(ctx, userID, tourID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your tour"})
		}
		if repository.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Tours.Update(ctx, tourID, strings.TrimSpace(req.Title), strings.TrimSpace(req.City)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tour failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
