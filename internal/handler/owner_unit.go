package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/model"
	"github.com/mtourkz/booking-api/internal/repository"
)

type unitReq struct {
	Title       string `json:"title"`
	Category    string `json:"category"` // "ordinary" | "zonaotdyxa"
	PriceMinor  int64  `json:"price_minor"`
	PlaceCount  int    `json:"place_count"`
	Capacity    int    `json:"capacity"`
	MaxCapacity int    `json:"max_capacity"`
	Hidden      bool   `json:"hidden"`
}

// CreateUnit handles POST /v1/owner/tours/:id/units. Creating a unit
// materializes its cabinets; place_count is fixed from then on.
func (h *OwnerHandler) CreateUnit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req unitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.Title == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	case req.PlaceCount < 1 || req.PlaceCount > 500:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "place_count must be between 1 and 500"})
	case req.PriceMinor < 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_minor must not be negative"})
	case req.MaxCapacity < req.Capacity:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_capacity below capacity"})
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.CategoryOrdinary
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

	id, err := h.Units.Create(ctx, repository.CreateUnitInput{
		TourID:      tourID,
		Title:       req.Title,
		Category:    category,
		PriceMinor:  req.PriceMinor,
		PlaceCount:  req.PlaceCount,
		Capacity:    req.Capacity,
		MaxCapacity: req.MaxCapacity,
		Hidden:      req.Hidden,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create unit failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "place_count": req.PlaceCount})
}

// UpdateUnit handles PUT /v1/owner/units/:id.
func (h *OwnerHandler) UpdateUnit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req unitReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.MaxCapacity < req.Capacity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_capacity below capacity"})
	}

	ctx := c.Request().Context()
	if err := h.Users.OwnsUnit(ctx, userID, unitID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your unit"})
		}
		if repository.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Units.Update(ctx, unitID, strings.TrimSpace(req.Title), req.PriceMinor, req.Capacity, req.MaxCapacity, req.Hidden); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update unit failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUnit handles DELETE /v1/owner/units/:id (soft delete).
func (h *OwnerHandler) DeleteUnit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if err := h.Users.OwnsUnit(ctx, userID, unitID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your unit"})
		}
		if repository.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Units.SoftDelete(ctx, unitID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete unit failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUnitCabinets handles GET /v1/owner/units/:id/cabinets.
func (h *OwnerHandler) ListUnitCabinets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unitID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if err := h.Users.OwnsUnit(ctx, userID, unitID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your unit"})
		}
		if repository.IsNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unit not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	cabinets, err := h.Units.Cabinets(ctx, unitID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cabinets": cabinets})
}
