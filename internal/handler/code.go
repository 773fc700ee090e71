package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mtourkz/booking-api/internal/booking"
)

// CodeHandler exposes the confirmation-code flow: issuing a code for a
// reservation and validating a submitted one.
type CodeHandler struct {
	Verifier *booking.CodeVerifier
}

func NewCodeHandler(v *booking.CodeVerifier) *CodeHandler {
	if v == nil {
		panic("nil verifier passed to NewCodeHandler")
	}
	return &CodeHandler{Verifier: v}
}

// IssueCode handles POST /v1/reservations/:id/confirmation-code.
// Restricted to the ORG whose unit carries the reservation; re-issuing
// invalidates any previously sent code.
func (h *CodeHandler) IssueCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	err = h.Verifier.Issue(c.Request().Context(), reservationID, userID)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"status": "sent"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your unit"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
}

type validateCodeReq struct {
	Code string `json:"code"`
}

// ValidateCode handles POST /v1/reservations/:id/confirmation-code/validate.
func (h *CodeHandler) ValidateCode(c echo.Context) error {
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req validateCodeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	err = h.Verifier.Validate(c.Request().Context(), reservationID, strings.TrimSpace(req.Code))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "approved"})
	case errors.Is(err, booking.ErrCodeMismatch):
		return c.JSON(http.StatusNotAcceptable, echo.Map{"error": "code does not match"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate code failed"})
}
