// Package booking implements the reservation core: cabinet
// availability, allocation policies, the checkout orchestration around
// the payment gateway, the unpaid-reservation reaper and the
// confirmation-code flow. Handlers translate the sentinel errors
// defined here into HTTP status codes.
package booking

import "errors"

// ErrNoCapacity is returned when no free cabinet (or not enough free
// cabinets under the multi-cabinet policy) exists for the requested
// range. Handlers report it as not acceptable, distinct from a
// malformed request, so clients can offer alternate dates.
var ErrNoCapacity = errors.New("no free cabinets for the requested range")

// ErrCabinetTaken is returned on the preferred-cabinet path when the
// requested cabinet is occupied. Same status family as ErrNoCapacity
// but carries the specific cabinet in CabinetTakenError.
var ErrCabinetTaken = errors.New("requested cabinet is taken")

// ErrGateway is returned when the payment provider call failed or the
// order was declined. The provisional cart/reservation rows are rolled
// back before this error reaches the caller.
var ErrGateway = errors.New("payment gateway error")

// ErrCodeMismatch is returned when a submitted confirmation code does
// not match the live code. The code stays live so the caller may retry.
var ErrCodeMismatch = errors.New("confirmation code mismatch")

// ErrNotFound is returned when a referenced unit, cart or reservation
// does not exist (or is soft-deleted from the caller's point of view).
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller operates on a resource
// belonging to someone else, e.g. issuing a confirmation code for a
// reservation on another organization's unit.
var ErrForbidden = errors.New("forbidden")

// ErrValidation is returned for malformed checkout input other than
// the date range, e.g. an empty visitor list.
var ErrValidation = errors.New("validation error")

// CabinetTakenError wraps ErrCabinetTaken with the occupied cabinet id.
type CabinetTakenError struct {
	CabinetID uint64
}

func (e *CabinetTakenError) Error() string { return "cabinet is taken" }

// Unwrap lets errors.Is(err, ErrCabinetTaken) match.
func (e *CabinetTakenError) Unwrap() error { return ErrCabinetTaken }
