package booking

import (
	"context"
	"time"

	"github.com/mtourkz/booking-api/internal/model"
)

// The interfaces in this file are the seams between the booking core
// and its collaborators. internal/repository provides the SQL-backed
// implementations; tests substitute in-memory fakes.

// Catalog is the read-only lodging-unit lookup.
type Catalog interface {
	// LodgingUnit returns the active unit with its policy resolved,
	// or ErrNotFound when it does not exist or is soft-deleted.
	LodgingUnit(ctx context.Context, id uint64) (*model.LodgingUnit, error)
}

// AvailabilityReader serves lock-free availability queries (the GET
// endpoint). Writes never go through this interface.
type AvailabilityReader interface {
	// FreeCabinets returns the active, non-repair-closed cabinets of
	// the unit with no overlapping active reservation in r, ordered by
	// ascending position.
	FreeCabinets(ctx context.Context, unitID uint64, r model.DateRange) ([]model.Cabinet, error)
}

// Tx groups the operations that must land atomically during checkout.
// Implementations must lock the unit's cabinet rows for the duration
// of the transaction so that concurrent checkouts for the same unit
// serialize; see FreeCabinetsForUpdate.
type Tx interface {
	// FreeCabinetsForUpdate locks every active cabinet row of the unit
	// and then returns the free subset for r, ordered by position.
	FreeCabinetsForUpdate(ctx context.Context, unitID uint64, r model.DateRange) ([]model.Cabinet, error)
	// CabinetFree reports whether one specific cabinet is active, not
	// closed for repair, and free across r. The cabinet row must be
	// locked by a prior FreeCabinetsForUpdate or by the query itself.
	CabinetFree(ctx context.Context, cabinetID uint64, r model.DateRange) (bool, error)
	// CreateCart inserts the cart row and populates its ID.
	CreateCart(ctx context.Context, cart *model.Cart) error
	// AddVisitors bulk-inserts the visitor snapshot rows.
	AddVisitors(ctx context.Context, cartID uint64, visitors []model.Visitor) error
	// CreateReservations bulk-inserts reservation rows and populates
	// their IDs. All rows share the cart's payment once it exists.
	CreateReservations(ctx context.Context, rows []*model.Reservation) error
	// CreatePayment inserts the payment row, populates its ID and
	// links the given reservations to it.
	CreatePayment(ctx context.Context, p *model.Payment, reservationIDs []uint64) error
}

// Store opens the transaction boundary for checkout. A non-nil error
// from fn rolls everything back, including rows already written.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Contact is what the gateway needs to reach the customer.
type Contact struct {
	Email string
	Phone string
}

// Gateway is the payment-provider collaborator. CreatePayment returns
// the provider-hosted redirect URL for the customer. Implementations
// must enforce a short call timeout so a hung provider produces a
// definite failure and the surrounding transaction can close.
type Gateway interface {
	CreatePayment(ctx context.Context, amountMinor int64, orderID string, contact Contact) (string, error)
}

// Notifier is the fire-and-forget messaging collaborator. Failures are
// logged by callers and never abort the allocation transaction.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, subject, body string) error
}

// SettlementStore applies gateway callbacks.
type SettlementStore interface {
	// SettleByCart sets the payment status for the cart (looked up by
	// its public id), flips paid on linked reservations and moves the
	// cart to CONFIRMED or FAILED. Only a cart still AWAITING_PAYMENT
	// settles: replays and callbacks against terminal carts report
	// changed=false. ErrNotFound when no payment exists for the cart.
	SettleByCart(ctx context.Context, cartPublicID string, paid bool) (changed bool, userID uint64, err error)
}

// CancelStore serves explicit pre-payment cancellation.
type CancelStore interface {
	// CancelReservation soft-deletes an unpaid reservation owned by
	// userID and moves its cart to CANCELLED. Paid reservations are
	// never deleted; implementations return ErrConflict-like errors
	// from the repository layer.
	CancelReservation(ctx context.Context, reservationID, userID uint64) error
}

// ExpiredReservation is one reaper candidate: a reservation whose
// linked payment was created before the grace cutoff and was unpaid
// when the candidate list was built.
type ExpiredReservation struct {
	ReservationID uint64
	PaymentID     uint64
	CartID        uint64
	UserID        uint64
}

// ReaperStore backs the periodic sweep of unpaid reservations.
type ReaperStore interface {
	// ExpiredUnpaid lists active reservations whose payment is unpaid
	// and older than the cutoff.
	ExpiredUnpaid(ctx context.Context, cutoff time.Time) ([]ExpiredReservation, error)
	// PaymentPaid re-reads the live payment status. The sweep must not
	// trust the snapshot from ExpiredUnpaid: the callback may have won
	// the race after the list was built.
	PaymentPaid(ctx context.Context, paymentID uint64) (bool, error)
	// ReleaseReservation soft-deletes the reservation and moves its
	// cart to CANCELLED, returning the cabinet to the free pool.
	ReleaseReservation(ctx context.Context, reservationID uint64) error
	// MarkReservationPaid flips paid=true on a reservation whose
	// payment settled after the candidate list was built.
	MarkReservationPaid(ctx context.Context, reservationID uint64) error
}

// CodeStore persists confirmation codes.
type CodeStore interface {
	// Regenerate deletes any live code for user+purpose and stores a
	// fresh one, returning the generated 6-digit value.
	Regenerate(ctx context.Context, userID uint64, purpose string) (string, error)
	// Consume compares the submitted code against the live one.
	// On match it deletes the code (single use) and returns true; on
	// mismatch the code stays live and false is returned.
	Consume(ctx context.Context, userID uint64, purpose, code string) (bool, error)
}

// ApprovalStore reads and updates the reservation approval tri-state.
type ApprovalStore interface {
	// Reservation returns the active reservation or ErrNotFound.
	Reservation(ctx context.Context, id uint64) (*model.Reservation, error)
	// SetApprovedStatus updates reservations.approved_status.
	SetApprovedStatus(ctx context.Context, reservationID uint64, status int) error
}

// OwnershipStore resolves the organization ownership walk from a
// lodging unit up to the user account that owns it.
type OwnershipStore interface {
	// OwnsUnit returns nil when the user's organization owns the
	// unit, ErrForbidden for a foreign unit and ErrNotFound when the
	// unit does not exist.
	OwnsUnit(ctx context.Context, userID, unitID uint64) error
}
