package model

import "time"

// Approval states for the confirmation-code flow.
const (
	ApprovedNotSent  = -1 // code never dispatched
	ApprovedSent     = 0  // code dispatched, awaiting validation
	ApprovedApproved = 1  // code validated
)

// Reservation is a claim on one cabinet for a half-open date range.
// Contact fields are snapshotted at creation time and never re-derived,
// so historical records stay stable when the account changes later.
//
// Fields:
//  ID              – primary key identifier.
//  UnitID          – lodging unit the cabinet belongs to.
//  CabinetID       – cabinet being occupied.
//  Range           – [start_date, end_date), checkout day not occupied.
//  Paid            – derived from the linked payment's status.
//  ClosedForRepair – row blocks the cabinet independently of bookings.
//  ReservatorID    – account that made the booking (nil for walk-ins).
//  FullName        – contact snapshot.
//  Phone           – contact snapshot.
//  Email           – contact snapshot.
//  AmountMinor     – total price of this row; immutable once paid.
//  PaymentID       – linked payment, at most one (nullable).
//  ApprovedStatus  – confirmation-code tri-state.
//  IsDeleted       – soft-delete flag; deleted rows do not count toward
//                    availability but are retained for history.
type Reservation struct {
	ID              uint64    // reservations.id
	UnitID          uint64    // reservations.lodging_unit_id
	CabinetID       uint64    // reservations.cabinet_id
	Range           DateRange // reservations.start_date / end_date
	Paid            bool      // reservations.paid
	ClosedForRepair bool      // reservations.closed_for_repair
	ReservatorID    *uint64   // reservations.reservator_id (nullable)
	FullName        string    // reservations.full_name
	Phone           string    // reservations.phone
	Email           string    // reservations.email
	AmountMinor     int64     // reservations.amount_minor
	PaymentID       *uint64   // reservations.payment_id (nullable)
	ApprovedStatus  int       // reservations.approved_status
	IsDeleted       bool      // reservations.is_deleted
	CreatedAt       time.Time // reservations.created_at
}
