package model

import "time"

// Checkout attempt states. A cart starts as DRAFT, moves to
// AWAITING_PAYMENT once the gateway accepted the order, and reaches a
// terminal state through the payment callback, explicit cancellation
// or the expiry reaper.
const (
	CheckoutDraft           = "DRAFT"
	CheckoutFailed          = "FAILED"
	CheckoutAwaitingPayment = "AWAITING_PAYMENT"
	CheckoutConfirmed       = "CONFIRMED"
	CheckoutCancelled       = "CANCELLED"
)

// Payment statuses as stored in payments.status.
const (
	PaymentNotPaid = 0
	PaymentPaid    = 1
)

// Cart groups one checkout attempt: the chosen unit, the stay and the
// visitors. PublicID is the opaque identifier handed to the payment
// gateway as the order id and echoed back in callbacks.
//
// Fields:
//  ID           – primary key identifier.
//  PublicID     – UUID shared with the gateway.
//  TourID       – venue being booked.
//  UnitID       – lodging unit being booked.
//  UserID       – purchasing account.
//  Range        – stay as a half-open range.
//  VisitorCount – number of visitors on the cart.
//  AmountMinor  – total charge in minor units.
//  Status       – checkout state machine value.
type Cart struct {
	ID           uint64    // carts.id
	PublicID     string    // carts.public_id
	TourID       uint64    // carts.tour_id
	UnitID       uint64    // carts.lodging_unit_id
	UserID       uint64    // carts.user_id
	Range        DateRange // carts.start_date / end_date
	VisitorCount int       // carts.visitor_count
	AmountMinor  int64     // carts.amount_minor
	Status       string    // carts.status
	CreatedAt    time.Time // carts.created_at
}

// Visitor is the per-person snapshot captured on a cart.
type Visitor struct {
	ID          uint64 // cart_visitors.id
	CartID      uint64 // cart_visitors.cart_id
	FirstName   string // cart_visitors.first_name
	LastName    string // cart_visitors.last_name
	Birthday    string // cart_visitors.birthday (YYYY-MM-DD)
	Citizenship string // cart_visitors.citizenship
	DocType     int    // cart_visitors.doc_type
	DocNumber   string // cart_visitors.doc_number
	Gender      int    // cart_visitors.gender
}

// Payment is the gateway-side record for a cart, one-to-one.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – paying account.
//  CartID      – checkout attempt this payment belongs to.
//  AmountMinor – charged amount in minor units.
//  Status      – PaymentNotPaid or PaymentPaid.
//  RedirectURL – gateway-hosted payment page for the customer.
//  CreatedAt   – creation time; the reaper measures the grace window
//                from this timestamp.
type Payment struct {
	ID          uint64    // payments.id
	UserID      uint64    // payments.user_id
	CartID      uint64    // payments.cart_id
	AmountMinor int64     // payments.amount_minor
	Status      int       // payments.status
	RedirectURL *string   // payments.redirect_url (nullable)
	CreatedAt   time.Time // payments.created_at
}
