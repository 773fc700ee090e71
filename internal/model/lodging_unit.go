package model

import "time"

// Allocation policies for a lodging unit.  The policy is resolved once
// from the category string when the unit is loaded and carried as a
// value; call sites never compare category strings themselves.
type Policy int

const (
	// PolicyMulti assigns one cabinet per visitor and requires the
	// number of free cabinets to strictly exceed the visitor count,
	// keeping at least one spare. Default for ordinary categories.
	PolicyMulti Policy = iota
	// PolicySingle books exactly one cabinet for the whole stay
	// regardless of visitor count. Used by resort-style units.
	PolicySingle
)

// Unit categories as stored in lodging_units.category.
const (
	CategoryOrdinary = "ordinary"
	CategoryResort   = "zonaotdyxa"
)

// ResolvePolicy maps a category string onto its allocation policy.
// Unknown categories fall back to the multi-cabinet policy.
func ResolvePolicy(category string) Policy {
	if category == CategoryResort {
		return PolicySingle
	}
	return PolicyMulti
}

// Tour is the venue a lodging unit belongs to. Tours are owned by an
// organization; ownership checks walk unit -> tour -> organization.
//
// Fields:
//  ID        – primary key identifier.
//  OrgID     – owning organization.
//  Title     – display name of the venue.
//  City      – city the venue operates in.
//  CreatedAt – creation timestamp.
type Tour struct {
	ID        uint64    // tours.id
	OrgID     uint64    // tours.org_id
	Title     string    // tours.title
	City      string    // tours.city
	CreatedAt time.Time // tours.created_at
}

// LodgingUnit is a bookable room category within a tour. Creating a
// unit materializes PlaceCount cabinet rows in the same transaction;
// the cabinet set is never resized by reservation logic afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  TourID      – venue the unit belongs to.
//  Title       – display name.
//  Category    – "ordinary" or "zonaotdyxa" (resort).
//  Policy      – allocation policy resolved from Category at load time.
//  PriceMinor  – per-night price in minor currency units.
//  PlaceCount  – number of cabinets materialized at creation.
//  Capacity    – nominal visitors per cabinet.
//  MaxCapacity – hard visitor ceiling per cabinet.
//  Hidden      – hidden from public catalog listings.
//  IsDeleted   – soft-delete flag; deleted units keep their history.
type LodgingUnit struct {
	ID          uint64    // lodging_units.id
	TourID      uint64    // lodging_units.tour_id
	Title       string    // lodging_units.title
	Category    string    // lodging_units.category
	Policy      Policy    // derived, not a column
	PriceMinor  int64     // lodging_units.price_minor
	PlaceCount  int       // lodging_units.place_count
	Capacity    int       // lodging_units.capacity
	MaxCapacity int       // lodging_units.max_capacity
	Hidden      bool      // lodging_units.hidden
	IsDeleted   bool      // lodging_units.is_deleted
	CreatedAt   time.Time // lodging_units.created_at
}

// Cabinet is one physical, individually assignable room inside a
// lodging unit. Identity is immutable once created.
//
// Fields:
//  ID        – primary key identifier.
//  UnitID    – owning lodging unit.
//  Position  – 1-based ordinal inside the unit; allocation consumes
//              cabinets in ascending position order.
//  Label     – optional human-readable name.
//  IsDeleted – soft-delete flag.
type Cabinet struct {
	ID        uint64  // cabinets.id
	UnitID    uint64  // cabinets.lodging_unit_id
	Position  int     // cabinets.position
	Label     *string // cabinets.label (nullable)
	IsDeleted bool    // cabinets.is_deleted
}
