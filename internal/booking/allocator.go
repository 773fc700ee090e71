package booking

import (
	"context"

	"github.com/mtourkz/booking-api/internal/model"
)

// allocate picks the cabinets a checkout will occupy, inside the
// caller's transaction. The unit's policy decides how many:
//
//   - PolicySingle: one free cabinet books the whole stay; none free
//     fails ErrNoCapacity.
//   - PolicyMulti: one cabinet per visitor, and the free count must
//     strictly exceed the visitor count so at least one spare remains.
//     A free count equal to the visitor count still fails.
//
// When preferredCabinetID is non-zero the counting policy is bypassed
// entirely: the specific cabinet is checked and ErrCabinetTaken
// returned if occupied.
//
// Cabinets are consumed from the free set in ascending position order,
// which FreeCabinetsForUpdate guarantees.
func allocate(ctx context.Context, tx Tx, unit *model.LodgingUnit, r model.DateRange, visitorCount int, preferredCabinetID uint64) ([]model.Cabinet, error) {
	if preferredCabinetID != 0 {
		free, err := tx.CabinetFree(ctx, preferredCabinetID, r)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, &CabinetTakenError{CabinetID: preferredCabinetID}
		}
		return []model.Cabinet{{ID: preferredCabinetID, UnitID: unit.ID}}, nil
	}

	free, err := tx.FreeCabinetsForUpdate(ctx, unit.ID, r)
	if err != nil {
		return nil, err
	}

	switch unit.Policy {
	case model.PolicySingle:
		if len(free) == 0 {
			return nil, ErrNoCapacity
		}
		return free[:1], nil
	default:
		// Strict >: the spare-cabinet rule is intentional, one cabinet
		// is reserved per visitor and one must remain unbooked.
		if len(free) <= visitorCount {
			return nil, ErrNoCapacity
		}
		return free[:visitorCount], nil
	}
}
