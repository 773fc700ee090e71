package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtourkz/booking-api/internal/model"
)

// ownerUserID is the account whose organization owns unit 1 in the
// code fixtures.
const ownerUserID uint64 = 7

func codeFixture(t *testing.T) (*world, *CodeVerifier, *memCodeStore, uint64) {
	t.Helper()
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 3, 100_00)
	res, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 1, UserID: 42,
		Range:    mustRange(t, "2026-07-01", "2026-07-03"),
		Visitors: visitors(1),
	})
	require.NoError(t, err)

	codes := newMemCodeStore()
	owners := &memOwnershipStore{owners: map[uint64]uint64{1: ownerUserID}}
	v := NewCodeVerifier(codes, &memApprovalStore{store: w.store}, owners, w.notifier, nil)
	return w, v, codes, res.ReservationIDs[0]
}

func TestIssueSendsCodeAndMarksSent(t *testing.T) {
	w, v, _, reservationID := codeFixture(t)
	before := w.notifier.count()

	require.NoError(t, v.Issue(context.Background(), reservationID, ownerUserID))

	assert.Equal(t, model.ApprovedSent, w.store.state.reservations[reservationID].ApprovedStatus)
	assert.Equal(t, before+1, w.notifier.count())
}

func TestIssueUnknownReservation(t *testing.T) {
	_, v, _, _ := codeFixture(t)
	assert.ErrorIs(t, v.Issue(context.Background(), 9999, ownerUserID), ErrNotFound)
}

func TestIssueForeignCallerForbidden(t *testing.T) {
	w, v, _, reservationID := codeFixture(t)
	before := w.notifier.count()

	// the reservator's own account does not qualify either; only the
	// owning organization may issue
	err := v.Issue(context.Background(), reservationID, 42)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, model.ApprovedNotSent, w.store.state.reservations[reservationID].ApprovedStatus)
	assert.Equal(t, before, w.notifier.count())
}

func TestValidateApprovesOnMatch(t *testing.T) {
	w, v, codes, reservationID := codeFixture(t)
	require.NoError(t, v.Issue(context.Background(), reservationID, ownerUserID))

	require.NoError(t, v.Validate(context.Background(), reservationID, codes.next))
	assert.Equal(t, model.ApprovedApproved, w.store.state.reservations[reservationID].ApprovedStatus)

	// single use: the consumed code no longer validates
	assert.ErrorIs(t, v.Validate(context.Background(), reservationID, codes.next), ErrCodeMismatch)
}

func TestValidateMismatchKeepsCodeLive(t *testing.T) {
	w, v, codes, reservationID := codeFixture(t)
	require.NoError(t, v.Issue(context.Background(), reservationID, ownerUserID))

	assert.ErrorIs(t, v.Validate(context.Background(), reservationID, "000000"), ErrCodeMismatch)
	assert.Equal(t, model.ApprovedSent, w.store.state.reservations[reservationID].ApprovedStatus)

	// the live code still works after a failed attempt
	require.NoError(t, v.Validate(context.Background(), reservationID, codes.next))
}

func TestReissueSupersedesOldCode(t *testing.T) {
	_, v, codes, reservationID := codeFixture(t)

	require.NoError(t, v.Issue(context.Background(), reservationID, ownerUserID))
	first := codes.next

	codes.next = "654321"
	require.NoError(t, v.Issue(context.Background(), reservationID, ownerUserID))

	assert.ErrorIs(t, v.Validate(context.Background(), reservationID, first), ErrCodeMismatch)
	require.NoError(t, v.Validate(context.Background(), reservationID, "654321"))
}
