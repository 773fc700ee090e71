package booking

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtourkz/booking-api/internal/model"
)

func TestAllocateMultiPolicyKeepsSpare(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryOrdinary, 5, 100_00)
	r := mustRange(t, "2026-07-01", "2026-07-04")
	tx := &memTx{state: w.store.state}

	// 5 free, 4 visitors: 5 > 4 passes, positions 1..4 consumed
	got, err := allocate(context.Background(), tx, unit, r, 4, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, cab := range got {
		assert.Equal(t, i+1, cab.Position)
	}

	// 5 free, 5 visitors: equal is not enough
	_, err = allocate(context.Background(), tx, unit, r, 5, 0)
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestAllocateSinglePolicyTakesOneCabinet(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryResort, 3, 100_00)
	r := mustRange(t, "2026-07-01", "2026-07-03")
	tx := &memTx{state: w.store.state}

	// the whole group shares one cabinet regardless of size
	got, err := allocate(context.Background(), tx, unit, r, 7, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Position)
}

func TestAllocateSinglePolicyNoneFree(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryResort, 1, 100_00)
	r := mustRange(t, "2026-07-01", "2026-07-03")

	// occupy the only cabinet
	w.store.state.reservations[99] = &model.Reservation{
		ID:        99,
		UnitID:    1,
		CabinetID: w.store.state.cabinets[0].ID,
		Range:     r,
	}
	tx := &memTx{state: w.store.state}

	_, err := allocate(context.Background(), tx, unit, r, 1, 0)
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestAllocatePreferredCabinet(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryOrdinary, 3, 100_00)
	r := mustRange(t, "2026-07-01", "2026-07-05")
	second := w.store.state.cabinets[1].ID
	tx := &memTx{state: w.store.state}

	got, err := allocate(context.Background(), tx, unit, r, 2, second)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second, got[0].ID)
}

func TestAllocatePreferredCabinetTaken(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryOrdinary, 3, 100_00)
	r := mustRange(t, "2026-07-01", "2026-07-05")
	second := w.store.state.cabinets[1].ID
	w.store.state.reservations[99] = &model.Reservation{
		ID:        99,
		UnitID:    1,
		CabinetID: second,
		Range:     mustRange(t, "2026-07-04", "2026-07-06"), // overlaps by one night
	}
	tx := &memTx{state: w.store.state}

	_, err := allocate(context.Background(), tx, unit, r, 1, second)
	var taken *CabinetTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, second, taken.CabinetID)
	assert.ErrorIs(t, err, ErrCabinetTaken)
}

func randStay(t *testing.T, rnd *rand.Rand, base time.Time) model.DateRange {
	t.Helper()
	start := base.AddDate(0, 0, rnd.Intn(20))
	r, err := model.NewDateRange(start, start.AddDate(0, 0, 1+rnd.Intn(6)))
	require.NoError(t, err)
	return r
}

func TestAllocateRandomPairsRejectOverlapOnly(t *testing.T) {
	rnd := rand.New(rand.NewSource(7)) // fixed seed keeps failures reproducible
	base := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 250; i++ {
		w := newWorld()
		unit := w.addUnit(1, model.CategoryResort, 1, 100_00)
		tx := &memTx{state: w.store.state}

		first := randStay(t, rnd, base)
		second := randStay(t, rnd, base)

		got, err := allocate(context.Background(), tx, unit, first, 1, 0)
		require.NoError(t, err)
		w.store.state.reservations[99] = &model.Reservation{
			ID:        99,
			UnitID:    1,
			CabinetID: got[0].ID,
			Range:     first,
		}

		_, err = allocate(context.Background(), tx, unit, second, 1, 0)
		if first.Overlaps(second) {
			assert.ErrorIs(t, err, ErrNoCapacity,
				"%s..%s vs %s..%s", first.StartString(), first.EndString(),
				second.StartString(), second.EndString())
		} else {
			assert.NoError(t, err,
				"%s..%s vs %s..%s", first.StartString(), first.EndString(),
				second.StartString(), second.EndString())
		}
	}
}

func TestAllocateBackToBackStaysFree(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryResort, 1, 100_00)
	cab := w.store.state.cabinets[0].ID

	// existing stay ends exactly where the new one starts
	w.store.state.reservations[99] = &model.Reservation{
		ID:        99,
		UnitID:    1,
		CabinetID: cab,
		Range:     mustRange(t, "2026-07-01", "2026-07-04"),
	}
	tx := &memTx{state: w.store.state}

	got, err := allocate(context.Background(), tx, unit,
		mustRange(t, "2026-07-04", "2026-07-07"), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, cab, got[0].ID)
}

func TestAllocateRepairClosureBlocksAnyRange(t *testing.T) {
	w := newWorld()
	unit := w.addUnit(1, model.CategoryResort, 1, 100_00)
	cab := w.store.state.cabinets[0].ID

	// closure rows exclude the cabinet no matter what range they carry
	w.store.state.reservations[99] = &model.Reservation{
		ID:              99,
		UnitID:          1,
		CabinetID:       cab,
		Range:           mustRange(t, "2026-01-01", "2026-01-02"),
		ClosedForRepair: true,
	}
	tx := &memTx{state: w.store.state}

	_, err := allocate(context.Background(), tx, unit,
		mustRange(t, "2026-07-01", "2026-07-03"), 1, 0)
	assert.ErrorIs(t, err, ErrNoCapacity)
}
