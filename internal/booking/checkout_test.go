package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtourkz/booking-api/internal/model"
)

func TestCheckoutHappyPath(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 4, 150_00)
	r := mustRange(t, "2026-07-01", "2026-07-04") // 3 nights

	res, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID:   1,
		UnitID:   1,
		UserID:   42,
		Range:    r,
		Visitors: visitors(2),
		Contact:  Contact{Email: "guest@example.kz", Phone: "+77010000000"},
		FullName: "Guest Test",
	})
	require.NoError(t, err)

	// 3 nights x 15000 x 2 cabinets
	assert.Equal(t, int64(3*150_00*2), res.AmountMinor)
	assert.Len(t, res.ReservationIDs, 2)
	assert.NotEmpty(t, res.CartPublicID)
	assert.Contains(t, res.RedirectURL, res.CartPublicID)

	st := w.store.state
	require.Len(t, st.carts, 1)
	for _, cart := range st.carts {
		assert.Equal(t, model.CheckoutAwaitingPayment, cart.Status)
		assert.Equal(t, 2, cart.VisitorCount)
		assert.Len(t, st.visitors[cart.ID], 2)
	}
	require.Len(t, st.payments, 1)
	for _, p := range st.payments {
		assert.Equal(t, model.PaymentNotPaid, p.Status)
		assert.Equal(t, res.AmountMinor, p.AmountMinor)
	}
	for _, id := range res.ReservationIDs {
		rv := st.reservations[id]
		require.NotNil(t, rv)
		assert.False(t, rv.Paid)
		assert.Equal(t, model.ApprovedNotSent, rv.ApprovedStatus)
		require.NotNil(t, rv.PaymentID)
		assert.Equal(t, "Guest Test", rv.FullName)
	}

	assert.Equal(t, 1, w.notifier.count())
}

func TestCheckoutGatewayFailureRollsBack(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 4, 150_00)
	w.gateway.fail = errors.New("provider timeout")

	_, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID:   1,
		UnitID:   1,
		UserID:   42,
		Range:    mustRange(t, "2026-07-01", "2026-07-04"),
		Visitors: visitors(2),
	})
	require.ErrorIs(t, err, ErrGateway)

	// nothing committed, nothing notified
	st := w.store.state
	assert.Empty(t, st.carts)
	assert.Empty(t, st.reservations)
	assert.Empty(t, st.payments)
	assert.Equal(t, 0, w.notifier.count())

	// the unit is still fully available afterwards
	free, err := w.svc.FreeCount(context.Background(), 1, mustRange(t, "2026-07-01", "2026-07-04"))
	require.NoError(t, err)
	assert.Equal(t, 4, free)
}

func TestCheckoutValidation(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 4, 150_00)
	r := mustRange(t, "2026-07-01", "2026-07-04")

	_, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 1, UserID: 42, Range: r,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 999, UserID: 42, Range: r, Visitors: visitors(1),
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, w.gateway.calls)
}

func TestCheckoutNoCapacity(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 2, 150_00)

	// 2 free, 2 visitors: the spare rule rejects the attempt
	_, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 1, UserID: 42,
		Range:    mustRange(t, "2026-07-01", "2026-07-04"),
		Visitors: visitors(2),
	})
	require.ErrorIs(t, err, ErrNoCapacity)
	assert.Equal(t, 0, w.gateway.calls)
}

func TestCheckoutConcurrentOverlap(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryResort, 1, 150_00)
	r := mustRange(t, "2026-07-01", "2026-07-04")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.svc.Checkout(context.Background(), CheckoutInput{
				TourID: 1, UnitID: 1, UserID: uint64(100 + i),
				Range:    r,
				Visitors: visitors(1),
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrNoCapacity)
		}
	}
	assert.Equal(t, 1, won, "exactly one checkout wins the cabinet")
	assert.Len(t, w.store.state.reservations, 1)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 3, 150_00)

	res, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 1, UserID: 42,
		Range:    mustRange(t, "2026-07-01", "2026-07-03"),
		Visitors: visitors(1),
	})
	require.NoError(t, err)
	notified := w.notifier.count() // checkout acceptance

	require.NoError(t, w.svc.ConfirmPayment(context.Background(), res.CartPublicID, true))
	for _, id := range res.ReservationIDs {
		assert.True(t, w.store.state.reservations[id].Paid)
	}
	for _, cart := range w.store.state.carts {
		assert.Equal(t, model.CheckoutConfirmed, cart.Status)
	}
	assert.Equal(t, notified+1, w.notifier.count())

	// replay: no state change, no extra notification
	require.NoError(t, w.svc.ConfirmPayment(context.Background(), res.CartPublicID, true))
	assert.Equal(t, notified+1, w.notifier.count())
}

func TestConfirmPaymentFailedStatus(t *testing.T) {
	w := newWorld()
	w.addUnit(1, model.CategoryOrdinary, 3, 150_00)

	res, err := w.svc.Checkout(context.Background(), CheckoutInput{
		TourID: 1, UnitID: 1, UserID: 42,
		Range:    mustRange(t, "2026-07-01", "2026-07-03"),
		Visitors: visitors(1),
	})
	require.NoError(t, err)
	notified := w.notifier.count()

	require.NoError(t, w.svc.ConfirmPayment(context.Background(), res.CartPublicID, false))
	for _, cart := range w.store.state.carts {
		assert.Equal(t, model.CheckoutFailed, cart.Status)
	}
	// failure settlements do not notify the customer
	assert.Equal(t, notified, w.notifier.count())
}

func TestConfirmPaymentUnknownCart(t *testing.T) {
	w := newWorld()
	err := w.svc.ConfirmPayment(context.Background(), "no-such-cart", true)
	assert.ErrorIs(t, err, ErrNotFound)
}
