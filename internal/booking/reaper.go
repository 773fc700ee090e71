package booking

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper cancels unpaid reservations once their payment has been
// pending longer than the grace window. It is the sole timeout
// authority for the checkout flow.
type Reaper struct {
	store    ReaperStore
	notifier Notifier
	grace    time.Duration
	log      *zap.Logger
}

// NewReaper builds a reaper with the given grace window (deployments
// run with 10 minutes).
func NewReaper(store ReaperStore, notifier Notifier, grace time.Duration, log *zap.Logger) *Reaper {
	if store == nil {
		panic("nil store passed to booking.NewReaper")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reaper{store: store, notifier: notifier, grace: grace, log: log}
}

// Sweep releases every reservation whose payment is still unpaid past
// the grace window and returns how many were released. Before deleting
// it re-reads the live payment status: if the callback settled the
// payment after the candidate list was built, the reservation is
// marked paid and left active instead of being cancelled. Running
// Sweep twice back to back releases nothing the second time.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-r.grace)
	expired, err := r.store.ExpiredUnpaid(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, e := range expired {
		paid, err := r.store.PaymentPaid(ctx, e.PaymentID)
		if err != nil {
			r.log.Error("reaper: payment re-check failed",
				zap.Uint64("payment_id", e.PaymentID),
				zap.Error(err),
			)
			continue
		}
		if paid {
			// Stale expiry: the callback won the race. Not an error;
			// flip paid and leave the reservation active.
			if err := r.store.MarkReservationPaid(ctx, e.ReservationID); err != nil {
				r.log.Error("reaper: mark paid failed",
					zap.Uint64("reservation_id", e.ReservationID),
					zap.Error(err),
				)
			}
			continue
		}
		if err := r.store.ReleaseReservation(ctx, e.ReservationID); err != nil {
			r.log.Error("reaper: release failed",
				zap.Uint64("reservation_id", e.ReservationID),
				zap.Error(err),
			)
			continue
		}
		released++
		if r.notifier != nil {
			if err := r.notifier.Notify(ctx, e.UserID, "Reservation cancelled",
				"Your reservation was cancelled because the payment was not completed in time."); err != nil {
				r.log.Warn("reaper: notification failed",
					zap.Uint64("user_id", e.UserID),
					zap.Error(err),
				)
			}
		}
	}

	if released > 0 {
		r.log.Info("reaper sweep released reservations", zap.Int("count", released))
	}
	return released, nil
}
