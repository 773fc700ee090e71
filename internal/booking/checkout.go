package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mtourkz/booking-api/internal/model"
)

// Service orchestrates availability queries and the checkout state
// machine: Draft -> Validating -> {Failed, AwaitingPayment} ->
// {Confirmed, Cancelled}. Validation, cart/reservation writes and the
// gateway call all happen inside one store transaction, so a gateway
// failure unwinds the provisional rows and no dangling unpaid
// reservation survives a failed call.
type Service struct {
	store    Store
	reader   AvailabilityReader
	catalog  Catalog
	gateway  Gateway
	settle   SettlementStore
	cancel   CancelStore
	notifier Notifier
	log      *zap.Logger
}

// NewService wires the checkout orchestrator. All dependencies must be
// non-nil except notifier, which may be nil to disable notifications.
func NewService(store Store, reader AvailabilityReader, catalog Catalog, gateway Gateway, settle SettlementStore, cancel CancelStore, notifier Notifier, log *zap.Logger) *Service {
	if store == nil || reader == nil || catalog == nil || gateway == nil || settle == nil || cancel == nil {
		panic("nil dependency passed to booking.NewService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		reader:   reader,
		catalog:  catalog,
		gateway:  gateway,
		settle:   settle,
		cancel:   cancel,
		notifier: notifier,
		log:      log,
	}
}

// FreeCount returns how many cabinets of the unit are free across the
// range. It is a plain read; no locks are taken.
func (s *Service) FreeCount(ctx context.Context, unitID uint64, r model.DateRange) (int, error) {
	if _, err := s.catalog.LodgingUnit(ctx, unitID); err != nil {
		return 0, err
	}
	free, err := s.reader.FreeCabinets(ctx, unitID, r)
	if err != nil {
		return 0, err
	}
	return len(free), nil
}

// CheckoutInput carries one checkout attempt.
type CheckoutInput struct {
	TourID             uint64
	UnitID             uint64
	UserID             uint64
	Range              model.DateRange
	Visitors           []model.Visitor
	PreferredCabinetID uint64
	Contact            Contact
	FullName           string
}

// CheckoutResult reports the committed attempt.
type CheckoutResult struct {
	CartID         uint64
	CartPublicID   string
	ReservationIDs []uint64
	CabinetIDs     []uint64
	AmountMinor    int64
	RedirectURL    string
}

// Checkout runs the whole attempt. The capacity decision and the
// reservation inserts execute under the cabinet row locks taken by
// FreeCabinetsForUpdate, so two concurrent checkouts for the same unit
// and overlapping range cannot both observe the same cabinet as free.
// The gateway call runs after the provisional writes and before
// commit; returning its error rolls the transaction back.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Visitors) == 0 {
		return nil, fmt.Errorf("%w: visitor list is empty", ErrValidation)
	}
	unit, err := s.catalog.LodgingUnit(ctx, in.UnitID)
	if err != nil {
		return nil, err
	}

	var res CheckoutResult
	err = s.store.InTx(ctx, func(tx Tx) error {
		cabinets, err := allocate(ctx, tx, unit, in.Range, len(in.Visitors), in.PreferredCabinetID)
		if err != nil {
			return err
		}

		nights := int64(in.Range.Nights())
		amount := nights * unit.PriceMinor * int64(len(cabinets))

		cart := &model.Cart{
			PublicID:     uuid.NewString(),
			TourID:       in.TourID,
			UnitID:       in.UnitID,
			UserID:       in.UserID,
			Range:        in.Range,
			VisitorCount: len(in.Visitors),
			AmountMinor:  amount,
			Status:       model.CheckoutAwaitingPayment,
		}
		if err := tx.CreateCart(ctx, cart); err != nil {
			return err
		}
		if err := tx.AddVisitors(ctx, cart.ID, in.Visitors); err != nil {
			return err
		}

		perCabinet := amount / int64(len(cabinets))
		userID := in.UserID
		rows := make([]*model.Reservation, 0, len(cabinets))
		for _, cab := range cabinets {
			rows = append(rows, &model.Reservation{
				UnitID:         in.UnitID,
				CabinetID:      cab.ID,
				Range:          in.Range,
				ReservatorID:   &userID,
				FullName:       in.FullName,
				Phone:          in.Contact.Phone,
				Email:          in.Contact.Email,
				AmountMinor:    perCabinet,
				ApprovedStatus: model.ApprovedNotSent,
			})
		}
		if err := tx.CreateReservations(ctx, rows); err != nil {
			return err
		}

		// Suspension point: external I/O inside the transaction. The
		// gateway client carries a short timeout, so the outcome is
		// always definite and the transaction never hangs open.
		redirect, err := s.gateway.CreatePayment(ctx, amount, cart.PublicID, in.Contact)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGateway, err)
		}

		ids := make([]uint64, 0, len(rows))
		cabIDs := make([]uint64, 0, len(rows))
		for i, row := range rows {
			ids = append(ids, row.ID)
			cabIDs = append(cabIDs, cabinets[i].ID)
		}
		p := &model.Payment{
			UserID:      in.UserID,
			CartID:      cart.ID,
			AmountMinor: amount,
			Status:      model.PaymentNotPaid,
			RedirectURL: &redirect,
		}
		if err := tx.CreatePayment(ctx, p, ids); err != nil {
			return err
		}

		res = CheckoutResult{
			CartID:         cart.ID,
			CartPublicID:   cart.PublicID,
			ReservationIDs: ids,
			CabinetIDs:     cabIDs,
			AmountMinor:    amount,
			RedirectURL:    redirect,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, in.UserID, "Your booking request was accepted",
		"Your booking request was accepted, please complete the payment within 10 minutes.")

	s.log.Info("checkout accepted",
		zap.Uint64("cart_id", res.CartID),
		zap.Uint64("unit_id", in.UnitID),
		zap.Uint64("user_id", in.UserID),
		zap.Int64("amount_minor", res.AmountMinor),
		zap.Int("cabinets", len(res.CabinetIDs)),
	)
	return &res, nil
}

// ConfirmPayment applies an authenticated gateway callback. Replays
// with the same terminal status are no-ops: the settlement store
// reports changed=false and no second notification goes out.
func (s *Service) ConfirmPayment(ctx context.Context, cartPublicID string, paid bool) error {
	changed, userID, err := s.settle.SettleByCart(ctx, cartPublicID, paid)
	if err != nil {
		return err
	}
	if !changed {
		s.log.Info("payment callback replay ignored", zap.String("cart", cartPublicID))
		return nil
	}
	if paid {
		s.notify(ctx, userID, "Payment received", "Your reservation is confirmed. Thank you!")
	}
	s.log.Info("payment settled",
		zap.String("cart", cartPublicID),
		zap.Bool("paid", paid),
	)
	return nil
}

// Cancel is the explicit user cancellation of an unpaid reservation.
func (s *Service) Cancel(ctx context.Context, reservationID, userID uint64) error {
	return s.cancel.CancelReservation(ctx, reservationID, userID)
}

// notify delivers through the messaging collaborator. Delivery failure
// is logged and swallowed; it must never fail a committed booking.
func (s *Service) notify(ctx context.Context, userID uint64, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, subject, body); err != nil {
		s.log.Warn("notification delivery failed",
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
	}
}
