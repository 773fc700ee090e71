package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/mtourkz/booking-api/internal/model"
)

// CodeVerifier issues and validates the 6-digit one-time codes gating
// reservation approval. Issuing a new code supersedes any live code of
// the same purpose; successful validation consumes the code. There is
// no server-side TTL or lockout beyond re-issuance.
type CodeVerifier struct {
	codes        CodeStore
	reservations ApprovalStore
	owners       OwnershipStore
	notifier     Notifier
	log          *zap.Logger
}

// NewCodeVerifier wires the verifier.
func NewCodeVerifier(codes CodeStore, reservations ApprovalStore, owners OwnershipStore, notifier Notifier, log *zap.Logger) *CodeVerifier {
	if codes == nil || reservations == nil || owners == nil {
		panic("nil store passed to booking.NewCodeVerifier")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CodeVerifier{codes: codes, reservations: reservations, owners: owners, notifier: notifier, log: log}
}

// Issue regenerates the activation code for the reservation's
// principal, dispatches it through the messaging collaborator and
// flips the reservation's approved_status to sent. Only the user whose
// organization owns the reservation's unit may issue; anyone else gets
// ErrForbidden. It returns ErrNotFound when the reservation does not
// exist or has no reservator account to deliver to.
func (v *CodeVerifier) Issue(ctx context.Context, reservationID, issuerID uint64) error {
	res, err := v.reservations.Reservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := v.owners.OwnsUnit(ctx, issuerID, res.UnitID); err != nil {
		return err
	}
	if res.ReservatorID == nil {
		return ErrNotFound
	}
	code, err := v.codes.Regenerate(ctx, *res.ReservatorID, model.CodePurposeActivation)
	if err != nil {
		return err
	}
	if v.notifier != nil {
		if err := v.notifier.Notify(ctx, *res.ReservatorID, "Confirmation code",
			"Confirmation code: "+code); err != nil {
			v.log.Warn("code dispatch failed",
				zap.Uint64("reservation_id", reservationID),
				zap.Error(err),
			)
		}
	}
	return v.reservations.SetApprovedStatus(ctx, reservationID, model.ApprovedSent)
}

// Validate compares the submitted code against the live one. On match
// the code is consumed and the reservation approved; on mismatch the
// code stays live for a retry and ErrCodeMismatch is returned.
func (v *CodeVerifier) Validate(ctx context.Context, reservationID uint64, submitted string) error {
	res, err := v.reservations.Reservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.ReservatorID == nil {
		return ErrNotFound
	}
	ok, err := v.codes.Consume(ctx, *res.ReservatorID, model.CodePurposeActivation, submitted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeMismatch
	}
	return v.reservations.SetApprovedStatus(ctx, reservationID, model.ApprovedApproved)
}
