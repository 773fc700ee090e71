package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/model"
)

// freeCabinetsQuery selects the active cabinets of a unit that can take
// a stay over [start, end). Two exclusions apply:
//   - any active closed_for_repair row blocks the cabinet outright,
//     whatever range the closure row carries;
//   - any active booking row overlapping the half-open range blocks it.
//
// Overlap of half-open ranges is o.start < end AND o.end > start, so a
// stay ending on a given day never collides with one starting that day.
const freeCabinetsQuery = `
SELECT c.id, c.lodging_unit_id, c.position, c.label, c.is_deleted
FROM cabinets c
WHERE c.lodging_unit_id = ?
  AND c.is_deleted = 0
  AND NOT EXISTS (
        SELECT 1 FROM reservations o
        WHERE o.cabinet_id = c.id AND o.is_deleted = 0 AND o.closed_for_repair = 1)
  AND NOT EXISTS (
        SELECT 1 FROM reservations o
        WHERE o.cabinet_id = c.id AND o.is_deleted = 0 AND o.closed_for_repair = 0
          AND o.start_date < ? AND o.end_date > ?)
ORDER BY c.position`

const reservationColumns = `id, lodging_unit_id, cabinet_id, start_date, end_date, paid,
 closed_for_repair, reservator_id, full_name, phone, email, amount_minor,
 payment_id, approved_status, is_deleted, created_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	// DATE columns arrive as time.Time because the DSN sets parseTime.
	var (
		rv         model.Reservation
		start, end time.Time
	)
	err := row.Scan(&rv.ID, &rv.UnitID, &rv.CabinetID, &start, &end, &rv.Paid,
		&rv.ClosedForRepair, &rv.ReservatorID, &rv.FullName, &rv.Phone, &rv.Email,
		&rv.AmountMinor, &rv.PaymentID, &rv.ApprovedStatus, &rv.IsDeleted, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	rv.Range = model.DateRange{Start: start.UTC(), End: end.UTC()}
	return &rv, nil
}

func scanCabinets(rows *sql.Rows) ([]model.Cabinet, error) {
	defer rows.Close()
	var out []model.Cabinet
	for rows.Next() {
		var c model.Cabinet
		if err := rows.Scan(&c.ID, &c.UnitID, &c.Position, &c.Label, &c.IsDeleted); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReservationRepo serves every read and write on reservation rows that
// happens outside the checkout transaction: availability queries,
// listings, cancellation, repair closures, the reaper and the
// confirmation-code approval updates.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// FreeCabinets is the lock-free availability read used by the public
// endpoint. It takes no row locks; the count it reports is advisory and
// re-derived under lock at checkout time.
func (r *ReservationRepo) FreeCabinets(ctx context.Context, unitID uint64, rng model.DateRange) ([]model.Cabinet, error) {
	rows, err := r.DB.QueryContext(ctx, freeCabinetsQuery,
		unitID, rng.EndString(), rng.StartString())
	if err != nil {
		return nil, err
	}
	return scanCabinets(rows)
}

// Reservation loads one active reservation or booking.ErrNotFound.
func (r *ReservationRepo) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? AND is_deleted=0", id)
	rv, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// SetApprovedStatus updates the confirmation-code tri-state.
func (r *ReservationRepo) SetApprovedStatus(ctx context.Context, reservationID uint64, status int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET approved_status=? WHERE id=? AND is_deleted=0",
		status, reservationID)
	return err
}

// ListByUser returns the caller's own active reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE reservator_id=? AND is_deleted=0 ORDER BY id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByUnitAndRange is the owner's occupancy view: every active row of
// the unit overlapping the range, repair closures included.
func (r *ReservationRepo) ListByUnitAndRange(ctx context.Context, unitID uint64, rng model.DateRange) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+` FROM reservations
		 WHERE lodging_unit_id=? AND is_deleted=0 AND start_date < ? AND end_date > ?
		 ORDER BY cabinet_id, start_date`,
		unitID, rng.EndString(), rng.StartString())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

// CloseForRepair inserts closure rows for the given cabinets. A closure
// is a reservation row with closed_for_repair=1 and no reservator; it
// removes the cabinet from availability until the row is soft-deleted.
func (r *ReservationRepo) CloseForRepair(ctx context.Context, unitID uint64, cabinetIDs []uint64, rng model.DateRange) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reservations
		 (lodging_unit_id, cabinet_id, start_date, end_date, closed_for_repair, approved_status)
		 VALUES (?,?,?,?,1,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, cid := range cabinetIDs {
		if _, err := stmt.ExecContext(ctx, unitID, cid, rng.StartString(), rng.EndString(), model.ApprovedNotSent); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReopenAfterRepair soft-deletes the active closure rows of the given
// cabinets, returning them to the free pool.
func (r *ReservationRepo) ReopenAfterRepair(ctx context.Context, unitID uint64, cabinetIDs []uint64) error {
	for _, cid := range cabinetIDs {
		_, err := r.DB.ExecContext(ctx,
			"UPDATE reservations SET is_deleted=1 WHERE lodging_unit_id=? AND cabinet_id=? AND closed_for_repair=1 AND is_deleted=0",
			unitID, cid)
		if err != nil {
			return err
		}
	}
	return nil
}

// CancelReservation soft-deletes an unpaid reservation on behalf of its
// owner and moves the linked cart to CANCELLED. The row is locked first
// so a concurrent settlement cannot slip a paid flag underneath the
// delete. Returns ErrForbidden for foreign rows and ErrConflict for
// paid ones.
func (r *ReservationRepo) CancelReservation(ctx context.Context, reservationID, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var (
		reservatorID sql.NullInt64
		paid         bool
		paymentID    sql.NullInt64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT reservator_id, paid, payment_id FROM reservations WHERE id=? AND is_deleted=0 FOR UPDATE",
		reservationID).Scan(&reservatorID, &paid, &paymentID)
	if err == sql.ErrNoRows {
		return booking.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !reservatorID.Valid || uint64(reservatorID.Int64) != userID {
		return ErrForbidden
	}
	if paid {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET is_deleted=1 WHERE id=?", reservationID); err != nil {
		return err
	}
	if paymentID.Valid {
		if _, err := tx.ExecContext(ctx,
			"UPDATE carts SET status=? WHERE id=(SELECT cart_id FROM payments WHERE id=?)",
			model.CheckoutCancelled, paymentID.Int64); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ExpiredUnpaid lists reaper candidates: active, unpaid, non-closure
// reservations whose payment is still unpaid and older than the cutoff.
func (r *ReservationRepo) ExpiredUnpaid(ctx context.Context, cutoff time.Time) ([]booking.ExpiredReservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, p.id, p.cart_id, p.user_id
		 FROM reservations r
		 JOIN payments p ON p.id = r.payment_id
		 WHERE r.is_deleted = 0 AND r.paid = 0 AND r.closed_for_repair = 0
		   AND p.status = ? AND p.created_at < ?`,
		model.PaymentNotPaid, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.ExpiredReservation
	for rows.Next() {
		var e booking.ExpiredReservation
		if err := rows.Scan(&e.ReservationID, &e.PaymentID, &e.CartID, &e.UserID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PaymentPaid re-reads the live payment status for one candidate.
func (r *ReservationRepo) PaymentPaid(ctx context.Context, paymentID uint64) (bool, error) {
	var status int
	err := r.DB.QueryRowContext(ctx,
		"SELECT status FROM payments WHERE id=?", paymentID).Scan(&status)
	if err != nil {
		return false, err
	}
	return status == model.PaymentPaid, nil
}

// ReleaseReservation soft-deletes an expired reservation and cancels
// its cart.
func (r *ReservationRepo) ReleaseReservation(ctx context.Context, reservationID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE reservations SET is_deleted=1 WHERE id=? AND paid=0 AND is_deleted=0",
		reservationID)
	if err != nil {
		return err
	}
	// A settlement that landed after the paid re-check leaves the row
	// alone; the cart must not be cancelled then either.
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET status=? WHERE id = (
		   SELECT p.cart_id FROM payments p
		   JOIN reservations r ON r.payment_id = p.id
		   WHERE r.id = ?)`,
		model.CheckoutCancelled, reservationID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkReservationPaid flips paid on a reservation whose payment turned
// out to be settled between the candidate snapshot and the sweep.
func (r *ReservationRepo) MarkReservationPaid(ctx context.Context, reservationID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET paid=1 WHERE id=? AND is_deleted=0", reservationID)
	return err
}
