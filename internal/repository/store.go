package repository

import (
	"context"
	"database/sql"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/model"
)

// SQLStore opens the checkout transaction boundary. Everything the
// checkout writes (cart, visitors, reservations, payment) goes through
// one *sql.Tx so a gateway failure unwinds all of it.
type SQLStore struct{ DB *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

// InTx runs fn inside a transaction; any error rolls back.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type sqlTx struct{ tx *sql.Tx }

// FreeCabinetsForUpdate first locks every active cabinet row of the
// unit, then computes the free subset. Locking the full set rather
// than the filtered result means two checkouts for the same unit
// always collide on the same lock, whatever ranges they ask for, so
// the free-set computation below is serialized per unit.
func (t *sqlTx) FreeCabinetsForUpdate(ctx context.Context, unitID uint64, rng model.DateRange) ([]model.Cabinet, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id FROM cabinets WHERE lodging_unit_id=? AND is_deleted=0 ORDER BY position FOR UPDATE",
		unitID)
	if err != nil {
		return nil, err
	}
	// Drain so the lock query completes before the next statement.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	free, err := t.tx.QueryContext(ctx, freeCabinetsQuery,
		unitID, rng.EndString(), rng.StartString())
	if err != nil {
		return nil, err
	}
	return scanCabinets(free)
}

// CabinetFree reports whether one specific cabinet can take the range.
// A missing or soft-deleted cabinet reports false rather than an
// error; the caller turns that into a conflict.
func (t *sqlTx) CabinetFree(ctx context.Context, cabinetID uint64, rng model.DateRange) (bool, error) {
	var free bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT NOT EXISTS (
		     SELECT 1 FROM reservations o
		     WHERE o.cabinet_id = c.id AND o.is_deleted = 0
		       AND (o.closed_for_repair = 1 OR (o.start_date < ? AND o.end_date > ?)))
		 FROM cabinets c WHERE c.id=? AND c.is_deleted=0 FOR UPDATE`,
		rng.EndString(), rng.StartString(), cabinetID).Scan(&free)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return free, nil
}

func (t *sqlTx) CreateCart(ctx context.Context, cart *model.Cart) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO carts (public_id, tour_id, lodging_unit_id, user_id, start_date, end_date, visitor_count, amount_minor, status)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		cart.PublicID, cart.TourID, cart.UnitID, cart.UserID,
		cart.Range.StartString(), cart.Range.EndString(),
		cart.VisitorCount, cart.AmountMinor, cart.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cart.ID = uint64(id)
	return nil
}

func (t *sqlTx) AddVisitors(ctx context.Context, cartID uint64, visitors []model.Visitor) error {
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO cart_visitors (cart_id, first_name, last_name, birthday, citizenship, doc_type, doc_number, gender)
		 VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range visitors {
		if _, err := stmt.ExecContext(ctx, cartID,
			v.FirstName, v.LastName, v.Birthday, v.Citizenship,
			v.DocType, v.DocNumber, v.Gender); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) CreateReservations(ctx context.Context, rows []*model.Reservation) error {
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO reservations
		 (lodging_unit_id, cabinet_id, start_date, end_date, reservator_id, full_name, phone, email, amount_minor, approved_status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, rv := range rows {
		res, err := stmt.ExecContext(ctx, rv.UnitID, rv.CabinetID,
			rv.Range.StartString(), rv.Range.EndString(),
			rv.ReservatorID, rv.FullName, rv.Phone, rv.Email,
			rv.AmountMinor, rv.ApprovedStatus)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rv.ID = uint64(id)
	}
	return nil
}

func (t *sqlTx) CreatePayment(ctx context.Context, p *model.Payment, reservationIDs []uint64) error {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO payments (user_id, cart_id, amount_minor, status, redirect_url) VALUES (?,?,?,?,?)",
		p.UserID, p.CartID, p.AmountMinor, p.Status, p.RedirectURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	for _, rid := range reservationIDs {
		if _, err := t.tx.ExecContext(ctx,
			"UPDATE reservations SET payment_id=? WHERE id=?", p.ID, rid); err != nil {
			return err
		}
	}
	return nil
}
