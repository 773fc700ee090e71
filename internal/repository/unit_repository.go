package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/mtourkz/booking-api/internal/model"
)

// UnitRepo handles lodging units and the cabinet rows materialized
// under them. Cabinets are created exactly once, alongside the unit,
// and are only ever soft-deleted afterwards.
type UnitRepo struct{ DB *sql.DB }

func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{DB: db} }

const unitColumns = "id, tour_id, title, category, price_minor, place_count, capacity, max_capacity, hidden, is_deleted, created_at"

func scanUnit(row interface{ Scan(...any) error }) (*model.LodgingUnit, error) {
	var u model.LodgingUnit
	err := row.Scan(&u.ID, &u.TourID, &u.Title, &u.Category, &u.PriceMinor,
		&u.PlaceCount, &u.Capacity, &u.MaxCapacity, &u.Hidden, &u.IsDeleted, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Policy = model.ResolvePolicy(u.Category)
	return &u, nil
}

// CreateInput carries the fields needed to create a lodging unit.
type CreateUnitInput struct {
	TourID      uint64
	Title       string
	Category    string
	PriceMinor  int64
	PlaceCount  int
	Capacity    int
	MaxCapacity int
	Hidden      bool
}

// Create inserts the unit and materializes its cabinets, positions
// 1..PlaceCount, in a single transaction. Either everything lands or
// nothing does; a unit without its cabinet rows is unbookable.
func (r *UnitRepo) Create(ctx context.Context, in CreateUnitInput) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO lodging_units (tour_id, title, category, price_minor, place_count, capacity, max_capacity, hidden) VALUES (?,?,?,?,?,?,?,?)",
		in.TourID, in.Title, in.Category, in.PriceMinor, in.PlaceCount, in.Capacity, in.MaxCapacity, in.Hidden)
	if err != nil {
		return 0, err
	}
	unitID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cabinets (lodging_unit_id, position, label) VALUES (?,?,?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for pos := 1; pos <= in.PlaceCount; pos++ {
		if _, err := stmt.ExecContext(ctx, unitID, pos, strconv.Itoa(pos)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(unitID), nil
}

// GetByID loads one unit regardless of visibility; soft-deleted units
// are still not returned.
func (r *UnitRepo) GetByID(ctx context.Context, id uint64) (*model.LodgingUnit, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM lodging_units WHERE id=? AND is_deleted=0", id)
	return scanUnit(row)
}

// ListByTour returns the public catalog view of a tour's units:
// hidden and soft-deleted units are filtered out.
func (r *UnitRepo) ListByTour(ctx context.Context, tourID uint64) ([]model.LodgingUnit, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM lodging_units WHERE tour_id=? AND hidden=0 AND is_deleted=0 ORDER BY id",
		tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LodgingUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update edits the mutable unit fields. PlaceCount is deliberately not
// editable here: the cabinet set is fixed at creation.
func (r *UnitRepo) Update(ctx context.Context, id uint64, title string, priceMinor int64, capacity, maxCapacity int, hidden bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE lodging_units SET title=?, price_minor=?, capacity=?, max_capacity=?, hidden=? WHERE id=? AND is_deleted=0",
		title, priceMinor, capacity, maxCapacity, hidden, id)
	return err
}

// SoftDelete hides a unit permanently. Existing reservations keep
// their rows; only future availability disappears.
func (r *UnitRepo) SoftDelete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE lodging_units SET is_deleted=1 WHERE id=?", id)
	return err
}

// Cabinets returns the active cabinet rows of a unit in position order.
func (r *UnitRepo) Cabinets(ctx context.Context, unitID uint64) ([]model.Cabinet, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, lodging_unit_id, position, label, is_deleted FROM cabinets WHERE lodging_unit_id=? AND is_deleted=0 ORDER BY position",
		unitID)
	if err != nil {
		return nil, err
	}
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
