package repository

import (
	"context"
	"database/sql"

	"github.com/mtourkz/booking-api/internal/model"
)

// TourRepo handles venue rows. Tours carry no soft-delete flag; an
// organization retires a venue by hiding or deleting its units.
type TourRepo struct{ DB *sql.DB }

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{DB: db} }

// Create inserts a tour for the given organization and returns its id.
func (r *TourRepo) Create(ctx context.Context, orgID uint64, title, city string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tours (org_id, title, city) VALUES (?,?,?)",
		orgID, title, city)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID loads a single tour.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
	var t model.Tour
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, org_id, title, city, created_at FROM tours WHERE id=?",
		id).Scan(&t.ID, &t.OrgID, &t.Title, &t.City, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOrg returns every tour of one organization, newest first.
func (r *TourRepo) ListByOrg(ctx context.Context, orgID uint64) ([]model.Tour, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, org_id, title, city, created_at FROM tours WHERE org_id=? ORDER BY id DESC",
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tour
	for rows.Next() {
		var t model.Tour
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Title, &t.City, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update renames or moves a tour. Ownership is checked by the caller.
func (r *TourRepo) Update(ctx context.Context, id uint64, title, city string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tours SET title=?, city=? WHERE id=?",
		title, city, id)
	return err
}
