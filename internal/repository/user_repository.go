package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mtourkz/booking-api/internal/model"
	"github.com/mtourkz/booking-api/internal/utils"
)

// UserRepo persists authentication accounts and their one-to-one
// organization profiles.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The email is normalized to
// lower case; a duplicate yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, role, fullName, phone string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, full_name, phone) VALUES (?,?,?,?,?)",
		email, hash, role, fullName, phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,full_name,phone,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.Phone, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,full_name,phone,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.Phone, &u.CreatedAt)
	return u, err
}

// CreateOrganization inserts the partner profile for an ORG user.
func (r *UserRepo) CreateOrganization(ctx context.Context, o *model.Organization) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO organizations (user_id, org_name, bin) VALUES (?,?,?)",
		o.UserID, o.OrgName, o.BIN)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// OrganizationByUser returns the organization profile of the given
// account, or sql.ErrNoRows when the account has none.
func (r *UserRepo) OrganizationByUser(ctx context.Context, userID uint64) (model.Organization, error) {
	var o model.Organization
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,org_name,bin,moderated FROM organizations WHERE user_id=? LIMIT 1",
		userID).Scan(&o.ID, &o.UserID, &o.OrgName, &o.BIN, &o.Moderated)
	return o, err
}

// OwnsUnit reports whether the user's organization owns the tour the
// lodging unit belongs to. It returns ErrForbidden when the walk
// resolves to a different organization and sql.ErrNoRows when the unit
// does not exist.
func (r *UserRepo) OwnsUnit(ctx context.Context, userID, unitID uint64) error {
	const q = `SELECT o.user_id
	           FROM lodging_units u
	           JOIN tours t ON t.id = u.tour_id
	           JOIN organizations o ON o.id = t.org_id
	           WHERE u.id = ?`
	var ownerID uint64
	if err := r.DB.QueryRowContext(ctx, q, unitID).Scan(&ownerID); err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

// OwnsTour is the same ownership walk starting from a tour.
func (r *UserRepo) OwnsTour(ctx context.Context, userID, tourID uint64) error {
	const q = `SELECT o.user_id
	           FROM tours t
	           JOIN organizations o ON o.id = t.org_id
	           WHERE t.id = ?`
	var ownerID uint64
	if err := r.DB.QueryRowContext(ctx, q, tourID).Scan(&ownerID); err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
// Small helper so handlers do not import database/sql everywhere.
func IsNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
