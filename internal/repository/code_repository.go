package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"math/big"
)

// CodeRepo stores confirmation codes. At most one live code exists per
// user and purpose; regeneration always starts with a delete so an old
// code can never race a new one.
type CodeRepo struct{ DB *sql.DB }

func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{DB: db} }

// Regenerate replaces any live code for user+purpose with a fresh
// 6-digit value and returns it.
func (r *CodeRepo) Regenerate(ctx context.Context, userID uint64, purpose string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM confirmation_codes WHERE user_id=? AND purpose=?",
		userID, purpose); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO confirmation_codes (user_id, purpose, code) VALUES (?,?,?)",
		userID, purpose, code); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return code, nil
}

// Consume checks the submitted code. A match deletes the row (codes
// are single use) and returns true; a mismatch leaves it live.
func (r *CodeRepo) Consume(ctx context.Context, userID uint64, purpose, code string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM confirmation_codes WHERE user_id=? AND purpose=? AND code=?",
		userID, purpose, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// randomCode draws a uniform 6-digit code from crypto/rand.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
