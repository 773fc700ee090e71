package repository

import (
	"context"
	"database/sql"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/model"
)

// PaymentRepo applies gateway callbacks and serves payment lookups.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// SettleByCart applies one callback for the cart identified by its
// public id. Idempotency is keyed on the cart state machine: only a
// cart still AWAITING_PAYMENT settles, so replays and late callbacks
// against a terminal cart (confirmed, failed, cancelled or reaped)
// report changed=false and write nothing.
func (r *PaymentRepo) SettleByCart(ctx context.Context, cartPublicID string, paid bool) (bool, uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var (
		paymentID  uint64
		cartID     uint64
		userID     uint64
		cartStatus string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT p.id, p.cart_id, p.user_id, c.status
		 FROM payments p JOIN carts c ON c.id = p.cart_id
		 WHERE c.public_id = ? FOR UPDATE`,
		cartPublicID).Scan(&paymentID, &cartID, &userID, &cartStatus)
	if err == sql.ErrNoRows {
		return false, 0, booking.ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}

	if cartStatus != model.CheckoutAwaitingPayment {
		if err := tx.Commit(); err != nil {
			return false, 0, err
		}
		committed = true
		return false, userID, nil
	}

	target := model.PaymentNotPaid
	newStatus := model.CheckoutFailed
	if paid {
		target = model.PaymentPaid
		newStatus = model.CheckoutConfirmed
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE payments SET status=? WHERE id=?", target, paymentID); err != nil {
		return false, 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET paid=? WHERE payment_id=? AND is_deleted=0",
		paid, paymentID); err != nil {
		return false, 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE carts SET status=? WHERE id=?", newStatus, cartID); err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	committed = true
	return true, userID, nil
}

// PaymentByCart returns the payment row of a cart by public id.
func (r *PaymentRepo) PaymentByCart(ctx context.Context, cartPublicID string) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.cart_id, p.amount_minor, p.status, p.redirect_url, p.created_at
		 FROM payments p JOIN carts c ON c.id = p.cart_id
		 WHERE c.public_id = ?`,
		cartPublicID).Scan(&p.ID, &p.UserID, &p.CartID, &p.AmountMinor, &p.Status, &p.RedirectURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
