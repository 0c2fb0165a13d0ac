package service

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/core/logger"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// Vip manages time-limited grants that let a user adjust their own
// balance with /balance ±N. Grants are admin-issued and expire on
// their own; expired rows are treated as absent.
type Vip struct {
	store storage.Store
	now   func() time.Time
}

// NewVip constructs the VIP service.
func NewVip(store storage.Store) *Vip {
	return &Vip{store: store, now: time.Now}
}

// Grant issues or extends VIP access for the given duration.
func (s *Vip) Grant(ctx context.Context, userID int64, d time.Duration) (time.Time, error) {
	expires := s.now().Add(d)
	g := &models.VipGrant{UserID: userID, ExpiresAt: expires}
	if err := s.store.UpsertVipGrant(ctx, g); err != nil {
		return time.Time{}, err
	}
	logger.Info(ctx, "service.vip", "vip.granted",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return expires, nil
}

// Revoke removes VIP access. Revoking a user without a grant is a no-op.
func (s *Vip) Revoke(ctx context.Context, userID int64) error {
	err := s.store.DeleteVipGrant(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "service.vip", "vip.revoked",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// IsActive reports whether the user holds an unexpired grant.
func (s *Vip) IsActive(ctx context.Context, userID int64) (bool, error) {
	g, err := s.store.GetVipGrant(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return g.Active(s.now()), nil
}

// AdjustOwnBalance applies a signed delta to the caller's balance and
// returns the new value. Requires an active grant; a negative delta
// that would overdraw is rejected through the same guarded debit the
// withdrawal flow uses, so the balance can never go below zero.
func (s *Vip) AdjustOwnBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	active, err := s.IsActive(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !active {
		return decimal.Zero, ErrNotAuthorized
	}
	if delta.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}

	if delta.IsPositive() {
		if err := s.store.CreditBalance(ctx, userID, delta); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return decimal.Zero, ErrUserNotFound
			}
			return decimal.Zero, err
		}
	} else {
		applied, err := s.store.ReserveBalance(ctx, userID, delta.Neg())
		if err != nil {
			return decimal.Zero, err
		}
		if !applied {
			// Either the user does not exist or the debit is uncovered.
			if _, err := s.store.GetUser(ctx, userID); errors.Is(err, storage.ErrNotFound) {
				return decimal.Zero, ErrUserNotFound
			}
			return decimal.Zero, ErrInsufficientFunds
		}
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	logger.Info(ctx, "service.vip", "vip.balance_adjusted",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("amount", delta.String()),
		slog.String("balance", u.Balance.String()),
	)
	return u.Balance, nil
}
