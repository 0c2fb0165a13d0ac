package service

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/core/logger"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// Users manages registration, profile fields, and payout destinations.
type Users struct {
	store storage.Store
}

// NewUsers constructs the user service.
func NewUsers(store storage.Store) *Users {
	return &Users{store: store}
}

// Get returns the registered user or ErrUserNotFound.
func (s *Users) Get(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetUserByTelegramID adapts Get to the shape the telegram helpers expect.
func (s *Users) GetUserByTelegramID(ctx context.Context, userID int64) (*models.User, error) {
	return s.Get(ctx, userID)
}

// IsRegistered reports whether the account has completed registration.
func (s *Users) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	_, err := s.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Register creates the user with a zero balance. Re-registering an
// existing account is a no-op that returns created=false. A non-zero
// referrerID credits the inviter's referral counter, self-referrals
// are ignored.
func (s *Users) Register(ctx context.Context, userID int64, username, name string, referrerID int64) (bool, error) {
	validName, err := ValidateName(name)
	if err != nil {
		return false, err
	}

	if ok, err := s.IsRegistered(ctx, userID); err != nil {
		return false, err
	} else if ok {
		return false, nil
	}

	u := &models.User{
		UserID:   userID,
		Username: username,
		FullName: validName,
		Language: "ru",
		Balance:  decimal.Zero,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return false, fmt.Errorf("register: %w", err)
	}

	if referrerID != 0 && referrerID != userID {
		if err := s.store.IncrementRefCount(ctx, referrerID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn(ctx, "service.users", "user.referral_failed",
				slog.String("status", "error"),
				slog.Int64("user_id", referrerID),
				slog.String("err", err.Error()),
			)
		}
	}

	logger.Info(ctx, "service.users", "user.registered",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("username", username),
	)
	return true, nil
}

// SetName updates the display name after validation.
func (s *Users) SetName(ctx context.Context, userID int64, name string) error {
	valid, err := ValidateName(name)
	if err != nil {
		return err
	}
	return s.mapNotFound(s.store.UpdateFullName(ctx, userID, valid))
}

// SetWallet stores the TON payout address after validation.
func (s *Users) SetWallet(ctx context.Context, userID int64, wallet string) error {
	valid, err := ValidateWallet(wallet)
	if err != nil {
		return err
	}
	if err := s.mapNotFound(s.store.UpdateTonWallet(ctx, userID, valid)); err != nil {
		return err
	}
	logger.Info(ctx, "service.users", "user.wallet_set",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// SetCard stores the bank card number after validation.
func (s *Users) SetCard(ctx context.Context, userID int64, card string) error {
	valid, err := ValidateCard(card)
	if err != nil {
		return err
	}
	if err := s.mapNotFound(s.store.UpdateCardNumber(ctx, userID, valid)); err != nil {
		return err
	}
	logger.Info(ctx, "service.users", "user.card_set",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// SetLanguage stores the preferred interface language.
func (s *Users) SetLanguage(ctx context.Context, userID int64, lang string) error {
	return s.mapNotFound(s.store.UpdateLanguage(ctx, userID, lang))
}

func (s *Users) mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
