package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/m3rciful/p2pbot/core/logger"
	"github.com/m3rciful/p2pbot/internal/models"
)

// CreateUser inserts a new user row. Registration is idempotent at the
// service layer, so a duplicate user_id surfaces as an error here.
func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	const q = `
		INSERT INTO users (user_id, username, full_name, ton_wallet, card_number, language, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := p.db.ExecContext(ctx, q,
		u.UserID, u.Username, u.FullName, u.TonWallet, u.CardNumber, u.Language, u.Balance)
	if err != nil {
		return fmt.Errorf("create user %d: %w", u.UserID, err)
	}
	logger.Debug(ctx, "db", "user.create",
		slog.String("status", "ok"),
		slog.Int64("user_id", u.UserID),
	)
	return nil
}

// GetUser fetches a user by Telegram id, ErrNotFound if unregistered.
func (p *Postgres) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := p.db.GetContext(ctx, &u, `SELECT * FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

// UpdateFullName replaces the display name.
func (p *Postgres) UpdateFullName(ctx context.Context, userID int64, name string) error {
	return p.updateUserField(ctx, userID, "full_name", name)
}

// UpdateTonWallet replaces the payout wallet address.
func (p *Postgres) UpdateTonWallet(ctx context.Context, userID int64, wallet string) error {
	return p.updateUserField(ctx, userID, "ton_wallet", wallet)
}

// UpdateCardNumber replaces the payout card number.
func (p *Postgres) UpdateCardNumber(ctx context.Context, userID int64, card string) error {
	return p.updateUserField(ctx, userID, "card_number", card)
}

// UpdateLanguage stores the preferred interface language code.
func (p *Postgres) UpdateLanguage(ctx context.Context, userID int64, lang string) error {
	return p.updateUserField(ctx, userID, "language", lang)
}

func (p *Postgres) updateUserField(ctx context.Context, userID int64, column, value string) error {
	q := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE user_id = $2`, column)
	res, err := p.db.ExecContext(ctx, q, value, userID)
	if err != nil {
		return fmt.Errorf("update user %d %s: %w", userID, column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementRefCount bumps the referral counter of the inviter.
func (p *Postgres) IncrementRefCount(ctx context.Context, userID int64) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET ref_count = ref_count + 1 WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("increment ref_count %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDealsCount bumps the confirmed-deal counter.
func (p *Postgres) IncrementDealsCount(ctx context.Context, userID int64) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET deals_count = deals_count + 1 WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("increment deals_count %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindUsersByRecipient looks up registered owners of a payout destination.
// The result is ordered by user_id so the first match is deterministic.
func (p *Postgres) FindUsersByRecipient(ctx context.Context, rt models.RecipientType, value string) ([]*models.User, error) {
	var column string
	switch rt {
	case models.RecipientWallet:
		column = "ton_wallet"
	case models.RecipientCard:
		column = "card_number"
	default:
		return nil, fmt.Errorf("find users: unknown recipient type %q", rt)
	}
	q := fmt.Sprintf(`SELECT * FROM users WHERE %s = $1 ORDER BY user_id`, column)
	var users []*models.User
	if err := p.db.SelectContext(ctx, &users, q, value); err != nil {
		return nil, fmt.Errorf("find users by %s: %w", column, err)
	}
	return users, nil
}
