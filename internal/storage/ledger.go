package storage

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/core/logger"
)

// ReserveBalance atomically debits amount from the user's balance.
// The guard in the WHERE clause makes overdraft impossible even under
// concurrent requests: either the whole debit applies or nothing does.
// Returns false when the balance was insufficient.
func (p *Postgres) ReserveBalance(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error) {
	const q = `
		UPDATE users
		SET balance = balance - $1
		WHERE user_id = $2 AND balance >= $1`
	res, err := p.db.ExecContext(ctx, q, amount, userID)
	if err != nil {
		return false, fmt.Errorf("reserve balance user=%d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve balance user=%d: %w", userID, err)
	}
	logger.Debug(ctx, "db", "ledger.reserve",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("amount", amount.String()),
		slog.Bool("applied", n == 1),
	)
	return n == 1, nil
}

// CreditBalance adds amount to the user's balance. Used both for
// confirmed top-ups and for refunds of declined withdrawals.
func (p *Postgres) CreditBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1 WHERE user_id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("credit balance user=%d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	logger.Debug(ctx, "db", "ledger.credit",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("amount", amount.String()),
	)
	return nil
}
