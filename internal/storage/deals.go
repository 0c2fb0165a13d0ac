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

// CreateDeal inserts a pending deal and fills in its assigned id.
func (p *Postgres) CreateDeal(ctx context.Context, d *models.Deal) error {
	const q = `
		INSERT INTO deals (sender_id, kind, recipient_type, recipient, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := p.db.QueryRowxContext(ctx, q,
		d.SenderID, d.Kind, d.RecipientType, d.Recipient, d.Amount, d.Currency, d.Status,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create deal sender=%d: %w", d.SenderID, err)
	}
	logger.Debug(ctx, "db", "deal.create",
		slog.String("status", "ok"),
		slog.Int64("deal_id", d.ID),
		slog.String("deal_kind", string(d.Kind)),
	)
	return nil
}

// GetDeal fetches a deal by id, ErrNotFound if absent.
func (p *Postgres) GetDeal(ctx context.Context, id int64) (*models.Deal, error) {
	var d models.Deal
	err := p.db.GetContext(ctx, &d, `SELECT * FROM deals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal %d: %w", id, err)
	}
	return &d, nil
}

// TransitionDeal moves a deal from one status to another with a
// compare-and-set. A second admin pressing the same button loses the
// race and gets applied=false, which keeps approvals idempotent.
func (p *Postgres) TransitionDeal(ctx context.Context, id int64, from, to models.DealStatus) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE deals SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("transition deal %d to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition deal %d to %s: %w", id, to, err)
	}
	logger.Debug(ctx, "db", "deal.transition",
		slog.String("status", "ok"),
		slog.Int64("deal_id", id),
		slog.String("deal_status", string(to)),
		slog.Bool("applied", n == 1),
	)
	return n == 1, nil
}
