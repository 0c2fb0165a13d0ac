package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/p2pbot/internal/models"
)

// UpsertVipGrant creates or extends a VIP grant.
func (p *Postgres) UpsertVipGrant(ctx context.Context, g *models.VipGrant) error {
	const q = `
		INSERT INTO vip_grants (user_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET expires_at = EXCLUDED.expires_at`
	if _, err := p.db.ExecContext(ctx, q, g.UserID, g.ExpiresAt); err != nil {
		return fmt.Errorf("upsert vip grant %d: %w", g.UserID, err)
	}
	return nil
}

// GetVipGrant fetches the grant for a user, ErrNotFound if none.
func (p *Postgres) GetVipGrant(ctx context.Context, userID int64) (*models.VipGrant, error) {
	var g models.VipGrant
	err := p.db.GetContext(ctx, &g, `SELECT * FROM vip_grants WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vip grant %d: %w", userID, err)
	}
	return &g, nil
}

// DeleteVipGrant revokes VIP access immediately.
func (p *Postgres) DeleteVipGrant(ctx context.Context, userID int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM vip_grants WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete vip grant %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
