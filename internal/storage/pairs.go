package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/p2pbot/internal/models"
)

// CreatePair inserts a currency pair. Names are expected upper-cased
// by the service layer; duplicates are rejected there too.
func (p *Postgres) CreatePair(ctx context.Context, name string) (*models.Pair, error) {
	var pair models.Pair
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO p2p_pairs (name) VALUES ($1) RETURNING id, name`, name,
	).StructScan(&pair)
	if err != nil {
		return nil, fmt.Errorf("create pair %s: %w", name, err)
	}
	return &pair, nil
}

// GetPairByName resolves a pair by its exact name.
func (p *Postgres) GetPairByName(ctx context.Context, name string) (*models.Pair, error) {
	var pair models.Pair
	err := p.db.GetContext(ctx, &pair, `SELECT * FROM p2p_pairs WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pair %s: %w", name, err)
	}
	return &pair, nil
}

// ListPairs returns all pairs ordered by name.
func (p *Postgres) ListPairs(ctx context.Context) ([]*models.Pair, error) {
	var pairs []*models.Pair
	if err := p.db.SelectContext(ctx, &pairs, `SELECT * FROM p2p_pairs ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	return pairs, nil
}

// DeletePair removes a pair. Listings cascade via the FK.
func (p *Postgres) DeletePair(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM p2p_pairs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pair %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateListing inserts a listing under a pair and fills in its id.
func (p *Postgres) CreateListing(ctx context.Context, l *models.Listing) error {
	const q = `
		INSERT INTO p2p_listings (pair_id, nickname, price, limit_text, action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := p.db.QueryRowxContext(ctx, q,
		l.PairID, l.Nickname, l.Price, l.Limit, l.Action,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("create listing pair=%d: %w", l.PairID, err)
	}
	return nil
}

// ListListings returns the listings of a pair ordered by id.
func (p *Postgres) ListListings(ctx context.Context, pairID int64) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := p.db.SelectContext(ctx, &listings,
		`SELECT * FROM p2p_listings WHERE pair_id = $1 ORDER BY id`, pairID)
	if err != nil {
		return nil, fmt.Errorf("list listings pair=%d: %w", pairID, err)
	}
	return listings, nil
}

// GetListing fetches a listing by id, ErrNotFound if absent.
func (p *Postgres) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	var l models.Listing
	err := p.db.GetContext(ctx, &l, `SELECT * FROM p2p_listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	return &l, nil
}

// DeleteListing removes a single listing.
func (p *Postgres) DeleteListing(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM p2p_listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
