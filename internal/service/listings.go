package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/m3rciful/p2pbot/core/logger"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// Listings maintains the admin-curated P2P board: currency pairs and
// the buy/sell listings published under them.
type Listings struct {
	store storage.Store
}

// NewListings constructs the listing service.
func NewListings(store storage.Store) *Listings {
	return &Listings{store: store}
}

// Pairs returns all currency pairs ordered by name.
func (s *Listings) Pairs(ctx context.Context) ([]*models.Pair, error) {
	return s.store.ListPairs(ctx)
}

// AddPair creates a currency pair. Names are trimmed and upper-cased
// so TON_RUB and ton_rub are the same pair.
func (s *Listings) AddPair(ctx context.Context, name string) (*models.Pair, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return nil, ErrPairNotFound
	}
	if _, err := s.store.GetPairByName(ctx, normalized); err == nil {
		return nil, ErrPairExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	pair, err := s.store.CreatePair(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("add pair: %w", err)
	}
	logger.Info(ctx, "service.listings", "pair.added",
		slog.String("status", "ok"),
		slog.String("pair", pair.Name),
	)
	return pair, nil
}

// RemovePair deletes a pair and, via the schema, all its listings.
func (s *Listings) RemovePair(ctx context.Context, name string) error {
	pair, err := s.GetPair(ctx, name)
	if err != nil {
		return err
	}
	if err := s.store.DeletePair(ctx, pair.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrPairNotFound
		}
		return err
	}
	logger.Info(ctx, "service.listings", "pair.removed",
		slog.String("status", "ok"),
		slog.String("pair", pair.Name),
	)
	return nil
}

// GetPair resolves a pair by name, case-insensitive.
func (s *Listings) GetPair(ctx context.Context, name string) (*models.Pair, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	pair, err := s.store.GetPairByName(ctx, normalized)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPairNotFound
	}
	return pair, err
}

// Board returns the listings of a pair split into sell and buy sides.
func (s *Listings) Board(ctx context.Context, pairName string) (sell, buy []*models.Listing, err error) {
	pair, err := s.GetPair(ctx, pairName)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.store.ListListings(ctx, pair.ID)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range all {
		if l.Action == models.ListingSell {
			sell = append(sell, l)
		} else {
			buy = append(buy, l)
		}
	}
	return sell, buy, nil
}

// AddListing publishes a listing under the named pair.
func (s *Listings) AddListing(ctx context.Context, pairName, nickname, price, limit string, action models.ListingAction) (*models.Listing, error) {
	pair, err := s.GetPair(ctx, pairName)
	if err != nil {
		return nil, err
	}
	listing := &models.Listing{
		PairID:   pair.ID,
		Nickname: strings.TrimSpace(nickname),
		Price:    strings.TrimSpace(price),
		Limit:    strings.TrimSpace(limit),
		Action:   action,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("add listing: %w", err)
	}
	logger.Info(ctx, "service.listings", "listing.added",
		slog.String("status", "ok"),
		slog.String("pair", pair.Name),
		slog.Int64("listing_id", listing.ID),
	)
	return listing, nil
}

// ListingsOf returns all listings of a pair in insertion order.
func (s *Listings) ListingsOf(ctx context.Context, pairName string) ([]*models.Listing, error) {
	pair, err := s.GetPair(ctx, pairName)
	if err != nil {
		return nil, err
	}
	return s.store.ListListings(ctx, pair.ID)
}

// RemoveListing deletes a single listing by id.
func (s *Listings) RemoveListing(ctx context.Context, id int64) error {
	if err := s.store.DeleteListing(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	logger.Info(ctx, "service.listings", "listing.removed",
		slog.String("status", "ok"),
		slog.Int64("listing_id", id),
	)
	return nil
}
