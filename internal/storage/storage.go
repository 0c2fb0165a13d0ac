// Package storage implements Postgres persistence for users, deals,
// pairs, listings, and VIP grants on top of sqlx.
package storage

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/internal/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store is the persistence surface consumed by the service layer.
type Store interface {
	// users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateFullName(ctx context.Context, userID int64, name string) error
	UpdateTonWallet(ctx context.Context, userID int64, wallet string) error
	UpdateCardNumber(ctx context.Context, userID int64, card string) error
	UpdateLanguage(ctx context.Context, userID int64, lang string) error
	IncrementRefCount(ctx context.Context, userID int64) error
	IncrementDealsCount(ctx context.Context, userID int64) error
	FindUsersByRecipient(ctx context.Context, rt models.RecipientType, value string) ([]*models.User, error)

	// balance ledger
	ReserveBalance(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error)
	CreditBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// deals
	CreateDeal(ctx context.Context, d *models.Deal) error
	GetDeal(ctx context.Context, id int64) (*models.Deal, error)
	TransitionDeal(ctx context.Context, id int64, from, to models.DealStatus) (bool, error)

	// pairs and listings
	CreatePair(ctx context.Context, name string) (*models.Pair, error)
	GetPairByName(ctx context.Context, name string) (*models.Pair, error)
	ListPairs(ctx context.Context) ([]*models.Pair, error)
	DeletePair(ctx context.Context, id int64) error
	CreateListing(ctx context.Context, l *models.Listing) error
	ListListings(ctx context.Context, pairID int64) ([]*models.Listing, error)
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	DeleteListing(ctx context.Context, id int64) error

	// vip grants
	UpsertVipGrant(ctx context.Context, g *models.VipGrant) error
	GetVipGrant(ctx context.Context, userID int64) (*models.VipGrant, error)
	DeleteVipGrant(ctx context.Context, userID int64) error
}

// Postgres is the sqlx-backed Store implementation.
type Postgres struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)
