// Package models defines the persistent entities of the exchange bot.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipientType distinguishes payout destinations.
type RecipientType string

const (
	RecipientWallet RecipientType = "wallet"
	RecipientCard   RecipientType = "card"
)

// DealKind separates withdrawals (funds reserved up front) from top-ups.
type DealKind string

const (
	DealWithdrawal DealKind = "withdrawal"
	DealTopUp      DealKind = "topup"
)

// DealStatus is the three-state request lifecycle.
type DealStatus string

const (
	DealPending   DealStatus = "pending"
	DealConfirmed DealStatus = "confirmed"
	DealDeclined  DealStatus = "declined"
)

// ListingAction is the direction of a P2P listing.
type ListingAction string

const (
	ListingBuy  ListingAction = "buy"
	ListingSell ListingAction = "sell"
)

// User is a registered bot user. UserID is the Telegram account id.
type User struct {
	UserID     int64           `db:"user_id"`
	Username   string          `db:"username"`
	FullName   string          `db:"full_name"`
	TonWallet  string          `db:"ton_wallet"`
	CardNumber string          `db:"card_number"`
	Language   string          `db:"language"`
	Balance    decimal.Decimal `db:"balance"`
	DealsCount int             `db:"deals_count"`
	RefCount   int             `db:"ref_count"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Pair is an admin-curated currency pair, e.g. TON_RUB. Names are stored upper-cased.
type Pair struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Listing advertises a trader's terms for a pair. Price and Limit are free text.
type Listing struct {
	ID       int64         `db:"id"`
	PairID   int64         `db:"pair_id"`
	Nickname string        `db:"nickname"`
	Price    string        `db:"price"`
	Limit    string        `db:"limit_text"`
	Action   ListingAction `db:"action"`
}

// Deal is a single money-movement request awaiting admin approval.
// Withdrawals have the amount already debited from the sender when pending.
type Deal struct {
	ID            int64           `db:"id"`
	SenderID      int64           `db:"sender_id"`
	Kind          DealKind        `db:"kind"`
	RecipientType RecipientType   `db:"recipient_type"`
	Recipient     string          `db:"recipient"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	Status        DealStatus      `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// VipGrant allows a user to self-mutate balance via /balance until ExpiresAt.
type VipGrant struct {
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Active reports whether the grant is still valid at the given time.
func (g VipGrant) Active(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}
