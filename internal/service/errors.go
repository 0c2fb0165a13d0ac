// Package service holds the business rules of the exchange bot:
// registration, payout destinations, deal lifecycle, the P2P board,
// and VIP grants. Handlers translate these errors into user-facing
// messages; the rules themselves live here.
package service

import "errors"

var (
	// ErrUserNotFound means the Telegram account has not registered yet.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientFunds means the withdrawal amount exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyProcessed means the deal left the pending state earlier.
	ErrAlreadyProcessed = errors.New("deal already processed")
	// ErrPairExists means a currency pair with that name already exists.
	ErrPairExists = errors.New("pair already exists")
	// ErrPairNotFound means the named currency pair does not exist.
	ErrPairNotFound = errors.New("pair not found")
	// ErrListingNotFound means the referenced listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrNotAuthorized means the caller lacks an active VIP grant.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidName means the display name fails length rules.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidWallet means the TON address fails format rules.
	ErrInvalidWallet = errors.New("invalid wallet address")
	// ErrInvalidCard means the card number fails format rules.
	ErrInvalidCard = errors.New("invalid card number")
	// ErrInvalidAmount means the amount is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")
)
