package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/internal/models"
)

var (
	tonWalletRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{48}$`)
	cardRe      = regexp.MustCompile(`^\d{16}$`)
)

const (
	minNameLen = 2
	maxNameLen = 50
)

// ValidateName checks display-name length bounds after trimming.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < minNameLen || n > maxNameLen {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// ValidateWallet checks a TON address: exactly 48 base64url characters.
func ValidateWallet(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if !tonWalletRe.MatchString(trimmed) {
		return "", ErrInvalidWallet
	}
	return trimmed, nil
}

// ValidateCard checks a bank card number: 16 digits, spaces allowed in input.
func ValidateCard(card string) (string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(card), " ", "")
	if !cardRe.MatchString(cleaned) {
		return "", ErrInvalidCard
	}
	return cleaned, nil
}

// ValidateRecipient dispatches to the validator for the destination type.
func ValidateRecipient(rt models.RecipientType, value string) (string, error) {
	switch rt {
	case models.RecipientWallet:
		return ValidateWallet(value)
	case models.RecipientCard:
		return ValidateCard(value)
	}
	return "", ErrInvalidWallet
}

// ParseAmount parses a user-entered amount. Comma decimal separators
// are accepted; the value must be strictly positive.
func ParseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// ParseSignedDelta parses a balance adjustment with a mandatory
// leading sign, for example "+40" or "-12.5". A bare number is
// rejected so an adjustment can never be typed by accident.
func ParseSignedDelta(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '+' && trimmed[0] != '-') {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := ParseAmount(trimmed[1:])
	if err != nil {
		return decimal.Zero, err
	}
	if trimmed[0] == '-' {
		amount = amount.Neg()
	}
	return amount, nil
}

// CurrencyFor returns the settlement currency of a destination type.
func CurrencyFor(rt models.RecipientType) string {
	if rt == models.RecipientCard {
		return "RUB"
	}
	return "TON"
}
