package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/p2pbot/internal/models"
)

func TestValidateWallet(t *testing.T) {
	valid := "abcdefghijklmnopqrstuvwxyzABCDEF0123456789_-abcd"
	got, err := ValidateWallet("  " + valid + "  ")
	require.NoError(t, err)
	assert.Equal(t, valid, got)

	for _, bad := range []string{
		"",
		"short",
		valid + "x",       // 49 chars
		valid[:47],        // 47 chars
		valid[:47] + "!",  // forbidden character
		valid[:46] + " a", // inner space
	} {
		_, err := ValidateWallet(bad)
		assert.ErrorIs(t, err, ErrInvalidWallet, "input %q", bad)
	}
}

func TestValidateCard(t *testing.T) {
	got, err := ValidateCard("1234 5678 9012 3456")
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", got)

	for _, bad := range []string{"", "1234", "12345678901234567", "1234abcd90123456"} {
		_, err := ValidateCard(bad)
		assert.ErrorIs(t, err, ErrInvalidCard, "input %q", bad)
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 12,50 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("12.5")))

	for _, bad := range []string{"", "abc", "0", "-5", "1.2.3"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestParseSignedDelta(t *testing.T) {
	delta, err := ParseSignedDelta("+40")
	require.NoError(t, err)
	assert.True(t, delta.Equal(dec("40")))

	delta, err = ParseSignedDelta(" -12,5 ")
	require.NoError(t, err)
	assert.True(t, delta.Equal(dec("-12.5")))

	// the sign is mandatory, a bare number is not an adjustment
	for _, bad := range []string{"", "40", "+", "-", "+0", "-0", "+abc"} {
		_, err := ParseSignedDelta(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestCurrencyFor(t *testing.T) {
	assert.Equal(t, "TON", CurrencyFor(models.RecipientWallet))
	assert.Equal(t, "RUB", CurrencyFor(models.RecipientCard))
}
