package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/p2pbot/internal/models"
)

const testDepositWallet = "EQDepositWalletAddressForTopUps00000000000000000"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateWithdrawalDebitsOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientWallet,
		"abcdefghijklmnopqrstuvwxyzABCDEF0123456789_-abcd", dec("30"))
	require.NoError(t, err)
	assert.Equal(t, models.DealPending, deal.Status)
	assert.Equal(t, "TON", deal.Currency)

	u, err := store.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(dec("20")), "balance after reserve = %s", u.Balance)
}

func TestCreateWithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "10")
	svc := NewDeals(store, testDepositWallet)

	_, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1234 5678 9012 3456", dec("10.01"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("10")), "failed request must not touch the balance")
}

func TestCreateWithdrawalExactBalanceAllowed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "10")
	svc := NewDeals(store, testDepositWallet)

	_, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1234567890123456", dec("10"))
	require.NoError(t, err)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.IsZero())
}

func TestCreateWithdrawalRejectsBadRecipient(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	_, err := svc.CreateWithdrawal(ctx, 100, models.RecipientWallet, "too-short", dec("5"))
	assert.ErrorIs(t, err, ErrInvalidWallet)

	_, err = svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1234", dec("5"))
	assert.ErrorIs(t, err, ErrInvalidCard)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("50")))
}

func TestPrepareWithdrawalLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	err := svc.PrepareWithdrawal(ctx, 100, models.RecipientCard, "1234567890123456", dec("30"))
	require.NoError(t, err)

	// the check must not reserve anything or create a deal row
	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("50")))
	assert.Empty(t, store.deals)
}

func TestPrepareWithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "10")
	svc := NewDeals(store, testDepositWallet)

	err := svc.PrepareWithdrawal(ctx, 100, models.RecipientCard, "1234567890123456", dec("10.01"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	err = svc.PrepareWithdrawal(ctx, 100, models.RecipientWallet, "too-short", dec("5"))
	assert.ErrorIs(t, err, ErrInvalidWallet)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("10")))
	assert.Empty(t, store.deals)
}

func TestDeclineRefundsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1234567890123456", dec("30"))
	require.NoError(t, err)

	out, err := svc.Decline(ctx, deal.ID)
	require.NoError(t, err)
	assert.True(t, out.Refunded)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("50")), "refund must restore the full balance")

	// second decline is a no-op, no double refund
	_, err = svc.Decline(ctx, deal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	u, _ = store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("50")))
}

func TestConfirmIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1234567890123456", dec("30"))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, deal.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, deal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// confirm after decline must also be rejected
	_, err = svc.Decline(ctx, deal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestConfirmCreditsRegisteredCounterparty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	other := store.seedUser(200, "5")
	other.CardNumber = "9999888877776666"
	require.NoError(t, store.UpdateCardNumber(ctx, 200, other.CardNumber))
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, other.CardNumber, dec("30"))
	require.NoError(t, err)

	out, err := svc.Confirm(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.CreditedUserID)

	got, _ := store.GetUser(ctx, 200)
	assert.True(t, got.Balance.Equal(dec("35")))
	assert.Equal(t, 0, got.DealsCount, "receiving a payout is not a completed deal")

	sender, _ := store.GetUser(ctx, 100)
	assert.True(t, sender.Balance.Equal(dec("20")), "sender stays debited")
	assert.Equal(t, 1, sender.DealsCount)
}

func TestConfirmUnknownRecipientCreditsNobody(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "1111222233334444", dec("30"))
	require.NoError(t, err)

	out, err := svc.Confirm(ctx, deal.ID)
	require.NoError(t, err)
	assert.Zero(t, out.CreditedUserID)
}

func TestConfirmMultipleOwnersPicksLowestID(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "50")
	store.seedUser(300, "0")
	store.seedUser(200, "0")
	require.NoError(t, store.UpdateCardNumber(ctx, 300, "5555666677778888"))
	require.NoError(t, store.UpdateCardNumber(ctx, 200, "5555666677778888"))
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateWithdrawal(ctx, 100, models.RecipientCard, "5555666677778888", dec("10"))
	require.NoError(t, err)

	out, err := svc.Confirm(ctx, deal.ID)
	require.NoError(t, err)
	assert.True(t, out.MultipleOwners)
	assert.Equal(t, int64(200), out.CreditedUserID)

	credited, _ := store.GetUser(ctx, 200)
	assert.True(t, credited.Balance.Equal(dec("10")))
	skipped, _ := store.GetUser(ctx, 300)
	assert.True(t, skipped.Balance.IsZero())
}

func TestTopUpCreditsOnlyOnConfirm(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "5")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateTopUp(ctx, 100, dec("40"))
	require.NoError(t, err)
	assert.Equal(t, models.DealTopUp, deal.Kind)
	assert.Equal(t, testDepositWallet, deal.Recipient)

	// creation must not move money
	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("5")))

	out, err := svc.Confirm(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.CreditedUserID)

	u, _ = store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("45")))

	_, err = svc.Confirm(ctx, deal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	u, _ = store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("45")), "repeat confirm must not credit twice")
}

func TestDeclineTopUpLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "5")
	svc := NewDeals(store, testDepositWallet)

	deal, err := svc.CreateTopUp(ctx, 100, dec("40"))
	require.NoError(t, err)

	out, err := svc.Decline(ctx, deal.ID)
	require.NoError(t, err)
	assert.False(t, out.Refunded)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("5")))
}
