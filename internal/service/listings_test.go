package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/p2pbot/internal/models"
)

func TestAddPairNormalizesAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewListings(newMemStore())

	pair, err := svc.AddPair(ctx, "  ton_rub ")
	require.NoError(t, err)
	assert.Equal(t, "TON_RUB", pair.Name)

	_, err = svc.AddPair(ctx, "TON_RUB")
	assert.ErrorIs(t, err, ErrPairExists)

	// different case is still the same pair
	_, err = svc.AddPair(ctx, "Ton_Rub")
	assert.ErrorIs(t, err, ErrPairExists)
}

func TestRemovePairDropsListings(t *testing.T) {
	ctx := context.Background()
	svc := NewListings(newMemStore())

	_, err := svc.AddPair(ctx, "TON_RUB")
	require.NoError(t, err)
	_, err = svc.AddListing(ctx, "TON_RUB", "trader", "245.5", "1000-50000", models.ListingSell)
	require.NoError(t, err)

	require.NoError(t, svc.RemovePair(ctx, "TON_RUB"))

	_, err = svc.GetPair(ctx, "TON_RUB")
	assert.ErrorIs(t, err, ErrPairNotFound)
	_, _, err = svc.Board(ctx, "TON_RUB")
	assert.ErrorIs(t, err, ErrPairNotFound)

	assert.ErrorIs(t, svc.RemovePair(ctx, "TON_RUB"), ErrPairNotFound)
}

func TestBoardSplitsBySide(t *testing.T) {
	ctx := context.Background()
	svc := NewListings(newMemStore())

	_, err := svc.AddPair(ctx, "TON_RUB")
	require.NoError(t, err)
	_, err = svc.AddListing(ctx, "TON_RUB", "seller1", "245", "1000-50000", models.ListingSell)
	require.NoError(t, err)
	_, err = svc.AddListing(ctx, "TON_RUB", "buyer1", "243", "500-20000", models.ListingBuy)
	require.NoError(t, err)
	_, err = svc.AddListing(ctx, "TON_RUB", "seller2", "246", "100-5000", models.ListingSell)
	require.NoError(t, err)

	sell, buy, err := svc.Board(ctx, "ton_rub")
	require.NoError(t, err)
	require.Len(t, sell, 2)
	require.Len(t, buy, 1)
	assert.Equal(t, "seller1", sell[0].Nickname)
	assert.Equal(t, "buyer1", buy[0].Nickname)
}

func TestAddListingUnknownPair(t *testing.T) {
	ctx := context.Background()
	svc := NewListings(newMemStore())

	_, err := svc.AddListing(ctx, "NOPE", "x", "1", "1-2", models.ListingBuy)
	assert.ErrorIs(t, err, ErrPairNotFound)
}

func TestRemoveListing(t *testing.T) {
	ctx := context.Background()
	svc := NewListings(newMemStore())

	_, err := svc.AddPair(ctx, "TON_RUB")
	require.NoError(t, err)
	listing, err := svc.AddListing(ctx, "TON_RUB", "trader", "245", "1-2", models.ListingBuy)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveListing(ctx, listing.ID))
	assert.ErrorIs(t, svc.RemoveListing(ctx, listing.ID), ErrListingNotFound)

	all, err := svc.ListingsOf(ctx, "TON_RUB")
	require.NoError(t, err)
	assert.Empty(t, all)
}
