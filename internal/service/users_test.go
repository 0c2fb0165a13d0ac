package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserWithZeroBalance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUsers(store)

	created, err := svc.Register(ctx, 100, "alice", "Alice", 0)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := svc.Get(ctx, 100)
	require.NoError(t, err)
	assert.True(t, u.Balance.IsZero())
	assert.Equal(t, "Alice", u.FullName)
	assert.Equal(t, "ru", u.Language)
}

func TestRegisterTwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUsers(store)

	created, err := svc.Register(ctx, 100, "alice", "Alice", 0)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Register(ctx, 100, "alice", "Another Name", 0)
	require.NoError(t, err)
	assert.False(t, created)

	u, _ := svc.Get(ctx, 100)
	assert.Equal(t, "Alice", u.FullName, "re-registration must not overwrite the profile")
}

func TestRegisterNameBounds(t *testing.T) {
	ctx := context.Background()
	svc := NewUsers(newMemStore())

	_, err := svc.Register(ctx, 100, "alice", "A", 0)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Register(ctx, 100, "alice", strings.Repeat("x", 51), 0)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Register(ctx, 100, "alice", strings.Repeat("x", 50), 0)
	assert.NoError(t, err)
}

func TestRegisterReferralCountsInviter(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUsers(store)

	_, err := svc.Register(ctx, 1, "inviter", "Inviter", 0)
	require.NoError(t, err)

	_, err = svc.Register(ctx, 2, "invitee", "Invitee", 1)
	require.NoError(t, err)

	inviter, _ := svc.Get(ctx, 1)
	assert.Equal(t, 1, inviter.RefCount)
}

func TestRegisterSelfReferralIgnored(t *testing.T) {
	ctx := context.Background()
	svc := NewUsers(newMemStore())

	_, err := svc.Register(ctx, 5, "loop", "Loop User", 5)
	require.NoError(t, err)

	u, _ := svc.Get(ctx, 5)
	assert.Zero(t, u.RefCount)
}

func TestSetWalletValidation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "0")
	svc := NewUsers(store)

	err := svc.SetWallet(ctx, 100, "not a wallet")
	assert.ErrorIs(t, err, ErrInvalidWallet)

	valid := "abcdefghijklmnopqrstuvwxyzABCDEF0123456789_-abcd"
	require.NoError(t, svc.SetWallet(ctx, 100, valid))

	u, _ := svc.Get(ctx, 100)
	assert.Equal(t, valid, u.TonWallet)
}

func TestSetCardStripsSpaces(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "0")
	svc := NewUsers(store)

	require.NoError(t, svc.SetCard(ctx, 100, "1234 5678 9012 3456"))
	u, _ := svc.Get(ctx, 100)
	assert.Equal(t, "1234567890123456", u.CardNumber)

	assert.ErrorIs(t, svc.SetCard(ctx, 100, "1234 5678"), ErrInvalidCard)
}

func TestProfileUpdatesRequireRegistration(t *testing.T) {
	ctx := context.Background()
	svc := NewUsers(newMemStore())

	err := svc.SetWallet(ctx, 404, "abcdefghijklmnopqrstuvwxyzABCDEF0123456789_-abcd")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, svc.SetLanguage(ctx, 404, "en"), ErrUserNotFound)
}
