package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVipAdjustRequiresGrant(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "5")
	svc := NewVip(store)

	_, err := svc.AdjustOwnBalance(ctx, 100, dec("10"))
	assert.ErrorIs(t, err, ErrNotAuthorized)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("5")), "rejected adjustment must not move money")
}

func TestVipAdjustAppliesSignedDelta(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "100")
	svc := NewVip(store)

	_, err := svc.Grant(ctx, 100, time.Hour)
	require.NoError(t, err)

	balance, err := svc.AdjustOwnBalance(ctx, 100, dec("40"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("140")), "+40 on 100 = %s", balance)

	balance, err = svc.AdjustOwnBalance(ctx, 100, dec("-40"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))

	_, err = svc.AdjustOwnBalance(ctx, 100, dec("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVipAdjustRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "10")
	svc := NewVip(store)

	_, err := svc.Grant(ctx, 100, time.Hour)
	require.NoError(t, err)

	_, err = svc.AdjustOwnBalance(ctx, 100, dec("-10.01"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	u, _ := store.GetUser(ctx, 100)
	assert.True(t, u.Balance.Equal(dec("10")), "overdraft attempt must not touch the balance")
}

func TestVipExpiredGrantIsInactive(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "5")
	svc := NewVip(store)

	_, err := svc.Grant(ctx, 100, time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	active, err := svc.IsActive(ctx, 100)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.AdjustOwnBalance(ctx, 100, dec("1"))
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestVipRevoke(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedUser(100, "5")
	svc := NewVip(store)

	_, err := svc.Grant(ctx, 100, time.Hour)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, 100))

	active, err := svc.IsActive(ctx, 100)
	require.NoError(t, err)
	assert.False(t, active)

	// revoking again is a no-op
	assert.NoError(t, svc.Revoke(ctx, 100))
}
