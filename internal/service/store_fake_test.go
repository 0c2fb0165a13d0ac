package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// memStore is an in-memory storage.Store used by the service tests.
// It reproduces the guarded-update semantics of the SQL layer: debits
// only apply when covered and status transitions are compare-and-set.
type memStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	deals      map[int64]*models.Deal
	pairs      map[int64]*models.Pair
	listings   map[int64]*models.Listing
	vip        map[int64]*models.VipGrant
	nextDealID int64
	nextPairID int64
	nextListID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*models.User),
		deals:    make(map[int64]*models.Deal),
		pairs:    make(map[int64]*models.Pair),
		listings: make(map[int64]*models.Listing),
		vip:      make(map[int64]*models.VipGrant),
	}
}

var _ storage.Store = (*memStore)(nil)

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	cp.CreatedAt = time.Now()
	m.users[u.UserID] = &cp
	return nil
}

func (m *memStore) GetUser(_ context.Context, userID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateFullName(_ context.Context, userID int64, name string) error {
	return m.updateUser(userID, func(u *models.User) { u.FullName = name })
}

func (m *memStore) UpdateTonWallet(_ context.Context, userID int64, wallet string) error {
	return m.updateUser(userID, func(u *models.User) { u.TonWallet = wallet })
}

func (m *memStore) UpdateCardNumber(_ context.Context, userID int64, card string) error {
	return m.updateUser(userID, func(u *models.User) { u.CardNumber = card })
}

func (m *memStore) UpdateLanguage(_ context.Context, userID int64, lang string) error {
	return m.updateUser(userID, func(u *models.User) { u.Language = lang })
}

func (m *memStore) IncrementRefCount(_ context.Context, userID int64) error {
	return m.updateUser(userID, func(u *models.User) { u.RefCount++ })
}

func (m *memStore) IncrementDealsCount(_ context.Context, userID int64) error {
	return m.updateUser(userID, func(u *models.User) { u.DealsCount++ })
}

func (m *memStore) updateUser(userID int64, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memStore) FindUsersByRecipient(_ context.Context, rt models.RecipientType, value string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, u := range m.users {
		field := u.TonWallet
		if rt == models.RecipientCard {
			field = u.CardNumber
		}
		if field == value {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) ReserveBalance(_ context.Context, userID int64, amount decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.Balance.LessThan(amount) {
		return false, nil
	}
	u.Balance = u.Balance.Sub(amount)
	return true, nil
}

func (m *memStore) CreditBalance(_ context.Context, userID int64, amount decimal.Decimal) error {
	return m.updateUser(userID, func(u *models.User) { u.Balance = u.Balance.Add(amount) })
}

func (m *memStore) CreateDeal(_ context.Context, d *models.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDealID++
	d.ID = m.nextDealID
	d.CreatedAt = time.Now()
	cp := *d
	m.deals[d.ID] = &cp
	return nil
}

func (m *memStore) GetDeal(_ context.Context, id int64) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) TransitionDeal(_ context.Context, id int64, from, to models.DealStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

func (m *memStore) CreatePair(_ context.Context, name string) (*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPairID++
	pair := &models.Pair{ID: m.nextPairID, Name: name}
	m.pairs[pair.ID] = pair
	return &models.Pair{ID: pair.ID, Name: pair.Name}, nil
}

func (m *memStore) GetPairByName(_ context.Context, name string) (*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pairs {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) ListPairs(_ context.Context) ([]*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Pair
	for _, p := range m.pairs {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) DeletePair(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pairs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.pairs, id)
	for lid, l := range m.listings {
		if l.PairID == id {
			delete(m.listings, lid)
		}
	}
	return nil
}

func (m *memStore) CreateListing(_ context.Context, l *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextListID++
	l.ID = m.nextListID
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memStore) ListListings(_ context.Context, pairID int64) ([]*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Listing
	for _, l := range m.listings {
		if l.PairID == pairID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetListing(_ context.Context, id int64) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) DeleteListing(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

func (m *memStore) UpsertVipGrant(_ context.Context, g *models.VipGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.vip[g.UserID] = &cp
	return nil
}

func (m *memStore) GetVipGrant(_ context.Context, userID int64) (*models.VipGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.vip[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) DeleteVipGrant(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vip[userID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.vip, userID)
	return nil
}

// seedUser inserts a registered user with the given balance.
func (m *memStore) seedUser(userID int64, balance string) *models.User {
	u := &models.User{
		UserID:   userID,
		Username: "user",
		FullName: "Test User",
		Language: "ru",
		Balance:  decimal.RequireFromString(balance),
	}
	_ = m.CreateUser(context.Background(), u)
	return u
}
