package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go-inventory-orders/internal/events"
	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore backs every in-memory repository. The unit of work snapshots it
// and restores the snapshot when fn fails, which mirrors a rollback.
type memStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]*model.Order
	users     map[uuid.UUID]model.User
	movements []model.StockMovement
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]model.Product{},
		orders:   map[uuid.UUID]*model.Order{},
		users:    map[uuid.UUID]model.User{},
	}
}

type memSnapshot struct {
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]*model.Order
	users     map[uuid.UUID]model.User
	movements []model.StockMovement
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		products:  make(map[uuid.UUID]model.Product, len(s.products)),
		orders:    make(map[uuid.UUID]*model.Order, len(s.orders)),
		users:     make(map[uuid.UUID]model.User, len(s.users)),
		movements: append([]model.StockMovement(nil), s.movements...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.orders = snap.orders
	s.users = snap.users
	s.movements = snap.movements
}

type memUnitOfWork struct {
	store *memStore
}

func (u memUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := u.store.snapshot()
	if err := fn(ctx); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

type memProductRepo struct {
	store *memStore
}

func (r memProductRepo) Create(_ context.Context, p *model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.products {
		if existing.SKU == p.SKU {
			return repository.ErrDuplicateKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r memProductRepo) FindAll(context.Context) ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Product
	for _, p := range r.store.products {
		if !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok || p.DeletedAt.Valid {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r memProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.SKU == sku && !p.DeletedAt.Valid {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memProductRepo) Update(_ context.Context, p *model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, existing := range r.store.products {
		if id != p.ID && existing.SKU == p.SKU {
			return repository.ErrDuplicateKey
		}
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r memProductRepo) Delete(_ context.Context, id uuid.UUID, deletedBy string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok || p.DeletedAt.Valid {
		return repository.ErrNotFound
	}
	p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	p.UpdatedBy = deletedBy
	r.store.products[id] = p
	return nil
}

func (r memProductRepo) DecrementIfAvailable(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty < 1 {
		return false, repository.ErrBadQuantity
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok || p.DeletedAt.Valid || !p.IsActive || p.QuantityPresent < qty {
		return false, nil
	}
	p.QuantityPresent -= qty
	r.store.products[id] = p
	return true, nil
}

func (r memProductRepo) IncrementStock(_ context.Context, id uuid.UUID, qty int) error {
	if qty < 1 {
		return repository.ErrBadQuantity
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.QuantityPresent += qty
	r.store.products[id] = p
	return nil
}

type memOrderRepo struct {
	store *memStore
	// beforeUpdate runs ahead of every Update; tests use it to simulate a
	// concurrent writer.
	beforeUpdate func(orderID uuid.UUID)
	insertErr    error
}

func (r *memOrderRepo) Insert(_ context.Context, o *model.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orders[o.OrderID]; ok {
		return repository.ErrDuplicateKey
	}
	r.store.orders[o.OrderID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindAllByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.collect(func(o *model.Order) bool { return o.UserID == userID }), nil
}

func (r *memOrderRepo) FindAll(_ context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	return r.collect(func(o *model.Order) bool {
		if o.IsSystemAccount {
			return false
		}
		return filter.Status == "" || o.Status == filter.Status
	}), nil
}

func (r *memOrderRepo) collect(keep func(*model.Order) bool) []model.Order {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Order
	for _, o := range r.store.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memOrderRepo) Update(_ context.Context, o *model.Order, expectedRevision int64) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(o.OrderID)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.OrderID]
	if !ok || stored.Revision != expectedRevision {
		return repository.ErrStaleRevision
	}
	o.Revision = expectedRevision + 1
	r.store.orders[o.OrderID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) CountByStatus(context.Context) (map[model.OrderStatus]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := map[model.OrderStatus]int64{}
	for _, o := range r.store.orders {
		if !o.IsSystemAccount {
			counts[o.Status]++
		}
	}
	return counts, nil
}

type memMovementRepo struct {
	store *memStore
}

func (r memMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r memMovementRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]model.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.store.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMovementRepo) GetStockMovement(_ context.Context, _, _ time.Time) ([]repository.StockMovementData, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	in, out := 0, 0
	for _, m := range r.store.movements {
		if m.Type == model.MovementIn {
			in += m.Quantity
		} else {
			out += m.Quantity
		}
	}
	return []repository.StockMovementData{{Date: "2026-03-01", Inbound: in, Outbound: out}}, nil
}

func (r memMovementRepo) GetDashboardStats(context.Context) (*repository.DashboardStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stats := &repository.DashboardStats{TotalValuation: decimal.Zero, Revenue: decimal.Zero}
	for _, p := range r.store.products {
		if p.DeletedAt.Valid {
			continue
		}
		stats.TotalProducts++
		if p.QuantityPresent < 10 {
			stats.LowStockCount++
		}
		stats.TotalValuation = stats.TotalValuation.Add(p.Price.Mul(decimal.NewFromInt(int64(p.QuantityPresent))))
	}
	return stats, nil
}

type memUserRepo struct {
	store *memStore
}

func (r memUserRepo) FindByName(_ context.Context, name string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.UserName == name {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUserRepo) Create(_ context.Context, u *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.UserName == u.UserName {
			return repository.ErrDuplicateKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r memUserRepo) Update(_ context.Context, u *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.ID] = *u
	return nil
}

func (r memUserRepo) FindAll(context.Context) ([]model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.User
	for _, u := range r.store.users {
		if !u.IsSystemAccount {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (r memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hashed
	r.store.users[id] = u
	return nil
}

func (r memUserRepo) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion = version
	r.store.users[id] = u
	return nil
}

// recordingPublisher captures every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("boom")

// cloneOrder copies o so the store never aliases a caller's line items.
func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.LineItems = append([]model.LineItem(nil), o.LineItems...)
	return &cp
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
