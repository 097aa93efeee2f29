package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	errs "github.com/agromarket/backend/common/errors"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Datastore for service tests. Mutating operations
// take the store lock so concurrency tests exercise the same conditional
// semantics the SQL implementations have.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	orders   map[uuid.UUID]*models.Order
	payments map[string]*models.Payment
	methods  map[uuid.UUID]*models.PaymentMethod
	balances map[uuid.UUID]*models.UserBalance
	events   []*models.SecurityEvent
	carts    map[string][]models.CartEntry
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]*models.Product),
		orders:   make(map[uuid.UUID]*models.Order),
		payments: make(map[string]*models.Payment),
		methods:  make(map[uuid.UUID]*models.PaymentMethod),
		balances: make(map[uuid.UUID]*models.UserBalance),
		carts:    make(map[string][]models.CartEntry),
	}
}

func (s *memStore) Products() repository.ProductRepository             { return &memProductRepo{s} }
func (s *memStore) Orders() repository.OrderRepository                 { return &memOrderRepo{s} }
func (s *memStore) Payments() repository.PaymentRepository             { return &memPaymentRepo{s} }
func (s *memStore) PaymentMethods() repository.PaymentMethodRepository { return &memMethodRepo{s} }
func (s *memStore) Balances() repository.BalanceRepository             { return &memBalanceRepo{s} }
func (s *memStore) Security() repository.SecurityRepository            { return &memSecurityRepo{s} }
func (s *memStore) Carts() repository.CartBackend                      { return &memCartBackend{s} }

func (s *memStore) Atomically(_ context.Context, fn func(tx repository.Datastore) error) error {
	return fn(s)
}

// --- seeding helpers ---

func (s *memStore) addProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:                uuid.New(),
		Name:              name,
		Price:             decimal.RequireFromString(price),
		QuantityAvailable: stock,
		IsActive:          true,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addMethod(t *testing.T, name, pct, fixed string) *models.PaymentMethod {
	t.Helper()
	m := &models.PaymentMethod{
		ID:                      uuid.New(),
		Name:                    name,
		PaymentType:             models.PaymentTypeCreditCard,
		IsActive:                true,
		ProcessingFeePercentage: decimal.RequireFromString(pct),
		ProcessingFeeFixed:      decimal.RequireFromString(fixed),
		MinAmount:               decimal.RequireFromString("0.01"),
		MaxAmount:               decimal.RequireFromString("99999.99"),
	}
	s.methods[m.ID] = m
	return m
}

func (s *memStore) setBalance(t *testing.T, userID uuid.UUID, amount string) {
	t.Helper()
	s.balances[userID] = &models.UserBalance{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		IsActive: true,
	}
}

func (s *memStore) eventsOfType(eventType models.SecurityEventType) []*models.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SecurityEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func ownerKey(owner models.CartOwner) string {
	if owner.UserID != nil {
		return "u:" + owner.UserID.String()
	}
	return "s:" + owner.SessionID
}

// --- repositories ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !p.IsActive {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.QuantityAvailable < qty {
		return false, nil
	}
	p.QuantityAvailable -= qty
	return true, nil
}

func (r *memProductRepo) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.products[product.ID] = product
	return nil
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	r.s.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) FindByIDAndCustomer(_ context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.CustomerID != customerID {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		o.Status = status
	}
	return nil
}

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.s.payments[payment.PaymentID] = payment
	return nil
}

func (r *memPaymentRepo) FindByPaymentID(_ context.Context, paymentID string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[paymentID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memPaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *payment
	r.s.payments[payment.PaymentID] = &copied
	return nil
}

type memMethodRepo struct{ s *memStore }

func (r *memMethodRepo) FindActiveByID(_ context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.methods[id]
	if !ok || !m.IsActive {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *memMethodRepo) FindActive(_ context.Context) ([]models.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PaymentMethod
	for _, m := range r.s.methods {
		if m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMethodRepo) FindByName(_ context.Context, name string) (*models.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.methods {
		if m.Name == name {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMethodRepo) Create(_ context.Context, method *models.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	r.s.methods[method.ID] = method
	return nil
}

type memBalanceRepo struct{ s *memStore }

func (r *memBalanceRepo) Get(_ context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[userID]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memBalanceRepo) Debit(_ context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[userID]
	if !ok || b.Amount.LessThan(amount) {
		return false, nil
	}
	b.Amount = b.Amount.Sub(amount)
	return true, nil
}

func (r *memBalanceRepo) Credit(_ context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[userID]
	if !ok {
		r.s.balances[userID] = &models.UserBalance{UserID: userID, Amount: amount}
		return nil
	}
	b.Amount = b.Amount.Add(amount)
	return nil
}

func (r *memBalanceRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[userID]
	if !ok {
		b = &models.UserBalance{UserID: userID, Amount: decimal.Zero}
		r.s.balances[userID] = b
	}
	copied := *b
	return &copied, nil
}

type memSecurityRepo struct{ s *memStore }

func (r *memSecurityRepo) Log(_ context.Context, event *models.SecurityEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.s.events = append(r.s.events, event)
	return nil
}

func (r *memSecurityRepo) CountRecentAttempts(_ context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, e := range r.s.events {
		if e.UserID != nil && *e.UserID == userID &&
			e.EventType == models.EventPaymentAttempt && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memSecurityRepo) IsIPBlocked(_ context.Context, ip string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.IPAddress == ip && e.IsBlocked {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSecurityRepo) SetIPBlocked(_ context.Context, ip string, blocked bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.events {
		if e.IPAddress == ip {
			e.IsBlocked = blocked
			n++
		}
	}
	return n, nil
}

func (r *memSecurityRepo) Recent(_ context.Context, limit int) ([]models.SecurityEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.SecurityEvent
	for i := len(r.s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.s.events[i])
	}
	return out, nil
}

type memCartBackend struct{ s *memStore }

func (b *memCartBackend) Get(_ context.Context, owner models.CartOwner) ([]models.CartEntry, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	entries := b.s.carts[ownerKey(owner)]
	out := make([]models.CartEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (b *memCartBackend) Save(_ context.Context, owner models.CartOwner, entries []models.CartEntry) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	copied := make([]models.CartEntry, len(entries))
	copy(copied, entries)
	b.s.carts[ownerKey(owner)] = copied
	return nil
}

func (b *memCartBackend) Clear(_ context.Context, owner models.CartOwner) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	delete(b.s.carts, ownerKey(owner))
	return nil
}

// appErrCode extracts the HTTP code from an application error.
func appErrCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*errs.Error)
	require.True(t, ok, "expected *errors.Error, got %T: %v", err, err)
	return appErr.Code
}
