package repository

import (
	"context"

	"gorm.io/gorm"
)

// Datastore bundles the relational repositories and provides the single
// atomic scope checkout runs in. Atomically hands the callback a Datastore
// whose repositories are bound to one transaction; an error from the
// callback rolls everything back.
type Datastore interface {
	Products() ProductRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	PaymentMethods() PaymentMethodRepository
	Balances() BalanceRepository
	Security() SecurityRepository
	Carts() CartBackend
	Atomically(ctx context.Context, fn func(tx Datastore) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed Datastore.
func NewStore(db *gorm.DB) Datastore {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductRepository             { return &gormProductRepo{db: s.db} }
func (s *gormStore) Orders() OrderRepository                 { return &gormOrderRepo{db: s.db} }
func (s *gormStore) Payments() PaymentRepository             { return &gormPaymentRepo{db: s.db} }
func (s *gormStore) PaymentMethods() PaymentMethodRepository { return &gormPaymentMethodRepo{db: s.db} }
func (s *gormStore) Balances() BalanceRepository             { return &gormBalanceRepo{db: s.db} }
func (s *gormStore) Security() SecurityRepository            { return &gormSecurityRepo{db: s.db} }
func (s *gormStore) Carts() CartBackend                      { return &gormCartBackend{db: s.db} }

func (s *gormStore) Atomically(ctx context.Context, fn func(tx Datastore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
