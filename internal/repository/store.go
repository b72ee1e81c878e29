package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories: набор репозиториев, привязанных к одному *gorm.DB (или транзакции).
type Repositories struct {
	Bookings BookingRepository
	Guests   GuestRepository
	Payments PaymentRepository
	Payouts  PayoutRepository
	Plans    PlanRepository
	Events   EventRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Bookings: NewGormBookingRepository(db),
		Guests:   NewGormGuestRepository(db),
		Payments: NewGormPaymentRepository(db),
		Payouts:  NewGormPayoutRepository(db),
		Plans:    NewGormPlanRepository(db),
		Events:   NewGormEventRepository(db),
	}
}

// Store — доступ к хранилищу: чтение вне транзакции и атомарные блоки записи.
type Store interface {
	Repos() *Repositories
	// Transaction выполняет fn в одной транзакции; ошибка из fn откатывает всё.
	Transaction(ctx context.Context, fn func(r *Repositories) error) error
}

type GormStore struct {
	db    *gorm.DB
	repos *Repositories
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, repos: NewRepositories(db)}
}

func (s *GormStore) Repos() *Repositories {
	return s.repos
}

func (s *GormStore) Transaction(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
