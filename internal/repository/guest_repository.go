package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/model"
)

type GuestRepository interface {
	// Заменить состав группы целиком: удалить старых гостей и создать новых.
	Replace(ctx context.Context, bookingID uuid.UUID, guests []model.Guest) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Guest, error)
}

type GormGuestRepository struct {
	db *gorm.DB
}

func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// Replace не открывает свою транзакцию: вызывать внутри Store.Transaction.
func (r *GormGuestRepository) Replace(ctx context.Context, bookingID uuid.UUID, guests []model.Guest) error {
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Delete(&model.Guest{}).Error; err != nil {
		return err
	}
	if len(guests) == 0 {
		return nil
	}
	for i := range guests {
		guests[i].ID = uuid.Nil
		guests[i].BookingID = bookingID
	}
	return r.db.WithContext(ctx).Create(&guests).Error
}

func (r *GormGuestRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Guest, error) {
	var guests []model.Guest
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("is_lead DESC, created_at ASC").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}
	return guests, nil
}
