package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/model"
)

// PaymentRepository — платёжный журнал, только вставка и чтение.
type PaymentRepository interface {
	Append(ctx context.Context, payment *model.PartialPayment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.PartialPayment, error)
	// Был ли уже зачтён платёж с таким идентификатором транзакции шлюза.
	ExistsByGatewayTransaction(ctx context.Context, transactionID string) (bool, error)
	// Сумма всех строк журнала (возвраты отрицательные).
	SumByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	// Количество строк заданного типа.
	CountByType(ctx context.Context, bookingID uuid.UUID, paymentType model.PaymentType) (int64, error)
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Append(ctx context.Context, payment *model.PartialPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.PartialPayment, error) {
	var payments []model.PartialPayment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormPaymentRepository) ExistsByGatewayTransaction(ctx context.Context, transactionID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PartialPayment{}).
		Where("gateway_transaction_id = ?", transactionID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormPaymentRepository) SumByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.PartialPayment{}).
		Where("booking_id = ?", bookingID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *GormPaymentRepository) CountByType(
	ctx context.Context,
	bookingID uuid.UUID,
	paymentType model.PaymentType,
) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PartialPayment{}).
		Where("booking_id = ? AND payment_type = ?", bookingID, paymentType).
		Count(&n).Error
	return n, err
}
