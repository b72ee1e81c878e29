package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/model"
)

// ErrStaleBooking — строка бронирования изменилась после чтения (версия не совпала).
var ErrStaleBooking = errors.New("booking was modified concurrently")

type BookingRepository interface {
	// Создать бронирование вместе со списком гостей.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// То же, с гостями.
	GetWithGuests(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Найти бронирование по orderId платёжного шлюза.
	GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Booking, error)
	// Записать финансовое состояние, если версия не изменилась; иначе ErrStaleBooking.
	SaveState(ctx context.Context, booking *model.Booking) error
	// Отметить/снять занятость мест; false, если флаг уже в нужном состоянии.
	SetSeatsReserved(ctx context.Context, id uuid.UUID, reserved bool) (bool, error)
	// Бронирования пользователя, новые сверху.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Booking, int64, error)
	// ID неоплаченных бронирований с истёкшим дедлайном.
	ListOverdueCandidates(ctx context.Context, now time.Time, statuses []model.PaymentStatus) ([]uuid.UUID, error)
	// Перевести одно бронирование в OVERDUE, если условия всё ещё выполняются.
	MarkOverdue(ctx context.Context, id uuid.UUID, now time.Time, statuses []model.PaymentStatus) (bool, error)
	// Неоплаченные бронирования, у которых дедлайн попадает в [from, to).
	ListDeadlineBetween(ctx context.Context, from, to time.Time, statuses []model.PaymentStatus) ([]model.Booking, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetWithGuests(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Guests", func(db *gorm.DB) *gorm.DB { return db.Order("is_lead DESC, created_at ASC") }).
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "gateway_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) SaveState(ctx context.Context, booking *model.Booking) error {
	update := map[string]any{
		"participants":           booking.Participants,
		"total_price":            booking.TotalPrice,
		"amount_paid":            booking.AmountPaid,
		"remaining_amount":       booking.RemainingAmount,
		"min_payment_amount":     booking.MinPaymentAmount,
		"refund_amount":          booking.RefundAmount,
		"payment_deadline":       booking.PaymentDeadline,
		"payment_status":         booking.PaymentStatus,
		"status":                 booking.Status,
		"form_submitted":         booking.FormSubmitted,
		"special_requirements":   booking.SpecialRequirements,
		"gateway_order_id":       booking.GatewayOrderID,
		"gateway_transaction_id": booking.GatewayTransactionID,
		"gateway_payload":        booking.GatewayPayload,
		"cancelled_at":           booking.CancelledAt,
		"version":                booking.Version + 1,
	}

	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND version = ?", booking.ID, booking.Version).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleBooking
	}
	booking.Version++
	return nil
}

func (r *GormBookingRepository) SetSeatsReserved(ctx context.Context, id uuid.UUID, reserved bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND seats_reserved = ?", id, !reserved).
		Update("seats_reserved", reserved)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormBookingRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("user_id = ?", userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListOverdueCandidates(
	ctx context.Context,
	now time.Time,
	statuses []model.PaymentStatus,
) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := overdueScope(r.db.WithContext(ctx).Model(&model.Booking{}), now, statuses).
		Order("payment_deadline ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormBookingRepository) MarkOverdue(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
	statuses []model.PaymentStatus,
) (bool, error) {
	res := overdueScope(r.db.WithContext(ctx).Model(&model.Booking{}), now, statuses).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": model.PaymentStatusOverdue,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormBookingRepository) ListDeadlineBetween(
	ctx context.Context,
	from, to time.Time,
	statuses []model.PaymentStatus,
) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", model.BookingStatusPending).
		Where("payment_status IN ?", statuses).
		Where("payment_deadline >= ? AND payment_deadline < ?", from, to).
		Order("payment_deadline ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func overdueScope(q *gorm.DB, now time.Time, statuses []model.PaymentStatus) *gorm.DB {
	return q.
		Where("status = ?", model.BookingStatusPending).
		Where("payment_status IN ?", statuses).
		Where("payment_deadline IS NOT NULL AND payment_deadline < ?", now)
}
