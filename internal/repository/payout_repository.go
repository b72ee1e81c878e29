package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/model"
)

// ErrPayoutStatusChanged — выплата уже не в ожидаемом статусе.
var ErrPayoutStatusChanged = errors.New("payout status changed concurrently")

type WalletSums struct {
	TotalEarnings int64
	Received      int64
	Pending       int64
	Upcoming      int64
	Failed        int64
}

type PayoutRepository interface {
	CreateBatch(ctx context.Context, payouts []model.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payout, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payout, error)
	// Сменить статус, только если текущий равен from; иначе ErrPayoutStatusChanged.
	Transition(ctx context.Context, id uuid.UUID, from model.PayoutStatus, update map[string]any) error
	// Отменить все PENDING-выплаты бронирования.
	CancelPendingForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]model.Payout, int64, error)
	SumsByHost(ctx context.Context, hostID uuid.UUID, now time.Time) (WalletSums, error)
}

type GormPayoutRepository struct {
	db *gorm.DB
}

func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

func (r *GormPayoutRepository) CreateBatch(ctx context.Context, payouts []model.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payouts).Error
}

func (r *GormPayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payout, error) {
	var p model.Payout
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPayoutRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payout, error) {
	var payouts []model.Payout
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("installment ASC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *GormPayoutRepository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from model.PayoutStatus,
	update map[string]any,
) error {
	res := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPayoutStatusChanged
	}
	return nil
}

func (r *GormPayoutRepository) CancelPendingForBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("booking_id = ? AND status = ?", bookingID, model.PayoutStatusPending).
		Update("status", model.PayoutStatusCancelled)
	return res.RowsAffected, res.Error
}

func (r *GormPayoutRepository) ListByHost(
	ctx context.Context,
	hostID uuid.UUID,
	limit, offset int,
) ([]model.Payout, int64, error) {
	var (
		payouts []model.Payout
		total   int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Where("host_id = ?", hostID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("scheduled_date ASC, installment ASC").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}

	return payouts, total, nil
}

// SumsByHost: total без отменённых; pending с наступившим сроком, upcoming с будущим.
func (r *GormPayoutRepository) SumsByHost(ctx context.Context, hostID uuid.UUID, now time.Time) (WalletSums, error) {
	var sums WalletSums
	err := r.db.WithContext(ctx).
		Model(&model.Payout{}).
		Select(
			"COALESCE(SUM(CASE WHEN status <> ? THEN amount ELSE 0 END), 0) AS total_earnings, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS received, "+
				"COALESCE(SUM(CASE WHEN status = ? AND scheduled_date <= ? THEN amount ELSE 0 END), 0) AS pending, "+
				"COALESCE(SUM(CASE WHEN status = ? AND scheduled_date > ? THEN amount ELSE 0 END), 0) AS upcoming, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS failed",
			model.PayoutStatusCancelled,
			model.PayoutStatusPaid,
			model.PayoutStatusPending, now,
			model.PayoutStatusPending, now,
			model.PayoutStatusFailed,
		).
		Where("host_id = ?", hostID).
		Scan(&sums).Error
	if err != nil {
		return WalletSums{}, err
	}
	return sums, nil
}
