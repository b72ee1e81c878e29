package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/model"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *model.TravelPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TravelPlan, error)
	// Занять seats мест; false, если свободных меньше.
	Reserve(ctx context.Context, id uuid.UUID, seats int) (bool, error)
	// Вернуть seats мест, не поднимаясь выше max_participants.
	Release(ctx context.Context, id uuid.UUID, seats int) (bool, error)
}

type GormPlanRepository struct {
	db *gorm.DB
}

func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

func (r *GormPlanRepository) Create(ctx context.Context, plan *model.TravelPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *GormPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TravelPlan, error) {
	var p model.TravelPlan
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPlanRepository) Reserve(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TravelPlan{}).
		Where("id = ? AND available_slots >= ?", id, seats).
		Update("available_slots", gorm.Expr("available_slots - ?", seats))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormPlanRepository) Release(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TravelPlan{}).
		Where("id = ?", id).
		Update("available_slots", gorm.Expr(
			"CASE WHEN available_slots + ? > max_participants THEN max_participants ELSE available_slots + ? END",
			seats, seats,
		))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
