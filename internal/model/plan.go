package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "ACTIVE"
	PlanStatusInactive PlanStatus = "INACTIVE"
	PlanStatusArchived PlanStatus = "ARCHIVED"
)

// travel_plans — бронируемый продукт. Контент плана (программа, описание хоста)
// ведётся снаружи, ядру нужны только цена, вместимость и владелец.
type TravelPlan struct {
	ID     uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	HostID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Title  string     `gorm:"type:varchar(255);not null"`
	Status PlanStatus `gorm:"type:varchar(32);not null;default:'ACTIVE';index"`

	// Цена за человека в минимальных единицах валюты.
	PricePerPerson int64 `gorm:"not null"`

	MaxParticipants int `gorm:"not null"`
	// Сколько мест ещё не занято оплаченными бронированиями.
	AvailableSlots int `gorm:"not null"`

	StartDate *datatypes.Date `gorm:"type:date"`
	EndDate   *datatypes.Date `gorm:"type:date"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (p *TravelPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
