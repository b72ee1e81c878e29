package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusPaid      PayoutStatus = "PAID"
	PayoutStatusCancelled PayoutStatus = "CANCELLED"
	PayoutStatusFailed    PayoutStatus = "FAILED"
)

// payouts — две выплаты хосту на каждое полностью оплаченное бронирование.
// Пользователь их не редактирует, статус двигает только процесс расчётов.
type Payout struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	BookingID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_payout_booking_installment"`
	Installment int       `gorm:"not null;uniqueIndex:idx_payout_booking_installment"`

	HostID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Percent       int          `gorm:"not null"`
	Amount        int64        `gorm:"not null"`
	ScheduledDate time.Time    `gorm:"not null;index"`
	Status        PayoutStatus `gorm:"type:varchar(16);not null;index"`

	PaidAt        *time.Time
	SettlementRef *string `gorm:"type:varchar(128)"`
	FailureReason string  `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
