package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypePartial PaymentType = "PARTIAL"
	PaymentTypeFull    PaymentType = "FULL"
	PaymentTypeRefund  PaymentType = "REFUND"
)

// partial_payments — строка платёжного журнала бронирования, только вставка.
// Возврат пишется отдельной строкой с отрицательной суммой и типом REFUND.
type PartialPayment struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	BookingID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Amount      int64       `gorm:"not null"`
	PaymentType PaymentType `gorm:"type:varchar(16);not null"`
	PaymentDate time.Time   `gorm:"not null;index"`

	// Идентификатор транзакции шлюза; уникальность защищает от повторного зачёта.
	GatewayTransactionID *string `gorm:"type:varchar(128);uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (p *PartialPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
