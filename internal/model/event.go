package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingUpdated   EventType = "booking_updated"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeBookingOverdue   EventType = "booking_overdue"
	EventTypePaymentApplied   EventType = "payment_applied"
	EventTypeRefundRecorded   EventType = "refund_recorded"
	EventTypePayoutScheduled  EventType = "payout_scheduled"
	EventTypePayoutSettled    EventType = "payout_settled"
)

// events — журнал аудита, пишется в той же транзакции, что и изменение.
type Event struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID    *uuid.UUID `gorm:"type:varchar(36);index"`
	BookingID *uuid.UUID `gorm:"type:varchar(36);index"`

	Details datatypes.JSON

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
