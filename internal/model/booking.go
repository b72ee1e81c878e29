package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusFullyPaid     PaymentStatus = "FULLY_PAID"
	PaymentStatusOverdue       PaymentStatus = "OVERDUE"
	PaymentStatusCancelled     PaymentStatus = "CANCELLED"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
)

// bookings
//
// Суммы хранятся в минимальных единицах валюты.
// Инвариант: AmountPaid + RemainingAmount == TotalPrice.
type Booking struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index"`
	TravelPlanID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	StartDate datatypes.Date `gorm:"type:date;not null"`
	EndDate   datatypes.Date `gorm:"type:date;not null"`

	Participants     int   `gorm:"not null"`
	PricePerPerson   int64 `gorm:"not null"`
	TotalPrice       int64 `gorm:"not null"`
	AmountPaid       int64 `gorm:"not null;default:0"`
	RemainingAmount  int64 `gorm:"not null"`
	MinPaymentAmount int64 `gorm:"not null"`
	RefundAmount     int64 `gorm:"not null;default:0"`

	// nil, если частичная оплата не разрешена.
	PaymentDeadline *time.Time `gorm:"index"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null;index"`
	Status        BookingStatus `gorm:"type:varchar(32);not null;index"`

	AllowPartialPayment bool   `gorm:"not null;default:false"`
	FormSubmitted       bool   `gorm:"not null;default:false"`
	SpecialRequirements string `gorm:"type:text"`

	// true, пока места плана заняты этим бронированием.
	SeatsReserved bool `gorm:"not null;default:false"`

	// Последнее подтверждение платёжного шлюза, для аудита.
	GatewayOrderID       *string        `gorm:"type:varchar(128)"`
	GatewayTransactionID *string        `gorm:"type:varchar(128)"`
	GatewayPayload       datatypes.JSON

	// Счётчик оптимистической блокировки, растёт при каждой записи.
	Version int64 `gorm:"not null;default:1"`

	CancelledAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Guests     []Guest     `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	TravelPlan *TravelPlan `gorm:"foreignKey:TravelPlanID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	return nil
}

// StartTime возвращает дату начала как полночь UTC.
func (b *Booking) StartTime() time.Time {
	return time.Time(b.StartDate)
}

// guests — состав группы, целиком перезаписывается при отправке анкеты.
type Guest struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	BookingID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	FullName string `gorm:"type:varchar(255);not null"`
	Email    string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(32)"`
	IsLead   bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
