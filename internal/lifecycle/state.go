package lifecycle

import (
	"fmt"

	"github.com/Leganyst/travel-booking/internal/model"
)

// State — пара полей бронирования, которую меняют только переходы автомата.
type State struct {
	Status  model.BookingStatus
	Payment model.PaymentStatus
}

func (s State) String() string {
	return fmt.Sprintf("%s/%s", s.Status, s.Payment)
}

// Of возвращает текущее состояние бронирования.
func Of(b *model.Booking) State {
	return State{Status: b.Status, Payment: b.PaymentStatus}
}

// Valid проверяет инвариант CONFIRMED <=> FULLY_PAID для неотменённых бронирований
// и то, что CANCELLED/REFUNDED оплаты бывают только у отменённых.
func (s State) Valid() bool {
	switch s.Status {
	case model.BookingStatusPending:
		switch s.Payment {
		case model.PaymentStatusPending, model.PaymentStatusPartiallyPaid, model.PaymentStatusOverdue:
			return true
		}
	case model.BookingStatusConfirmed:
		return s.Payment == model.PaymentStatusFullyPaid
	case model.BookingStatusCancelled:
		switch s.Payment {
		case model.PaymentStatusPending,
			model.PaymentStatusPartiallyPaid,
			model.PaymentStatusOverdue,
			model.PaymentStatusFullyPaid,
			model.PaymentStatusCancelled,
			model.PaymentStatusRefunded:
			return true
		}
	}
	return false
}

// Cancelled — бронирование уже отменено или деньги по нему возвращены.
func (s State) Cancelled() bool {
	return s.Status == model.BookingStatusCancelled ||
		s.Payment == model.PaymentStatusCancelled ||
		s.Payment == model.PaymentStatusRefunded
}

// AcceptsPayment: можно ли зачислить очередной платёж.
func (s State) AcceptsPayment() bool {
	_, ok := transitions[key{from: s, event: EventPartialPayment}]
	return ok
}
