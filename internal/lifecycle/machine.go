package lifecycle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Leganyst/travel-booking/internal/model"
)

// ErrIllegalTransition — событие не определено для текущего состояния.
var ErrIllegalTransition = errors.New("illegal booking transition")

type Event string

const (
	EventPartialPayment      Event = "partial_payment"
	EventFullPayment         Event = "full_payment"
	EventDeadlineLapsed      Event = "deadline_lapsed"
	EventCancelWithRefund    Event = "cancel_with_refund"
	EventCancelWithoutRefund Event = "cancel_without_refund"
	EventRefundSettled       Event = "refund_settled"
)

type key struct {
	from  State
	event Event
}

var (
	pendingUnpaid  = State{model.BookingStatusPending, model.PaymentStatusPending}
	pendingPartial = State{model.BookingStatusPending, model.PaymentStatusPartiallyPaid}
	pendingOverdue = State{model.BookingStatusPending, model.PaymentStatusOverdue}
	confirmed      = State{model.BookingStatusConfirmed, model.PaymentStatusFullyPaid}

	cancelledRefundPending = State{model.BookingStatusCancelled, model.PaymentStatusCancelled}
	cancelledRefunded      = State{model.BookingStatusCancelled, model.PaymentStatusRefunded}
)

// Initial — состояние нового бронирования.
var Initial = pendingUnpaid

// transitions: полная таблица переходов. Всё, чего в ней нет, запрещено.
var transitions = buildTable([]struct {
	from  State
	event Event
	to    State
}{
	{pendingUnpaid, EventPartialPayment, pendingPartial},
	{pendingPartial, EventPartialPayment, pendingPartial},
	{pendingOverdue, EventPartialPayment, pendingPartial},

	{pendingUnpaid, EventFullPayment, confirmed},
	{pendingPartial, EventFullPayment, confirmed},
	{pendingOverdue, EventFullPayment, confirmed},

	{pendingUnpaid, EventDeadlineLapsed, pendingOverdue},
	{pendingPartial, EventDeadlineLapsed, pendingOverdue},

	{pendingPartial, EventCancelWithRefund, cancelledRefundPending},
	{pendingOverdue, EventCancelWithRefund, cancelledRefundPending},
	{confirmed, EventCancelWithRefund, cancelledRefundPending},

	// Без возврата статус оплаты остаётся прежним.
	{pendingUnpaid, EventCancelWithoutRefund, State{model.BookingStatusCancelled, model.PaymentStatusPending}},
	{pendingPartial, EventCancelWithoutRefund, State{model.BookingStatusCancelled, model.PaymentStatusPartiallyPaid}},
	{pendingOverdue, EventCancelWithoutRefund, State{model.BookingStatusCancelled, model.PaymentStatusOverdue}},
	{confirmed, EventCancelWithoutRefund, State{model.BookingStatusCancelled, model.PaymentStatusFullyPaid}},

	{cancelledRefundPending, EventRefundSettled, cancelledRefunded},
})

// buildTable падает при старте пакета, если в таблице есть недопустимое состояние
// или повтор, так что некорректный переход не доживает до рантайма.
func buildTable(rows []struct {
	from  State
	event Event
	to    State
}) map[key]State {
	table := make(map[key]State, len(rows))
	for _, r := range rows {
		if !r.from.Valid() || !r.to.Valid() {
			panic(fmt.Sprintf("lifecycle: invalid state in transition %s --%s--> %s", r.from, r.event, r.to))
		}
		k := key{from: r.from, event: r.event}
		if _, dup := table[k]; dup {
			panic(fmt.Sprintf("lifecycle: duplicate transition %s --%s-->", r.from, r.event))
		}
		table[k] = r.to
	}
	return table
}

// Next возвращает состояние после события или ErrIllegalTransition.
func Next(from State, ev Event) (State, error) {
	to, ok := transitions[key{from: from, event: ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, ev, from)
	}
	return to, nil
}

// Apply переводит бронирование в следующее состояние.
func Apply(b *model.Booking, ev Event) error {
	to, err := Next(Of(b), ev)
	if err != nil {
		return err
	}
	b.Status = to.Status
	b.PaymentStatus = to.Payment
	return nil
}

// PaymentEvent выбирает событие по остатку после зачисления платежа.
func PaymentEvent(remainingAfter int64) Event {
	if remainingAfter == 0 {
		return EventFullPayment
	}
	return EventPartialPayment
}

// CancelEvent выбирает событие отмены по сумме возврата.
func CancelEvent(refundAmount int64) Event {
	if refundAmount > 0 {
		return EventCancelWithRefund
	}
	return EventCancelWithoutRefund
}

// SweepableStatuses — статусы оплаты, которые переводятся в OVERDUE по дедлайну.
func SweepableStatuses() []model.PaymentStatus {
	var out []model.PaymentStatus
	for k := range transitions {
		if k.event == EventDeadlineLapsed && k.from.Status == model.BookingStatusPending {
			out = append(out, k.from.Payment)
		}
	}
	slices.Sort(out)
	return out
}
