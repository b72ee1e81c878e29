package service

import (
	"context"
	"testing"
	"time"

	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
)

func TestRunOverdueSweep_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)

	unpaid := env.book(t, plan, 30, true)
	partial := env.book(t, plan, 30, true)
	env.pay(t, partial, 200, model.PaymentTypePartial)
	paid := env.book(t, plan, 30, true)
	env.pay(t, paid, 1000, model.PaymentTypeFull)
	noDeadline := env.book(t, plan, 30, false)

	n, err := env.engine.Sweeper.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("nothing is overdue yet, got %d", n)
	}

	// дедлайн today+7 остался позади
	env.clock.Advance(8 * 24 * time.Hour)

	n, err = env.engine.Sweeper.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 overdue bookings, got %d", n)
	}

	n, err = env.engine.Sweeper.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep must change nothing, got %d", n)
	}

	for _, b := range []*model.Booking{unpaid, partial} {
		got := env.checkLedger(t, b.ID)
		if got.PaymentStatus != model.PaymentStatusOverdue || got.Status != model.BookingStatusPending {
			t.Fatalf("unexpected state %s/%s", got.Status, got.PaymentStatus)
		}
	}
	if got := env.reload(t, paid.ID); got.PaymentStatus != model.PaymentStatusFullyPaid {
		t.Fatalf("paid booking must not be swept, got %s", got.PaymentStatus)
	}
	if got := env.reload(t, noDeadline.ID); got.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("booking without deadline must not be swept, got %s", got.PaymentStatus)
	}

	// просроченное бронирование всё ещё можно оплатить
	res := env.pay(t, partial, 800, model.PaymentTypePartial)
	if res.Booking.Status != model.BookingStatusConfirmed {
		t.Fatalf("overdue booking must accept the closing payment, got %s", res.Booking.Status)
	}

	events, err := env.repos.Events.ListByBooking(context.Background(), unpaid.ID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	overdue := 0
	for _, e := range events {
		if e.EventType == model.EventTypeBookingOverdue {
			overdue++
		}
	}
	if overdue != 1 {
		t.Fatalf("expected one overdue audit event, got %d", overdue)
	}
}

func TestSendPaymentReminders(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)
	b := env.book(t, plan, 30, true)

	n, err := env.engine.Sweeper.SendPaymentReminders(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if n != 0 {
		t.Fatalf("deadline is a week away, got %d reminders", n)
	}

	env.clock.Advance(6 * 24 * time.Hour)
	n, err = env.engine.Sweeper.SendPaymentReminders(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if n != 1 || env.notifier.Count(notify.EventPaymentReminder) != 1 {
		t.Fatalf("expected one reminder, got %d", n)
	}
	if env.notifier.Sent[len(env.notifier.Sent)-1].Recipient.UserID != b.UserID.String() {
		t.Fatalf("reminder sent to wrong recipient")
	}
}
