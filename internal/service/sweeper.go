package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/travel-booking/internal/lifecycle"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/repository"
)

// Sweeper — периодические пакетные задачи. Своего таймера не имеет,
// запускается снаружи (cron, тикер в cmd, gRPC).
type Sweeper struct {
	*base
}

// RunOverdueSweep переводит в OVERDUE неоплаченные бронирования с истёкшим
// дедлайном и возвращает число изменённых. Повторный запуск вернёт 0.
func (s *Sweeper) RunOverdueSweep(ctx context.Context) (int, error) {
	now := s.now()
	statuses := lifecycle.SweepableStatuses()

	updated := 0
	err := s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		updated = 0
		ids, err := r.Bookings.ListOverdueCandidates(ctx, now, statuses)
		if err != nil {
			return err
		}
		for _, id := range ids {
			ok, err := r.Bookings.MarkOverdue(ctx, id, now, statuses)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			updated++
			if err := appendEvent(ctx, r, model.EventTypeBookingOverdue, uuid.Nil, id, map[string]any{
				"swept_at": now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, s.fail(ctx, "overdue sweep", err, logrus.Fields{"now": now})
	}

	s.log.WithContext(ctx).WithField("updated", updated).Info("overdue sweep finished")
	return updated, nil
}

// SendPaymentReminders напоминает владельцам неоплаченных бронирований,
// у которых дедлайн наступит в ближайшие window. Возвращает число отправленных.
func (s *Sweeper) SendPaymentReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	bookings, err := s.store.Repos().Bookings.ListDeadlineBetween(ctx, now, now.Add(window), []model.PaymentStatus{
		model.PaymentStatusPending,
		model.PaymentStatusPartiallyPaid,
	})
	if err != nil {
		return 0, s.fail(ctx, "payment reminders", err, logrus.Fields{"window": window})
	}

	sent := 0
	for _, b := range bookings {
		if s.notifier == nil {
			break
		}
		err := s.notifier.Notify(ctx, notify.EventPaymentReminder, notify.Recipient{
			UserID: b.UserID.String(),
			Role:   "guest",
		}, map[string]any{
			"booking_id":       b.ID.String(),
			"remaining":        b.RemainingAmount,
			"min_payment":      b.MinPaymentAmount,
			"payment_deadline": b.PaymentDeadline,
		})
		if err != nil {
			s.log.WithContext(ctx).WithField("booking_id", b.ID).WithError(err).Warn("payment reminder failed")
			continue
		}
		sent++
	}
	return sent, nil
}
