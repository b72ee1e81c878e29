package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/travel-booking/internal/calendar"
	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/policy"
	"github.com/Leganyst/travel-booking/internal/repository"
)

// PayoutService строит график выплат хосту и ведёт их расчёт.
type PayoutService struct {
	*base
	commissionPercent int
}

// Wallet: сводка выплат хоста по всем бронированиям.
type Wallet struct {
	HostID        uuid.UUID
	TotalEarnings int64
	Received      int64
	// PENDING с наступившим сроком.
	Pending int64
	// PENDING со сроком в будущем.
	Upcoming int64
	Failed   int64
}

// schedule создаёт две выплаты для только что полностью оплаченного бронирования.
// Вызывается внутри транзакции платежа; повторный вызов упрётся в уникальный
// индекс (booking_id, installment).
func (s *PayoutService) schedule(
	ctx context.Context,
	r *repository.Repositories,
	b *model.Booking,
	hostID uuid.UUID,
) ([]model.Payout, error) {
	net := policy.HostNet(b.TotalPrice, s.commissionPercent)
	parts := policy.SplitPayout(net, b.StartTime())

	payouts := make([]model.Payout, 0, len(parts))
	for _, p := range parts {
		payouts = append(payouts, model.Payout{
			BookingID:     b.ID,
			Installment:   p.Number,
			HostID:        hostID,
			Percent:       p.Percent,
			Amount:        p.Amount,
			ScheduledDate: p.ScheduledDate,
			Status:        model.PayoutStatusPending,
		})
	}
	if err := r.Payouts.CreateBatch(ctx, payouts); err != nil {
		return nil, err
	}
	if err := appendEvent(ctx, r, model.EventTypePayoutScheduled, uuid.Nil, b.ID, map[string]any{
		"host_id": hostID.String(),
		"net":     net,
		"first":   payouts[0].Amount,
		"second":  payouts[1].Amount,
	}); err != nil {
		return nil, err
	}
	return payouts, nil
}

// SettlePayout: расчёт подтвердил перевод: PENDING → PAID.
func (s *PayoutService) SettlePayout(ctx context.Context, payoutID uuid.UUID, settlementRef string) (*model.Payout, error) {
	now := s.now()
	var ref *string
	if settlementRef != "" {
		ref = &settlementRef
	}
	p, err := s.transition(ctx, payoutID, "settle payout", model.PayoutStatusPending, map[string]any{
		"status":         model.PayoutStatusPaid,
		"paid_at":        now,
		"settlement_ref": ref,
	}, model.EventTypePayoutSettled)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.EventPayoutProcessed, p.HostID, "host", map[string]any{
		"payout_id": p.ID.String(),
		"amount":    p.Amount,
		"status":    p.Status,
	})
	return p, nil
}

// FailPayout: перевод не прошёл: PENDING → FAILED.
func (s *PayoutService) FailPayout(ctx context.Context, payoutID uuid.UUID, reason string) (*model.Payout, error) {
	if reason == "" {
		return nil, domain.ValidationError{Field: "reason", Msg: "is required"}
	}
	p, err := s.transition(ctx, payoutID, "fail payout", model.PayoutStatusPending, map[string]any{
		"status":         model.PayoutStatusFailed,
		"failure_reason": reason,
	}, model.EventTypePayoutSettled)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify.EventPayoutProcessed, p.HostID, "host", map[string]any{
		"payout_id": p.ID.String(),
		"amount":    p.Amount,
		"status":    p.Status,
		"reason":    reason,
	})
	return p, nil
}

// RetryPayout возвращает упавшую выплату в очередь: FAILED → PENDING.
func (s *PayoutService) RetryPayout(ctx context.Context, payoutID uuid.UUID) (*model.Payout, error) {
	return s.transition(ctx, payoutID, "retry payout", model.PayoutStatusFailed, map[string]any{
		"status":         model.PayoutStatusPending,
		"failure_reason": "",
	}, model.EventTypePayoutScheduled)
}

func (s *PayoutService) transition(
	ctx context.Context,
	payoutID uuid.UUID,
	action string,
	from model.PayoutStatus,
	update map[string]any,
	eventType model.EventType,
) (*model.Payout, error) {
	var payout *model.Payout
	err := s.runTx(ctx, "payout", func(r *repository.Repositories) error {
		p, err := r.Payouts.GetByID(ctx, payoutID)
		if err != nil {
			return notFound(err, "payout")
		}
		if p.Status != from {
			return domain.NotAllowedError{Action: action, Msg: "payout is " + string(p.Status)}
		}
		if from == model.PayoutStatusFailed {
			b, err := r.Bookings.GetByID(ctx, p.BookingID)
			if err != nil {
				return notFound(err, "booking")
			}
			if b.Status == model.BookingStatusCancelled {
				return domain.NotAllowedError{Action: action, Msg: "booking is cancelled"}
			}
		}
		if err := r.Payouts.Transition(ctx, p.ID, from, update); err != nil {
			if err == repository.ErrPayoutStatusChanged {
				return domain.ConflictError{Resource: "payout", Msg: "status changed concurrently", Err: err}
			}
			return err
		}
		if payout, err = r.Payouts.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return appendEvent(ctx, r, eventType, uuid.Nil, p.BookingID, map[string]any{
			"payout_id":   p.ID.String(),
			"installment": p.Installment,
			"from":        from,
			"to":          payout.Status,
		})
	})
	if err != nil {
		return nil, s.fail(ctx, action, err, logrus.Fields{"payout_id": payoutID})
	}
	return payout, nil
}

func (s *PayoutService) ListHostPayouts(
	ctx context.Context,
	hostID uuid.UUID,
	req calendar.PageRequest,
) (calendar.Page[model.Payout], error) {
	req = req.Normalize()
	items, total, err := s.store.Repos().Payouts.ListByHost(ctx, hostID, req.PageSize, req.Offset())
	if err != nil {
		return calendar.Page[model.Payout]{}, s.fail(ctx, "list host payouts", err, logrus.Fields{"host_id": hostID})
	}
	return calendar.NewPage(items, req, total), nil
}

func (s *PayoutService) ListBookingPayouts(ctx context.Context, bookingID uuid.UUID) ([]model.Payout, error) {
	items, err := s.store.Repos().Payouts.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, s.fail(ctx, "list booking payouts", err, logrus.Fields{"booking_id": bookingID})
	}
	return items, nil
}

// HostWallet: pending/upcoming делятся по сроку относительно текущего момента.
func (s *PayoutService) HostWallet(ctx context.Context, hostID uuid.UUID) (*Wallet, error) {
	sums, err := s.store.Repos().Payouts.SumsByHost(ctx, hostID, s.now())
	if err != nil {
		return nil, s.fail(ctx, "host wallet", err, logrus.Fields{"host_id": hostID})
	}
	return &Wallet{
		HostID:        hostID,
		TotalEarnings: sums.TotalEarnings,
		Received:      sums.Received,
		Pending:       sums.Pending,
		Upcoming:      sums.Upcoming,
		Failed:        sums.Failed,
	}, nil
}
