package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/repository"
)

// CapacityService двигает свободные места плана. Места занимаются в транзакции
// полной оплаты, а возвращаются отдельной транзакцией после отмены: счётчик
// никогда не уходит ниже нуля и выше maxParticipants.
type CapacityService struct {
	*base
}

// AdjustPlanCapacity: delta < 0 занимает места, delta > 0 возвращает.
func (s *CapacityService) AdjustPlanCapacity(ctx context.Context, planID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	err := s.runTx(ctx, "travel plan", func(r *repository.Repositories) error {
		if _, err := r.Plans.GetByID(ctx, planID); err != nil {
			return notFound(err, "travel plan")
		}
		if delta > 0 {
			_, err := r.Plans.Release(ctx, planID, delta)
			return err
		}
		ok, err := r.Plans.Reserve(ctx, planID, -delta)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotAvailableError{Resource: "travel plan", Msg: "not enough free slots"}
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "adjust plan capacity", err, logrus.Fields{"travel_plan_id": planID, "delta": delta})
	}
	return nil
}

// takeSeats занимает места под бронирование в транзакции оплаты, которая его
// подтверждает. Флаг seats_reserved не даёт занять места дважды; если мест нет,
// транзакция откатывается и бронирование остаётся неоплаченным.
func takeSeats(ctx context.Context, r *repository.Repositories, b *model.Booking) error {
	flipped, err := r.Bookings.SetSeatsReserved(ctx, b.ID, true)
	if err != nil || !flipped {
		return err
	}
	ok, err := r.Plans.Reserve(ctx, b.TravelPlanID, b.Participants)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotAvailableError{Resource: "travel plan", Msg: "not enough free slots"}
	}
	b.SeatsReserved = true
	return nil
}

// releaseSeats возвращает места отменённого бронирования, если они были заняты.
func (s *CapacityService) releaseSeats(ctx context.Context, b *model.Booking) {
	err := s.runTx(ctx, "travel plan", func(r *repository.Repositories) error {
		flipped, err := r.Bookings.SetSeatsReserved(ctx, b.ID, false)
		if err != nil || !flipped {
			return err
		}
		_, err = r.Plans.Release(ctx, b.TravelPlanID, b.Participants)
		return err
	})
	if err != nil {
		s.log.WithContext(ctx).WithFields(logrus.Fields{
			"booking_id":     b.ID,
			"travel_plan_id": b.TravelPlanID,
		}).WithError(err).Warn("release seats failed")
	}
}
