package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Leganyst/travel-booking/internal/calendar"
	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/lifecycle"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/policy"
	"github.com/Leganyst/travel-booking/internal/repository"
)

// BookingService — создание бронирования, анкета гостей, смена статуса и отмена.
type BookingService struct {
	*base
	capacity *CapacityService
}

type GuestInput struct {
	FullName string
	Email    string
	Phone    string
	IsLead   bool
}

type CreateBookingInput struct {
	UserID              uuid.UUID
	TravelPlanID        uuid.UUID
	StartDate           time.Time
	EndDate             time.Time
	Participants        int
	Guests              []GuestInput
	AllowPartialPayment bool
	SpecialRequirements string
}

type UpdateGuestInfoInput struct {
	Participants        int
	Guests              []GuestInput
	SpecialRequirements string
}

type CancelResult struct {
	Booking *model.Booking
	Refund  policy.RefundQuote
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	now := s.now()
	fields := logrus.Fields{"user_id": in.UserID, "travel_plan_id": in.TravelPlanID}

	if in.UserID == uuid.Nil {
		return nil, domain.ValidationError{Field: "userId", Msg: "is required"}
	}
	if in.Participants < 1 {
		return nil, domain.ValidationError{Field: "participants", Msg: "must be at least 1"}
	}
	trip, err := calendar.NewTripRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, domain.ValidationError{Field: "dates", Msg: err.Error(), Err: err}
	}
	if trip.Start.Before(calendar.DateOnly(now)) {
		return nil, domain.ValidationError{Field: "startDate", Msg: "must not be in the past"}
	}
	guests, err := buildGuests(in.Guests, in.Participants)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		plan, err := r.Plans.GetByID(ctx, in.TravelPlanID)
		if err != nil {
			if domain.IsNotFound(notFound(err, "travel plan")) {
				return domain.ValidationError{Field: "travelPlanId", Msg: "travel plan does not exist", Err: err}
			}
			return err
		}
		if plan.Status != model.PlanStatusActive {
			return domain.NotAvailableError{Resource: "travel plan", Msg: "plan is not active"}
		}
		if in.Participants > plan.MaxParticipants {
			return domain.ValidationError{Field: "participants", Msg: "exceeds plan maximum"}
		}
		if in.Participants > plan.AvailableSlots {
			return domain.NotAvailableError{Resource: "travel plan", Msg: "not enough free slots"}
		}

		total := policy.TotalPrice(plan.PricePerPerson, in.Participants)
		b := &model.Booking{
			UserID:              in.UserID,
			TravelPlanID:        plan.ID,
			StartDate:           datatypes.Date(trip.Start),
			EndDate:             datatypes.Date(trip.End),
			Participants:        in.Participants,
			PricePerPerson:      plan.PricePerPerson,
			TotalPrice:          total,
			RemainingAmount:     total,
			MinPaymentAmount:    policy.MinPaymentAmount(total),
			Status:              lifecycle.Initial.Status,
			PaymentStatus:       lifecycle.Initial.Payment,
			AllowPartialPayment: in.AllowPartialPayment,
			SpecialRequirements: in.SpecialRequirements,
			FormSubmitted:       len(guests) > 0,
			Guests:              guests,
		}
		if in.AllowPartialPayment {
			deadline := policy.PaymentDeadline(trip.Start, now)
			if !deadline.After(now) {
				return domain.ValidationError{Field: "startDate", Msg: "too close to allow partial payment"}
			}
			b.PaymentDeadline = &deadline
		}

		if err := r.Bookings.Create(ctx, b); err != nil {
			return err
		}
		booking = b
		return appendEvent(ctx, r, model.EventTypeBookingCreated, b.UserID, b.ID, map[string]any{
			"total_price":   b.TotalPrice,
			"participants":  b.Participants,
			"allow_partial": b.AllowPartialPayment,
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "create booking", err, fields)
	}

	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"user_id":     booking.UserID,
		"total_price": booking.TotalPrice,
	}).Info("booking created")
	return booking, nil
}

func (s *BookingService) UpdateGuestInfo(
	ctx context.Context,
	caller, bookingID uuid.UUID,
	in UpdateGuestInfoInput,
) (*model.Booking, error) {
	fields := logrus.Fields{"booking_id": bookingID, "user_id": caller}

	if in.Participants < 1 {
		return nil, domain.ValidationError{Field: "participants", Msg: "must be at least 1"}
	}
	guests, err := buildGuests(in.Guests, in.Participants)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		b, err := loadOwned(ctx, r, bookingID, caller)
		if err != nil {
			return err
		}
		if lifecycle.Of(b).Cancelled() {
			return domain.NotAllowedError{Action: "update guest info", Msg: "booking is cancelled"}
		}

		if in.Participants != b.Participants {
			if b.PaymentStatus == model.PaymentStatusFullyPaid {
				return domain.NotAllowedError{Action: "change participants", Msg: "booking is fully paid"}
			}
			plan, err := r.Plans.GetByID(ctx, b.TravelPlanID)
			if err != nil {
				return notFound(err, "travel plan")
			}
			if in.Participants > plan.MaxParticipants {
				return domain.ValidationError{Field: "participants", Msg: "exceeds plan maximum"}
			}
			if in.Participants > b.Participants && in.Participants > plan.AvailableSlots {
				return domain.NotAvailableError{Resource: "travel plan", Msg: "not enough free slots"}
			}

			total := policy.TotalPrice(b.PricePerPerson, in.Participants)
			if total < b.AmountPaid || (b.AmountPaid > 0 && total == b.AmountPaid) {
				return domain.ValidationError{Field: "participants", Msg: "new total must exceed the amount already paid"}
			}
			b.Participants = in.Participants
			b.TotalPrice = total
			b.RemainingAmount = policy.Remaining(total, b.AmountPaid)
			b.MinPaymentAmount = policy.MinPaymentAmount(total)
		}

		b.SpecialRequirements = in.SpecialRequirements
		b.FormSubmitted = true

		if err := r.Bookings.SaveState(ctx, b); err != nil {
			return err
		}
		if err := r.Guests.Replace(ctx, b.ID, guests); err != nil {
			return err
		}
		if err := appendEvent(ctx, r, model.EventTypeBookingUpdated, caller, b.ID, map[string]any{
			"participants": b.Participants,
			"total_price":  b.TotalPrice,
			"guests":       len(guests),
		}); err != nil {
			return err
		}

		booking, err = r.Bookings.GetWithGuests(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "update guest info", err, fields)
	}
	return booking, nil
}

// UpdateStatus: ручная смена статуса владельцем. Допустима только отмена
// (без возврата); CONFIRMED выставляет только полная оплата.
func (s *BookingService) UpdateStatus(
	ctx context.Context,
	caller, bookingID uuid.UUID,
	newStatus model.BookingStatus,
) (*model.Booking, error) {
	if newStatus != model.BookingStatusCancelled {
		return nil, domain.NotAllowedError{
			Action: "set status " + string(newStatus),
			Msg:    "only cancellation can be requested directly",
		}
	}

	var (
		booking *model.Booking
		hostID  uuid.UUID
	)
	err := s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		b, err := loadOwned(ctx, r, bookingID, caller)
		if err != nil {
			return err
		}
		if err := lifecycle.Apply(b, lifecycle.EventCancelWithoutRefund); err != nil {
			return domain.NotAllowedError{Action: "cancel", Msg: "booking is already cancelled", Err: err}
		}
		now := s.now()
		b.CancelledAt = &now

		if err := r.Bookings.SaveState(ctx, b); err != nil {
			return err
		}
		if _, err := r.Payouts.CancelPendingForBooking(ctx, b.ID); err != nil {
			return err
		}
		if hostID, err = planHost(ctx, r, b.TravelPlanID); err != nil {
			return err
		}
		booking = b
		return appendEvent(ctx, r, model.EventTypeBookingCancelled, caller, b.ID, map[string]any{
			"refund_amount": 0,
			"source":        "status_update",
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "update booking status", err, logrus.Fields{"booking_id": bookingID, "user_id": caller})
	}

	s.afterCancel(ctx, booking, hostID, 0)
	return booking, nil
}

// CancelBooking отменяет бронирование с возвратом по шкале RefundPercent.
// Повторное чтение, запись возврата, бронирования и отмена выплат идут одной транзакцией;
// возврат мест плана идёт отдельной транзакцией после коммита.
func (s *BookingService) CancelBooking(ctx context.Context, caller, bookingID uuid.UUID) (*CancelResult, error) {
	var (
		result CancelResult
		hostID uuid.UUID
	)
	err := s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		b, err := loadOwned(ctx, r, bookingID, caller)
		if err != nil {
			return err
		}
		if lifecycle.Of(b).Cancelled() {
			return domain.NotAllowedError{Action: "cancel", Msg: "booking is already cancelled"}
		}

		now := s.now()
		quote, err := policy.QuoteRefund(b.AmountPaid, b.StartTime(), now)
		if errors.Is(err, policy.ErrCancellationWindowClosed) {
			return domain.NotAllowedError{Action: "cancel", Msg: "less than 4 days before trip start", Err: err}
		}
		if err != nil {
			return err
		}

		if err := lifecycle.Apply(b, lifecycle.CancelEvent(quote.Amount)); err != nil {
			return domain.NotAllowedError{Action: "cancel", Err: err}
		}
		b.RefundAmount = quote.Amount
		b.CancelledAt = &now

		if err := r.Bookings.SaveState(ctx, b); err != nil {
			return err
		}
		if quote.Amount > 0 {
			if err := r.Payments.Append(ctx, &model.PartialPayment{
				BookingID:   b.ID,
				Amount:      -quote.Amount,
				PaymentType: model.PaymentTypeRefund,
				PaymentDate: now,
			}); err != nil {
				return err
			}
			if err := appendEvent(ctx, r, model.EventTypeRefundRecorded, caller, b.ID, map[string]any{
				"amount":  quote.Amount,
				"percent": quote.Percent,
			}); err != nil {
				return err
			}
		}
		if _, err := r.Payouts.CancelPendingForBooking(ctx, b.ID); err != nil {
			return err
		}
		if hostID, err = planHost(ctx, r, b.TravelPlanID); err != nil {
			return err
		}

		result = CancelResult{Booking: b, Refund: quote}
		return appendEvent(ctx, r, model.EventTypeBookingCancelled, caller, b.ID, map[string]any{
			"refund_amount":   quote.Amount,
			"refund_percent":  quote.Percent,
			"days_until_trip": quote.DaysUntilTrip,
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "cancel booking", err, logrus.Fields{"booking_id": bookingID, "user_id": caller})
	}

	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id":     result.Booking.ID,
		"refund_amount":  result.Refund.Amount,
		"payment_status": result.Booking.PaymentStatus,
	}).Info("booking cancelled")

	s.afterCancel(ctx, result.Booking, hostID, result.Refund.Amount)
	return &result, nil
}

func (s *BookingService) afterCancel(ctx context.Context, b *model.Booking, hostID uuid.UUID, refund int64) {
	if b.SeatsReserved {
		s.capacity.releaseSeats(ctx, b)
	}
	payload := map[string]any{
		"booking_id":    b.ID.String(),
		"refund_amount": refund,
		"trip":          calendar.FormatRange(calendar.DateRange{Start: b.StartTime(), End: time.Time(b.EndDate)}),
	}
	s.notify(ctx, notify.EventBookingCancelled, b.UserID, "guest", payload)
	s.notify(ctx, notify.EventBookingCancelled, hostID, "host", payload)
}

func (s *BookingService) GetBooking(ctx context.Context, caller, bookingID uuid.UUID) (*model.Booking, error) {
	b, err := s.store.Repos().Bookings.GetWithGuests(ctx, bookingID)
	if err != nil {
		return nil, s.fail(ctx, "get booking", notFound(err, "booking"), logrus.Fields{"booking_id": bookingID})
	}
	if b.UserID != caller {
		return nil, domain.AuthorizationError{Resource: "booking"}
	}
	return b, nil
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	caller uuid.UUID,
	req calendar.PageRequest,
) (calendar.Page[model.Booking], error) {
	req = req.Normalize()
	items, total, err := s.store.Repos().Bookings.ListByUser(ctx, caller, req.PageSize, req.Offset())
	if err != nil {
		return calendar.Page[model.Booking]{}, s.fail(ctx, "list bookings", err, logrus.Fields{"user_id": caller})
	}
	return calendar.NewPage(items, req, total), nil
}

func planHost(ctx context.Context, r *repository.Repositories, planID uuid.UUID) (uuid.UUID, error) {
	plan, err := r.Plans.GetByID(ctx, planID)
	if err != nil {
		return uuid.Nil, notFound(err, "travel plan")
	}
	return plan.HostID, nil
}

// buildGuests проверяет анкету: гостей не больше участников, у каждого есть имя.
// Если ведущий не указан, им становится первый гость.
func buildGuests(in []GuestInput, participants int) ([]model.Guest, error) {
	if len(in) > participants {
		return nil, domain.ValidationError{Field: "guests", Msg: "more guests than participants"}
	}
	guests := make([]model.Guest, 0, len(in))
	hasLead := false
	for _, g := range in {
		name := strings.TrimSpace(g.FullName)
		if name == "" {
			return nil, domain.ValidationError{Field: "guests.fullName", Msg: "is required"}
		}
		lead := g.IsLead && !hasLead
		hasLead = hasLead || lead
		guests = append(guests, model.Guest{
			FullName: name,
			Email:    strings.TrimSpace(g.Email),
			Phone:    strings.TrimSpace(g.Phone),
			IsLead:   lead,
		})
	}
	if len(guests) > 0 && !hasLead {
		guests[0].IsLead = true
	}
	return guests, nil
}
