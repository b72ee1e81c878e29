package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/travel-booking/internal/calendar"
	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
)

func createInput(plan *model.TravelPlan, start time.Time, participants int) CreateBookingInput {
	return CreateBookingInput{
		UserID:       uuid.New(),
		TravelPlanID: plan.ID,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 3),
		Participants: participants,
	}
}

func TestCreateBooking_CapacityBoundary(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 300, 4)
	start := env.clock.Now().AddDate(0, 0, 30)

	_, err := env.engine.Bookings.CreateBooking(context.Background(), createInput(plan, start, 5))
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for max+1 participants, got %v", err)
	}

	b, err := env.engine.Bookings.CreateBooking(context.Background(), createInput(plan, start, 4))
	if err != nil {
		t.Fatalf("expected success at max participants, got %v", err)
	}
	if b.TotalPrice != 1200 || b.RemainingAmount != 1200 || b.MinPaymentAmount != 240 {
		t.Fatalf("unexpected money fields total=%d remaining=%d min=%d", b.TotalPrice, b.RemainingAmount, b.MinPaymentAmount)
	}
	if b.Status != model.BookingStatusPending || b.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("unexpected initial state %s/%s", b.Status, b.PaymentStatus)
	}
	if b.PaymentDeadline != nil {
		t.Fatalf("deadline must be nil without partial payment")
	}
	env.checkLedger(t, b.ID)
}

func TestCreateBooking_Rejections(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)
	now := env.clock.Now()

	inactive := env.seedPlan(t, 500, 10)
	if err := env.db.Model(inactive).Update("status", model.PlanStatusInactive).Error; err != nil {
		t.Fatalf("deactivate plan: %v", err)
	}

	cases := []struct {
		name  string
		in    CreateBookingInput
		check func(error) bool
	}{
		{"zero participants", createInput(plan, now.AddDate(0, 0, 30), 0), domain.IsValidation},
		{"start in the past", createInput(plan, now.AddDate(0, 0, -1), 2), domain.IsValidation},
		{"unknown plan", createInput(&model.TravelPlan{ID: uuid.New()}, now.AddDate(0, 0, 30), 2), domain.IsValidation},
		{"inactive plan", createInput(inactive, now.AddDate(0, 0, 30), 2), domain.IsNotAvailable},
	}
	endBeforeStart := createInput(plan, now.AddDate(0, 0, 30), 2)
	endBeforeStart.EndDate = endBeforeStart.StartDate.AddDate(0, 0, -2)
	cases = append(cases, struct {
		name  string
		in    CreateBookingInput
		check func(error) bool
	}{"end before start", endBeforeStart, domain.IsValidation})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.Bookings.CreateBooking(context.Background(), tc.in)
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestCreateBooking_NotEnoughFreeSlots(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	if err := env.db.Model(plan).Update("available_slots", 1).Error; err != nil {
		t.Fatalf("update slots: %v", err)
	}

	_, err := env.engine.Bookings.CreateBooking(context.Background(), createInput(plan, env.clock.Now().AddDate(0, 0, 30), 2))
	if !domain.IsNotAvailable(err) {
		t.Fatalf("expected NotAvailableError, got %v", err)
	}
}

func TestCreateBooking_PaymentDeadline(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)
	today := calendar.DateOnly(env.clock.Now())

	far := env.book(t, plan, 30, true)
	if far.PaymentDeadline == nil || !far.PaymentDeadline.Equal(today.AddDate(0, 0, 7)) {
		t.Fatalf("expected deadline today+7, got %v", far.PaymentDeadline)
	}

	near := env.book(t, plan, 12, true)
	wantNear := calendar.DateOnly(env.clock.Now().AddDate(0, 0, 12)).AddDate(0, 0, -10)
	if near.PaymentDeadline == nil || !near.PaymentDeadline.Equal(wantNear) {
		t.Fatalf("expected deadline start-10, got %v", near.PaymentDeadline)
	}

	in := createInput(plan, env.clock.Now().AddDate(0, 0, 10), 2)
	in.AllowPartialPayment = true
	_, err := env.engine.Bookings.CreateBooking(context.Background(), in)
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for deadline already passed, got %v", err)
	}

	in.AllowPartialPayment = false
	if _, err := env.engine.Bookings.CreateBooking(context.Background(), in); err != nil {
		t.Fatalf("same dates without partial payment must succeed, got %v", err)
	}
}

func TestUpdateGuestInfo(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 30, true)
	env.pay(t, b, 200, model.PaymentTypePartial)

	updated, err := env.engine.Bookings.UpdateGuestInfo(context.Background(), b.UserID, b.ID, UpdateGuestInfoInput{
		Participants:        3,
		Guests:              []GuestInput{{FullName: "Anna"}, {FullName: "Boris", IsLead: true}, {FullName: "Vera"}},
		SpecialRequirements: "vegetarian",
	})
	if err != nil {
		t.Fatalf("update guest info: %v", err)
	}
	if updated.TotalPrice != 1500 || updated.RemainingAmount != 1300 || updated.MinPaymentAmount != 300 {
		t.Fatalf("unexpected totals %d/%d/%d", updated.TotalPrice, updated.RemainingAmount, updated.MinPaymentAmount)
	}
	if !updated.FormSubmitted || updated.SpecialRequirements != "vegetarian" {
		t.Fatalf("form fields not saved")
	}
	if len(updated.Guests) != 3 || updated.Guests[0].FullName != "Boris" {
		t.Fatalf("unexpected roster %+v", updated.Guests)
	}
	env.checkLedger(t, b.ID)

	_, err = env.engine.Bookings.UpdateGuestInfo(context.Background(), uuid.New(), b.ID, UpdateGuestInfoInput{Participants: 3})
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError for foreign caller, got %v", err)
	}

	_, err = env.engine.Bookings.UpdateGuestInfo(context.Background(), b.UserID, b.ID, UpdateGuestInfoInput{Participants: 5})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError above plan maximum, got %v", err)
	}

	_, err = env.engine.Bookings.UpdateGuestInfo(context.Background(), b.UserID, b.ID, UpdateGuestInfoInput{
		Participants: 1,
		Guests:       []GuestInput{{FullName: "A"}, {FullName: "B"}},
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for more guests than participants, got %v", err)
	}
}

func TestUpdateGuestInfo_FullyPaidKeepsParticipants(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 30, false)
	env.pay(t, b, 1000, model.PaymentTypeFull)

	_, err := env.engine.Bookings.UpdateGuestInfo(context.Background(), b.UserID, b.ID, UpdateGuestInfoInput{Participants: 3})
	if !domain.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError, got %v", err)
	}

	updated, err := env.engine.Bookings.UpdateGuestInfo(context.Background(), b.UserID, b.ID, UpdateGuestInfoInput{
		Participants: 2,
		Guests:       []GuestInput{{FullName: "Anna"}},
	})
	if err != nil {
		t.Fatalf("roster update with same participants must succeed: %v", err)
	}
	if updated.Status != model.BookingStatusConfirmed || len(updated.Guests) != 1 {
		t.Fatalf("unexpected booking after roster update %+v", updated)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 30, true)
	env.pay(t, b, 300, model.PaymentTypePartial)

	_, err := env.engine.Bookings.UpdateStatus(context.Background(), b.UserID, b.ID, model.BookingStatusConfirmed)
	if !domain.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError for manual confirm, got %v", err)
	}

	got, err := env.engine.Bookings.UpdateStatus(context.Background(), b.UserID, b.ID, model.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("cancel via status: %v", err)
	}
	if got.Status != model.BookingStatusCancelled || got.PaymentStatus != model.PaymentStatusPartiallyPaid {
		t.Fatalf("unexpected state %s/%s", got.Status, got.PaymentStatus)
	}
	if got.CancelledAt == nil {
		t.Fatalf("cancelledAt must be stamped")
	}

	_, err = env.engine.Bookings.UpdateStatus(context.Background(), b.UserID, b.ID, model.BookingStatusCancelled)
	if !domain.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError on second cancel, got %v", err)
	}
	if env.notifier.Count(notify.EventBookingCancelled) != 2 {
		t.Fatalf("expected guest and host notified once, got %d", env.notifier.Count(notify.EventBookingCancelled))
	}
}

func TestCancelBooking_TwentyDaysOut(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 20, true)
	env.pay(t, b, 500, model.PaymentTypePartial)

	res, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Refund.DaysUntilTrip != 20 || res.Refund.Percent != 80 || res.Refund.Amount != 400 {
		t.Fatalf("unexpected refund quote %+v", res.Refund)
	}

	got := env.checkLedger(t, b.ID)
	if got.Status != model.BookingStatusCancelled || got.PaymentStatus != model.PaymentStatusCancelled {
		t.Fatalf("unexpected state %s/%s", got.Status, got.PaymentStatus)
	}
	if got.RefundAmount != 400 || got.CancelledAt == nil {
		t.Fatalf("refund not recorded on booking")
	}

	payments, err := env.engine.Payments.ListPayments(context.Background(), b.UserID, b.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	last := payments[len(payments)-1]
	if len(payments) != 2 || last.PaymentType != model.PaymentTypeRefund || last.Amount != -400 {
		t.Fatalf("unexpected ledger %+v", payments)
	}
}

func TestCancelBooking_TwiceRefundsOnce(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 20, true)
	env.pay(t, b, 500, model.PaymentTypePartial)

	if _, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
	if !domain.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError on second cancel, got %v", err)
	}

	n, err := env.repos.Payments.CountByType(context.Background(), b.ID, model.PaymentTypeRefund)
	if err != nil {
		t.Fatalf("count refunds: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one refund entry, got %d", n)
	}
}

func TestCancelBooking_ConcurrentRefundsOnce(t *testing.T) {
	env := newFileTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 20, true)
	env.pay(t, b, 500, model.PaymentTypePartial)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !domain.IsNotAllowed(err) && !domain.IsConflict(err) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one cancellation to win, got %d", succeeded)
	}
	n, err := env.repos.Payments.CountByType(context.Background(), b.ID, model.PaymentTypeRefund)
	if err != nil {
		t.Fatalf("count refunds: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one refund entry, got %d", n)
	}
	got := env.checkLedger(t, b.ID)
	if got.Status != model.BookingStatusCancelled || got.RefundAmount != 400 {
		t.Fatalf("unexpected state %s refund=%d", got.Status, got.RefundAmount)
	}
}

func TestCancelBooking_InsideWindow(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 3, false)

	_, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
	if !domain.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError inside 4-day window, got %v", err)
	}
	if got := env.reload(t, b.ID); got.Status != model.BookingStatusPending {
		t.Fatalf("booking must stay pending, got %s", got.Status)
	}
}

func TestCancelBooking_UnpaidKeepsPaymentStatus(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 4)
	b := env.book(t, plan, 30, true)

	res, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Refund.Amount != 0 || res.Booking.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("unpaid cancellation must not refund, got %+v %s", res.Refund, res.Booking.PaymentStatus)
	}
	n, _ := env.repos.Payments.CountByType(context.Background(), b.ID, model.PaymentTypeRefund)
	if n != 0 {
		t.Fatalf("expected no refund entries, got %d", n)
	}
}

func TestCancelBooking_ReleasesSeatsAndCancelsPayouts(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)
	b := env.book(t, plan, 40, false)
	env.pay(t, b, 1000, model.PaymentTypeFull)

	p, _ := env.repos.Plans.GetByID(context.Background(), plan.ID)
	if p.AvailableSlots != 8 {
		t.Fatalf("expected 8 free slots after full payment, got %d", p.AvailableSlots)
	}

	res, err := env.engine.Bookings.CancelBooking(context.Background(), b.UserID, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Refund.Percent != 100 || res.Refund.Amount != 1000 {
		t.Fatalf("unexpected refund %+v", res.Refund)
	}

	p, _ = env.repos.Plans.GetByID(context.Background(), plan.ID)
	if p.AvailableSlots != 10 {
		t.Fatalf("expected slots released, got %d", p.AvailableSlots)
	}
	if env.reload(t, b.ID).SeatsReserved {
		t.Fatalf("seats flag must be cleared")
	}

	payouts, err := env.repos.Payouts.ListByBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("list payouts: %v", err)
	}
	for _, po := range payouts {
		if po.Status != model.PayoutStatusCancelled {
			t.Fatalf("payout %d not cancelled: %s", po.Installment, po.Status)
		}
	}
	env.checkLedger(t, b.ID)
}

func TestGetAndListBookings(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, 500, 10)
	user := uuid.New()

	for i := 0; i < 3; i++ {
		in := createInput(plan, env.clock.Now().AddDate(0, 0, 30+i), 1)
		in.UserID = user
		if _, err := env.engine.Bookings.CreateBooking(context.Background(), in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := env.engine.Bookings.ListBookings(context.Background(), user, calendar.PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 3 || !page.HasNext || page.HasPrev {
		t.Fatalf("unexpected page %+v", page)
	}

	if _, err := env.engine.Bookings.GetBooking(context.Background(), user, page.Items[0].ID); err != nil {
		t.Fatalf("get own booking: %v", err)
	}
	if _, err := env.engine.Bookings.GetBooking(context.Background(), uuid.New(), page.Items[0].ID); !domain.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if _, err := env.engine.Bookings.GetBooking(context.Background(), user, uuid.New()); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
