package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Leganyst/travel-booking/internal/calendar"
	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/lifecycle"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/policy"
	"github.com/Leganyst/travel-booking/internal/repository"
)

// PaymentService зачитывает платежи в бронирование и ведёт платёжный журнал.
type PaymentService struct {
	*base
	gateway gateway.Adapter
	payouts *PayoutService
}

type PaymentInput struct {
	Amount int64
	// PARTIAL или FULL; пустой тип определяется по сумме (FULL, если закрывает остаток).
	Type         model.PaymentType
	Confirmation *gateway.Confirmation
}

type PaymentResult struct {
	Booking *model.Booking
	Payment *model.PartialPayment
	// Выплаты хосту, созданные этим платежом (только при переходе в FULLY_PAID).
	Payouts []model.Payout
	// Подтверждение шлюза уже было зачтено раньше; ничего не изменилось.
	Duplicate bool
}

func (s *PaymentService) ApplyPayment(
	ctx context.Context,
	caller, bookingID uuid.UUID,
	in PaymentInput,
) (*PaymentResult, error) {
	if in.Amount <= 0 {
		return nil, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if err := validPaymentType(in.Type); err != nil {
		return nil, err
	}
	return s.apply(ctx, caller, bookingID, in, false)
}

// CompleteRemainingPayment оплачивает весь остаток одним FULL-платежом.
// Сумма берётся из свежепрочитанной строки внутри транзакции.
func (s *PaymentService) CompleteRemainingPayment(ctx context.Context, caller, bookingID uuid.UUID) (*PaymentResult, error) {
	return s.apply(ctx, caller, bookingID, PaymentInput{Type: model.PaymentTypeFull}, true)
}

func (s *PaymentService) apply(
	ctx context.Context,
	caller, bookingID uuid.UUID,
	in PaymentInput,
	settleRemaining bool,
) (*PaymentResult, error) {
	fields := logrus.Fields{"booking_id": bookingID, "user_id": caller, "amount": in.Amount}

	var (
		result PaymentResult
		hostID uuid.UUID
	)
	err := s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		result = PaymentResult{}

		if in.Confirmation != nil {
			seen, err := r.Payments.ExistsByGatewayTransaction(ctx, in.Confirmation.TransactionID)
			if err != nil {
				return err
			}
			if seen {
				b, err := loadOwned(ctx, r, bookingID, caller)
				if err != nil {
					return err
				}
				result = PaymentResult{Booking: b, Duplicate: true}
				return nil
			}
		}

		b, err := loadOwned(ctx, r, bookingID, caller)
		if err != nil {
			return err
		}

		amount := in.Amount
		if settleRemaining {
			if b.RemainingAmount == 0 {
				return domain.NotAllowedError{Action: "complete payment", Msg: "nothing left to pay"}
			}
			amount = b.RemainingAmount
		}
		paymentType, err := checkPayment(b, amount, in.Type)
		if err != nil {
			return err
		}

		paidAt := s.now()
		newPaid := b.AmountPaid + amount
		remaining := policy.Remaining(b.TotalPrice, newPaid)
		if err := lifecycle.Apply(b, lifecycle.PaymentEvent(remaining)); err != nil {
			return domain.NotAllowedError{Action: "apply payment", Err: err}
		}
		b.AmountPaid = newPaid
		b.RemainingAmount = remaining
		if b.PaymentStatus == model.PaymentStatusFullyPaid {
			if err := takeSeats(ctx, r, b); err != nil {
				return err
			}
		}

		payment := &model.PartialPayment{
			BookingID:   b.ID,
			Amount:      amount,
			PaymentType: paymentType,
			PaymentDate: paidAt,
		}
		if c := in.Confirmation; c != nil {
			txID, orderID := c.TransactionID, c.OrderID
			payment.GatewayTransactionID = &txID
			b.GatewayTransactionID = &txID
			b.GatewayOrderID = &orderID
			b.GatewayPayload = datatypes.JSON(mustJSON(c))
		}

		if err := r.Bookings.SaveState(ctx, b); err != nil {
			return err
		}
		if err := r.Payments.Append(ctx, payment); err != nil {
			return err
		}
		if err := appendEvent(ctx, r, model.EventTypePaymentApplied, caller, b.ID, map[string]any{
			"amount":         amount,
			"payment_type":   paymentType,
			"payment_status": b.PaymentStatus,
			"remaining":      b.RemainingAmount,
		}); err != nil {
			return err
		}

		result.Booking = b
		result.Payment = payment

		if b.PaymentStatus == model.PaymentStatusFullyPaid {
			if hostID, err = planHost(ctx, r, b.TravelPlanID); err != nil {
				return err
			}
			payouts, err := s.payouts.schedule(ctx, r, b, hostID)
			if err != nil {
				return err
			}
			result.Payouts = payouts
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "apply payment", err, fields)
	}
	if result.Duplicate {
		s.log.WithContext(ctx).WithFields(fields).Info("gateway confirmation already applied")
		return &result, nil
	}

	s.afterPayment(ctx, &result, hostID)
	return &result, nil
}

func (s *PaymentService) afterPayment(ctx context.Context, res *PaymentResult, hostID uuid.UUID) {
	b := res.Booking
	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"user_id":        b.UserID,
		"amount":         res.Payment.Amount,
		"payment_status": b.PaymentStatus,
	}).Info("payment applied")

	fullyPaid := b.PaymentStatus == model.PaymentStatusFullyPaid
	payload := map[string]any{
		"booking_id": b.ID.String(),
		"amount":     res.Payment.Amount,
		"remaining":  b.RemainingAmount,
		"fully_paid": fullyPaid,
	}
	if fullyPaid {
		trip := calendar.DateRange{Start: b.StartTime(), End: time.Time(b.EndDate)}
		payload["trip"] = calendar.FormatRange(trip)
		payload["nights"] = trip.Nights()
	}
	s.notify(ctx, notify.EventBookingConfirmation, b.UserID, "guest", payload)

	if !fullyPaid {
		return
	}
	s.notify(ctx, notify.EventBookingConfirmation, hostID, "host", payload)
	for _, p := range res.Payouts {
		s.notify(ctx, notify.EventPayoutCreated, hostID, "host", map[string]any{
			"payout_id":      p.ID.String(),
			"installment":    p.Installment,
			"amount":         p.Amount,
			"scheduled_date": p.ScheduledDate,
		})
	}
}

// StartCheckout проверяет условия оплаты на текущем состоянии бронирования
// (без транзакции) и открывает сессию во внешнем шлюзе.
func (s *PaymentService) StartCheckout(
	ctx context.Context,
	caller, bookingID uuid.UUID,
	amount int64,
	paymentType model.PaymentType,
) (*gateway.CheckoutSession, error) {
	fields := logrus.Fields{"booking_id": bookingID, "user_id": caller, "amount": amount}

	if err := validPaymentType(paymentType); err != nil {
		return nil, err
	}
	b, err := loadOwned(ctx, s.store.Repos(), bookingID, caller)
	if err != nil {
		return nil, s.fail(ctx, "start checkout", err, fields)
	}
	if amount == 0 {
		amount = b.RemainingAmount
	}
	if amount <= 0 {
		return nil, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if paymentType, err = checkPayment(b, amount, paymentType); err != nil {
		return nil, err
	}

	session, err := s.gateway.InitiateCheckout(ctx, gateway.CheckoutRequest{
		BookingID:   b.ID,
		PayerID:     caller,
		OrderID:     gateway.NewOrderID(b.ID),
		Amount:      amount,
		PaymentType: string(paymentType),
	})
	if err != nil {
		if errors.Is(err, gateway.ErrDeclined) {
			return nil, domain.NotAvailableError{Resource: "payment gateway", Msg: "checkout declined"}
		}
		return nil, s.fail(ctx, "start checkout", err, fields)
	}
	return session, nil
}

// HandleGatewayCallback зачитывает подтверждённый шлюзом платёж. Повтор
// того же transactionId ничего не меняет и возвращает успех.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, c gateway.Confirmation) (*PaymentResult, error) {
	if err := c.Validate(); err != nil {
		return nil, domain.ValidationError{Field: "confirmation", Msg: err.Error(), Err: err}
	}
	fields := logrus.Fields{"order_id": c.OrderID, "transaction_id": c.TransactionID, "amount": c.Amount}

	repos := s.store.Repos()
	var (
		b   *model.Booking
		err error
	)
	if id, perr := gateway.ParseOrderID(c.OrderID); perr == nil {
		b, err = repos.Bookings.GetByID(ctx, id)
	} else {
		b, err = repos.Bookings.GetByGatewayOrderID(ctx, c.OrderID)
	}
	if err != nil {
		return nil, s.fail(ctx, "gateway callback", notFound(err, "booking"), fields)
	}

	return s.apply(ctx, b.UserID, b.ID, PaymentInput{Amount: c.Amount, Confirmation: &c}, false)
}

// ConfirmRefund: внешний расчёт подтвердил возврат: CANCELLED → REFUNDED.
func (s *PaymentService) ConfirmRefund(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	var booking *model.Booking
	err := s.runTx(ctx, "booking", func(r *repository.Repositories) error {
		b, err := r.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking")
		}
		if err := lifecycle.Apply(b, lifecycle.EventRefundSettled); err != nil {
			return domain.NotAllowedError{Action: "confirm refund", Msg: "no refund awaiting settlement", Err: err}
		}
		if err := r.Bookings.SaveState(ctx, b); err != nil {
			return err
		}
		booking = b
		return appendEvent(ctx, r, model.EventTypeRefundRecorded, uuid.Nil, b.ID, map[string]any{
			"amount":  b.RefundAmount,
			"settled": true,
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "confirm refund", err, logrus.Fields{"booking_id": bookingID})
	}
	return booking, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, caller, bookingID uuid.UUID) ([]model.PartialPayment, error) {
	repos := s.store.Repos()
	fields := logrus.Fields{"booking_id": bookingID, "user_id": caller}
	if _, err := loadOwned(ctx, repos, bookingID, caller); err != nil {
		return nil, s.fail(ctx, "list payments", err, fields)
	}
	payments, err := repos.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, s.fail(ctx, "list payments", err, fields)
	}
	return payments, nil
}

func validPaymentType(t model.PaymentType) error {
	switch t {
	case "", model.PaymentTypePartial, model.PaymentTypeFull:
		return nil
	default:
		return domain.ValidationError{Field: "paymentType", Msg: "must be PARTIAL or FULL"}
	}
}

// checkPayment проверяет предусловия зачёта платежа amount на свежепрочитанной строке.
// Возвращает итоговый тип платежа.
func checkPayment(b *model.Booking, amount int64, t model.PaymentType) (model.PaymentType, error) {
	state := lifecycle.Of(b)
	if b.PaymentStatus == model.PaymentStatusFullyPaid {
		return "", domain.NotAllowedError{Action: "apply payment", Msg: "booking is already fully paid"}
	}
	if !state.AcceptsPayment() {
		return "", domain.NotAllowedError{Action: "apply payment", Msg: "booking is " + state.String()}
	}
	if amount > b.RemainingAmount {
		return "", domain.ValidationError{Field: "amount", Msg: "exceeds remaining amount"}
	}

	if t == "" {
		t = model.PaymentTypePartial
		if amount == b.RemainingAmount {
			t = model.PaymentTypeFull
		}
	}
	if t == model.PaymentTypeFull && amount != b.RemainingAmount {
		return "", domain.ValidationError{Field: "amount", Msg: "full payment must cover the remaining amount"}
	}
	if t == model.PaymentTypePartial {
		if b.AmountPaid == 0 && amount < b.MinPaymentAmount {
			return "", domain.MinimumPaymentError{Minimum: b.MinPaymentAmount, Got: amount}
		}
		if !b.AllowPartialPayment && amount < b.RemainingAmount {
			return "", domain.ValidationError{Field: "paymentType", Msg: "partial payment is not allowed for this booking"}
		}
	}
	return t, nil
}
