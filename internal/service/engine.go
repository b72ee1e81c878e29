package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/domain"
	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/repository"
)

type Options struct {
	// Сколько раз повторять транзакцию при конфликте, прежде чем вернуть ConflictError.
	TxMaxAttempts int
	// Комиссия платформы, удерживаемая из суммы хосту.
	CommissionPercent int
	// Источник текущего времени, по умолчанию time.Now в UTC.
	Now func() time.Time
}

// Engine — все компоненты финансового ядра поверх одного хранилища.
type Engine struct {
	Bookings *BookingService
	Payments *PaymentService
	Payouts  *PayoutService
	Sweeper  *Sweeper
	Capacity *CapacityService
}

func NewEngine(
	store repository.Store,
	notifier notify.Notifier,
	gw gateway.Adapter,
	log *logrus.Logger,
	opts Options,
) *Engine {
	b := newBase(store, notifier, log, opts)

	capacity := &CapacityService{base: b}
	payouts := &PayoutService{base: b, commissionPercent: opts.CommissionPercent}

	return &Engine{
		Bookings: &BookingService{base: b, capacity: capacity},
		Payments: &PaymentService{base: b, gateway: gw, payouts: payouts},
		Payouts:  payouts,
		Sweeper:  &Sweeper{base: b},
		Capacity: capacity,
	}
}

type base struct {
	store       repository.Store
	notifier    notify.Notifier
	log         *logrus.Logger
	now         func() time.Time
	maxAttempts int
}

func newBase(store repository.Store, notifier notify.Notifier, log *logrus.Logger, opts Options) *base {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	attempts := opts.TxMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &base{
		store:       store,
		notifier:    notifier,
		log:         log,
		now:         now,
		maxAttempts: attempts,
	}
}

// runTx выполняет fn в транзакции и повторяет её целиком при конфликте версий,
// сбое сериализации или нарушении уникальности. fn должна заново читать всё,
// что ей нужно: каждая попытка начинается с чистого состояния.
func (b *base) runTx(ctx context.Context, resource string, fn func(r *repository.Repositories) error) error {
	var err error
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		err = b.store.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !repository.IsRetryable(err) && !repository.IsUniqueViolation(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		b.log.WithContext(ctx).WithFields(logrus.Fields{
			"resource": resource,
			"attempt":  attempt,
		}).WithError(err).Debug("transaction conflict, retrying")
	}
	return domain.ConflictError{
		Resource: resource,
		Msg:      "concurrent update, please retry",
		Err:      err,
	}
}

// fail отдаёт доменные ошибки как есть, остальное логирует и прячет за InternalError.
func (b *base) fail(ctx context.Context, op string, err error, fields logrus.Fields) error {
	if domain.IsDomain(err) {
		return err
	}
	b.log.WithContext(ctx).WithFields(fields).WithError(err).Error(op + " failed")
	return domain.InternalError{Err: err}
}

// notify вызывается после коммита, ошибка только в лог.
func (b *base) notify(ctx context.Context, ev notify.EventType, userID uuid.UUID, role string, payload map[string]any) {
	if b.notifier == nil {
		return
	}
	err := b.notifier.Notify(ctx, ev, notify.Recipient{UserID: userID.String(), Role: role}, payload)
	if err != nil {
		b.log.WithContext(ctx).WithFields(logrus.Fields{
			"event":     ev,
			"recipient": userID,
		}).WithError(err).Warn("notification failed")
	}
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

// loadOwned читает бронирование и проверяет, что caller владеет им.
func loadOwned(ctx context.Context, r *repository.Repositories, id, caller uuid.UUID) (*model.Booking, error) {
	b, err := r.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking")
	}
	if b.UserID != caller {
		return nil, domain.AuthorizationError{Resource: "booking"}
	}
	return b, nil
}

func appendEvent(
	ctx context.Context,
	r *repository.Repositories,
	eventType model.EventType,
	userID, bookingID uuid.UUID,
	details map[string]any,
) error {
	var uid, bid *uuid.UUID
	if userID != uuid.Nil {
		uid = &userID
	}
	if bookingID != uuid.Nil {
		bid = &bookingID
	}
	e, err := repository.NewEvent(eventType, uid, bid, details)
	if err != nil {
		return err
	}
	return r.Events.Append(ctx, e)
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
