package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryingAdapter ограничивает каждый вызов шлюза таймаутом и повторяет
// временные сбои не больше MaxAttempts раз с линейной паузой.
type RetryingAdapter struct {
	next        Adapter
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
	log         *logrus.Logger
}

func NewRetryingAdapter(next Adapter, maxAttempts int, timeout time.Duration, log *logrus.Logger) *RetryingAdapter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingAdapter{
		next:        next,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     200 * time.Millisecond,
		log:         log,
	}
}

// WithBackoff задаёт базовую паузу между попытками.
func (a *RetryingAdapter) WithBackoff(d time.Duration) *RetryingAdapter {
	a.backoff = d
	return a
}

func (a *RetryingAdapter) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		session, err := a.call(ctx, req)
		if err == nil {
			return session, nil
		}
		lastErr = err

		if errors.Is(err, ErrDeclined) || ctx.Err() != nil {
			return nil, err
		}

		a.log.WithFields(logrus.Fields{
			"booking_id": req.BookingID,
			"order_id":   req.OrderID,
			"attempt":    attempt,
		}).WithError(err).Warn("gateway checkout attempt failed")

		if attempt == a.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

func (a *RetryingAdapter) call(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if a.timeout <= 0 {
		return a.next.InitiateCheckout(ctx, req)
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.next.InitiateCheckout(callCtx, req)
}
