package policy

import (
	"errors"
	"time"

	"github.com/Leganyst/travel-booking/internal/calendar"
)

// ErrCancellationWindowClosed — до поездки осталось меньше MinCancellationDays.
var ErrCancellationWindowClosed = errors.New("cancellation window closed")

// MinCancellationDays — отмена разрешена, пока до старта не меньше стольких дней.
const MinCancellationDays = 4

// RefundTier: при DaysUntilTrip >= MinDays возвращается Percent процентов.
type RefundTier struct {
	MinDays int
	Percent int
}

// DefaultRefundTiers отсортированы по убыванию MinDays.
var DefaultRefundTiers = []RefundTier{
	{MinDays: 30, Percent: 100},
	{MinDays: 14, Percent: 80},
	{MinDays: 7, Percent: 50},
	{MinDays: MinCancellationDays, Percent: 20},
}

type RefundQuote struct {
	DaysUntilTrip int
	Percent       int
	Amount        int64
}

// RefundPercent зависит только от числа дней до поездки.
func RefundPercent(daysUntilTrip int) (int, error) {
	for _, tier := range DefaultRefundTiers {
		if daysUntilTrip >= tier.MinDays {
			return tier.Percent, nil
		}
	}
	return 0, ErrCancellationWindowClosed
}

// QuoteRefund считает возврат: floor(amountPaid * percent / 100).
// daysUntilTrip = ceil((start - now) / 1 день).
func QuoteRefund(amountPaid int64, start, now time.Time) (RefundQuote, error) {
	days := calendar.DaysUntil(start, now)
	percent, err := RefundPercent(days)
	if err != nil {
		return RefundQuote{DaysUntilTrip: days}, err
	}
	return RefundQuote{
		DaysUntilTrip: days,
		Percent:       percent,
		Amount:        PercentOfFloor(amountPaid, percent),
	}, nil
}
