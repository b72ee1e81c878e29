package calendar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrEndBeforeStart   = errors.New("end date is before start date")
)

const day = 24 * time.Hour

// DateRange — даты поездки [Start, End], обе границы включительно, без времени.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewTripRange создаёт интервал поездки:
//   - нулевые даты недопустимы;
//   - время отбрасывается, даты переводятся в UTC;
//   - End может совпадать со Start (однодневная поездка).
func NewTripRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrInvalidDateRange
	}
	start = DateOnly(start)
	end = DateOnly(end)
	if end.Before(start) {
		return DateRange{}, ErrEndBeforeStart
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start) / day)
}

// DateOnly возвращает полночь UTC того же календарного дня.
func DateOnly(t time.Time) time.Time {
	year, month, d := t.UTC().Date()
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// AddDays сдвигает момент на n календарных дней.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysUntil: ceil((target - now) / 1 день). Для прошедшей даты результат <= 0.
func DaysUntil(target, now time.Time) int {
	diff := target.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// MinTime возвращает более ранний из двух моментов.
func MinTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// FormatRange форматирует даты поездки для уведомлений: "05.11.2026–12.11.2026".
func FormatRange(r DateRange) string {
	if r.Start.Equal(r.End) {
		return r.Start.Format("02.01.2006")
	}
	return fmt.Sprintf("%s–%s", r.Start.Format("02.01.2006"), r.End.Format("02.01.2006"))
}
