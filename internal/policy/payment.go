package policy

import (
	"time"

	"github.com/Leganyst/travel-booking/internal/calendar"
)

const (
	// MinPaymentPercent: доля цены, которую должен покрыть первый частичный платёж.
	MinPaymentPercent = 20

	// Дедлайн оплаты: не позже чем за DeadlineLeadDays до старта
	// и не дальше DeadlineWindowDays от сегодняшнего дня.
	DeadlineLeadDays   = 10
	DeadlineWindowDays = 7
)

// TotalPrice = pricePerPerson * participants.
func TotalPrice(pricePerPerson int64, participants int) int64 {
	return pricePerPerson * int64(participants)
}

// MinPaymentAmount — 20% от total с округлением вверх, чтобы минимум
// никогда не оказался меньше 20%.
func MinPaymentAmount(total int64) int64 {
	return PercentOfCeil(total, MinPaymentPercent)
}

// PaymentDeadline = min(startDate - 10 дней, today + 7 дней).
func PaymentDeadline(start, now time.Time) time.Time {
	today := calendar.DateOnly(now)
	return calendar.MinTime(
		calendar.AddDays(calendar.DateOnly(start), -DeadlineLeadDays),
		calendar.AddDays(today, DeadlineWindowDays),
	)
}

// Remaining = max(0, total - paid).
func Remaining(total, paid int64) int64 {
	if paid >= total {
		return 0
	}
	return total - paid
}
