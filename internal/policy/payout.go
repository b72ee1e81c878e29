package policy

import (
	"time"

	"github.com/Leganyst/travel-booking/internal/calendar"
)

const (
	FirstInstallmentPercent  = 20
	SecondInstallmentPercent = 100 - FirstInstallmentPercent

	// Первая выплата за FirstInstallmentLeadDays до старта, вторая в день старта.
	FirstInstallmentLeadDays = 15
)

type Installment struct {
	Number        int
	Percent       int
	Amount        int64
	ScheduledDate time.Time
}

// HostNet: сумма хосту после комиссии, комиссия округляется вниз.
func HostNet(total int64, commissionPercent int) int64 {
	return total - PercentOfFloor(total, commissionPercent)
}

// SplitPayout делит net на 20/80. Вторая часть получает остаток,
// поэтому first.Amount + second.Amount == net всегда.
func SplitPayout(net int64, start time.Time) [2]Installment {
	start = calendar.DateOnly(start)
	first := PercentOfFloor(net, FirstInstallmentPercent)
	return [2]Installment{
		{
			Number:        1,
			Percent:       FirstInstallmentPercent,
			Amount:        first,
			ScheduledDate: calendar.AddDays(start, -FirstInstallmentLeadDays),
		},
		{
			Number:        2,
			Percent:       SecondInstallmentPercent,
			Amount:        net - first,
			ScheduledDate: start,
		},
	}
}
