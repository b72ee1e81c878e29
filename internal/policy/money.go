package policy

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentOfFloor: floor(amount * percent / 100) без потерь на float.
func PercentOfFloor(amount int64, percent int) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(clampPercent(percent)))).
		Div(hundred).
		Floor().
		IntPart()
}

// PercentOfCeil: ceil(amount * percent / 100).
func PercentOfCeil(amount int64, percent int) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(clampPercent(percent)))).
		Div(hundred).
		Ceil().
		IntPart()
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
