package service

import "github.com/shopspring/decimal"

// ChangeFraction is the relative change from previous to current as a
// fraction rounded to 2 decimals. A zero baseline yields 1 when current is
// positive and 0 otherwise.
func ChangeFraction(current, previous float64) float64 {
	return round2(change(current, previous))
}

// ChangePercentagePoints is ChangeFraction scaled to percentage points,
// rounded to 2 decimals after scaling.
func ChangePercentagePoints(current, previous float64) float64 {
	return round2(change(current, previous) * 100)
}

func change(current, previous float64) float64 {
	switch {
	case previous > 0:
		return (current - previous) / previous
	case current > 0:
		return 1
	default:
		return 0
	}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
