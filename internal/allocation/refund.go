package allocation

import (
	"math"
	"time"
)

// DaysUntil counts whole calendar days from today to the journey date.
// Negative values mean the journey date has passed.
func DaysUntil(journeyDate, today time.Time) int {
	jy, jm, jd := journeyDate.Date()
	ty, tm, td := today.Date()
	j := time.Date(jy, jm, jd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(j.Sub(t).Hours() / 24)
}

// RefundFraction is tiered by days before departure. Both boundaries are
// strict: exactly 7 days refunds 50%, exactly 3 days refunds 25%.
func RefundFraction(days int) float64 {
	switch {
	case days > 7:
		return 0.75
	case days > 3:
		return 0.50
	default:
		return 0.25
	}
}

func RefundAmount(fare float64, days int) float64 {
	return RoundCents(fare * RefundFraction(days))
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// SplitFare divides a booking total across passengers in cents. The remainder
// goes to the first passenger so the parts always sum to the total.
func SplitFare(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	cents := int64(math.Round(total * 100))
	each := cents / int64(n)
	rem := cents - each*int64(n)

	out := make([]float64, n)
	for i := range out {
		c := each
		if i == 0 {
			c += rem
		}
		out[i] = float64(c) / 100
	}
	return out
}
