// Package currency fetches exchange rates from an upstream JSON endpoint,
// caches them and converts donation amounts between currencies.
package currency

import (
	"math"
	"time"
)

// Rates is one snapshot of exchange rates relative to Base.
type Rates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Rate returns the multiplier from Base to code.
func (r Rates) Rate(code string) (float64, bool) {
	if code == r.Base {
		return 1, true
	}
	v, ok := r.Rates[code]
	return v, ok && v > 0
}

// convert scales amount by rate, rounding half away from zero. ok is false
// when the result does not fit in an int64.
func convert(amount int64, rate float64) (int64, bool) {
	v := math.Round(float64(amount) * rate)
	if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}
