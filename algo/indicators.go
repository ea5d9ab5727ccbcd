package algo

import "math"

// EMA computes the exponential moving average series over prices using the
// standard multiplier 2/(period+1), seeded with a simple average of the
// first `period` values. Grounded on the teacher's
// internal/indicators.EMA, generalised from float64 to fixed-point int64
// prices (the multiplier stays a float since it's a pure smoothing weight,
// not a traded price).
func EMA(prices []int64, period int) []int64 {
	if len(prices) == 0 || period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]int64, len(prices))
	var seed int64
	for i := 0; i < period; i++ {
		seed += prices[i]
	}
	seed /= int64(period)
	out[period-1] = seed

	multiplier := 2.0 / float64(period+1)
	prev := float64(seed)
	for i := period; i < len(prices); i++ {
		prev = (float64(prices[i])-prev)*multiplier + prev
		out[i] = int64(prev)
	}
	return out
}

// SMA computes the simple moving average of the trailing `period` values.
func SMA(prices []int64, period int) int64 {
	if len(prices) < period || period <= 0 {
		return 0
	}
	var sum int64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / int64(period)
}

// StdDev computes the population standard deviation of the trailing
// `period` values around their mean, used by the mean-reversion algorithm's
// z-score.
func StdDev(prices []int64, period int) float64 {
	if len(prices) < period || period <= 0 {
		return 0
	}
	window := prices[len(prices)-period:]
	mean := SMA(prices, period)
	var sumSq float64
	for _, p := range window {
		d := float64(p - mean)
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(period))
}
