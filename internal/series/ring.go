// Package series provides the rolling-window primitives shared by the indicator models.
package series

import "math"

// Ring is a fixed-capacity buffer of the most recent float64 samples.
// Oldest samples are evicted once the capacity is reached.
type Ring struct {
	values   []float64
	capacity int
}

// NewRing builds a ring holding at most capacity samples (minimum 1).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{capacity: capacity}
}

// Push appends a sample, evicting the oldest when full.
func (r *Ring) Push(v float64) {
	if len(r.values) == r.capacity {
		copy(r.values, r.values[1:])
		r.values[len(r.values)-1] = v
		return
	}
	r.values = append(r.values, v)
}

// Snapshot returns a copy of the samples, oldest first.
func (r *Ring) Snapshot() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// Len reports the number of stored samples.
func (r *Ring) Len() int { return len(r.values) }

// Cap reports the configured capacity.
func (r *Ring) Cap() int { return r.capacity }

// Full reports whether the ring holds capacity samples.
func (r *Ring) Full() bool { return len(r.values) == r.capacity }

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// StdDev returns the population standard deviation.
func StdDev(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	mean := Mean(vs)
	var acc float64
	for _, v := range vs {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(vs)))
}

// SampleStdDev returns the Bessel-corrected standard deviation (n-1 divisor).
func SampleStdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	mean := Mean(vs)
	var acc float64
	for _, v := range vs {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(vs)-1))
}

// Returns converts a price series to simple per-step returns.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}

// Volatility is the population stddev of per-step returns; 0 with fewer than two prices.
func Volatility(prices []float64) float64 {
	return StdDev(Returns(prices))
}

// Trend reports the latest step direction: +1 up, -1 down or flat, 0 with
// fewer than two prices.
func Trend(prices []float64) int {
	if len(prices) < 2 {
		return 0
	}
	if prices[len(prices)-1] > prices[len(prices)-2] {
		return 1
	}
	return -1
}
