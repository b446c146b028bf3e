package strategy

import (
	"math"

	"quantbot-go/internal/signal"
)

// covarianceFloor guards the z-score division when the posterior covariance
// collapses toward zero. The recursion itself is left untouched; a degenerate
// covariance only makes that event's signal Undefined.
const covarianceFloor = 1e-12

// Kalman is a scalar filter modelling price as a noisy observation of a
// slowly drifting mean. R is observation noise, Q is process noise.
type Kalman struct {
	r float64
	q float64

	estimate   float64
	covariance float64
	primed     bool
}

// NewKalman builds a filter with covariance initialized to 1.0.
func NewKalman(r, q float64) *Kalman {
	return &Kalman{r: r, q: q, covariance: 1.0}
}

// Estimate returns the current mean estimate; false before the first observation.
func (k *Kalman) Estimate() (float64, bool) {
	return k.estimate, k.primed
}

// Covariance returns the current estimate covariance.
func (k *Kalman) Covariance() float64 { return k.covariance }

// Signal advances the filter by one observation and scores the residual
// z-score against entryZ. The first observation seeds the estimate and
// yields Undefined because no prior exists.
func (k *Kalman) Signal(price, entryZ float64) signal.Signal {
	if !k.primed {
		k.estimate = price
		k.primed = true
		return signal.Undefined
	}

	predicted := k.covariance + k.q
	gain := predicted / (predicted + k.r)
	k.estimate += gain * (price - k.estimate)
	k.covariance = (1 - gain) * predicted

	if k.covariance <= covarianceFloor {
		return signal.Undefined
	}
	z := (price - k.estimate) / math.Sqrt(k.covariance)

	switch {
	case z > entryZ:
		return signal.Sell
	case z < -entryZ:
		return signal.Buy
	default:
		return signal.Hold
	}
}
