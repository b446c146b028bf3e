package strategy

import (
	"fmt"
	"math"

	"quantbot-go/internal/series"
	"quantbot-go/internal/signal"
)

// PairTracker keeps same-length rolling price windows for two correlated
// assets and z-scores the latest log-ratio against the window's own
// distribution. No opinion until both windows are full.
type PairTracker struct {
	x       *series.Ring
	y       *series.Ring
	window  int
	zThresh float64
}

// NewPairTracker builds a tracker over the given window (minimum 2) and z threshold.
func NewPairTracker(window int, zThresh float64) *PairTracker {
	if window < 2 {
		window = 2
	}
	return &PairTracker{
		x:       series.NewRing(window),
		y:       series.NewRing(window),
		window:  window,
		zThresh: zThresh,
	}
}

// Signal appends the latest leg prices and scores the log-ratio z-score.
// Prices must be strictly positive (log domain).
func (p *PairTracker) Signal(priceX, priceY float64) (signal.Signal, error) {
	if priceX <= 0 || priceY <= 0 {
		return signal.Undefined, fmt.Errorf("pair prices %f/%f: %w", priceX, priceY, signal.ErrInvalidPrice)
	}
	p.x.Push(priceX)
	p.y.Push(priceY)
	if !p.x.Full() || !p.y.Full() {
		return signal.Undefined, nil
	}

	xs := p.x.Snapshot()
	ys := p.y.Snapshot()
	ratios := make([]float64, len(xs))
	for i := range xs {
		ratios[i] = math.Log(xs[i]) - math.Log(ys[i])
	}

	std := series.SampleStdDev(ratios)
	if std == 0 {
		// Flat ratio window: z-score is degenerate.
		return signal.Undefined, nil
	}
	z := (ratios[len(ratios)-1] - series.Mean(ratios)) / std

	switch {
	case z > p.zThresh:
		return signal.SellPair, nil // short X, long Y
	case z < -p.zThresh:
		return signal.BuyPair, nil // long X, short Y
	default:
		return signal.Hold, nil
	}
}
