package strategy

import (
	"time"

	"quantbot-go/internal/series"
	"quantbot-go/internal/signal"
)

// SentimentCluster tracks a rolling window of sentiment scores in [-1, 1].
// Cluster strength is the window's dispersion once full, zero before that.
type SentimentCluster struct {
	scores *series.Ring
}

// NewSentimentCluster builds a tracker over the given window (minimum 1).
func NewSentimentCluster(window int) *SentimentCluster {
	return &SentimentCluster{scores: series.NewRing(window)}
}

// Strength returns the stddev of the window, or 0 until the window is full.
func (c *SentimentCluster) Strength() float64 {
	if !c.scores.Full() {
		return 0
	}
	return series.StdDev(c.scores.Snapshot())
}

// Signal folds in the latest score and trades only when both the price
// volatility and the sentiment dispersion clear their thresholds.
func (c *SentimentCluster) Signal(score, volatility, volThreshold, clusterThreshold float64) signal.Signal {
	c.scores.Push(score)
	if volatility < volThreshold || c.Strength() < clusterThreshold {
		return signal.Hold
	}
	switch {
	case score > 0:
		return signal.Buy
	case score < 0:
		return signal.Sell
	default:
		return signal.Hold
	}
}

// NewsSpike gates spike signals behind a cooldown so one burst of headlines
// does not fire repeatedly. Each dispatcher owns its own instance; there is
// no process-wide state.
type NewsSpike struct {
	threshold float64
	cooldown  time.Duration
	lastSpike time.Time
	fired     bool
}

// NewNewsSpike builds a detector with the given score threshold and cooldown.
func NewNewsSpike(threshold float64, cooldown time.Duration) *NewsSpike {
	return &NewsSpike{threshold: threshold, cooldown: cooldown}
}

// Signal scores the sentiment at the event's own timestamp. While a prior
// spike is inside the cooldown the result is forced to Hold; elapsed time
// equal to the cooldown is eligible again.
func (n *NewsSpike) Signal(score float64, at time.Time) signal.Signal {
	if n.fired && at.Sub(n.lastSpike) < n.cooldown {
		return signal.Hold
	}
	switch {
	case score > n.threshold:
		n.lastSpike = at
		n.fired = true
		return signal.Buy
	case score < -n.threshold:
		n.lastSpike = at
		n.fired = true
		return signal.Sell
	default:
		return signal.Hold
	}
}
