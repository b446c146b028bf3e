package strategy

import (
	"quantbot-go/internal/series"
	"quantbot-go/internal/signal"
)

// CrossoverSignal fires when the fast moving average crosses the slow one
// between the previous and the latest sample. Undefined until enough prices
// exist to compute both averages twice.
func CrossoverSignal(prices []float64, fast, slow int) signal.Signal {
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = fast + 1
	}
	if len(prices) < slow+1 {
		return signal.Undefined
	}

	curFast := series.Mean(prices[len(prices)-fast:])
	curSlow := series.Mean(prices[len(prices)-slow:])
	prevFast := series.Mean(prices[len(prices)-fast-1 : len(prices)-1])
	prevSlow := series.Mean(prices[len(prices)-slow-1 : len(prices)-1])

	switch {
	case prevFast < prevSlow && curFast > curSlow:
		return signal.Buy
	case prevFast > prevSlow && curFast < curSlow:
		return signal.Sell
	default:
		return signal.Hold
	}
}

// RSISignal computes a Wilder-smoothed relative strength index. Overbought
// (>70) reads Sell, oversold (<30) reads Buy.
func RSISignal(prices []float64, period int) signal.Signal {
	if period <= 0 {
		period = 14
	}
	if len(prices) < period+1 {
		return signal.Undefined
	}

	alpha := 1.0 / float64(period)
	var emaUp, emaDown float64
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		up, down := 0.0, 0.0
		if delta > 0 {
			up = delta
		} else {
			down = -delta
		}
		if i == 1 {
			emaUp, emaDown = up, down
			continue
		}
		emaUp = alpha*up + (1-alpha)*emaUp
		emaDown = alpha*down + (1-alpha)*emaDown
	}

	if emaDown == 0 {
		if emaUp == 0 {
			return signal.Hold
		}
		return signal.Sell // RSI pegged at 100
	}
	rsi := 100 - 100/(1+emaUp/emaDown)
	switch {
	case rsi > 70:
		return signal.Sell
	case rsi < 30:
		return signal.Buy
	default:
		return signal.Hold
	}
}

// BollingerSignal compares the latest price against mean +/- numStd sample
// deviations over the trailing period.
func BollingerSignal(prices []float64, period int, numStd float64) signal.Signal {
	if period <= 1 {
		period = 20
	}
	if numStd <= 0 {
		numStd = 2
	}
	if len(prices) < period {
		return signal.Undefined
	}

	window := prices[len(prices)-period:]
	mean := series.Mean(window)
	std := series.SampleStdDev(window)
	last := prices[len(prices)-1]

	switch {
	case last > mean+numStd*std:
		return signal.Sell
	case last < mean-numStd*std:
		return signal.Buy
	default:
		return signal.Hold
	}
}
