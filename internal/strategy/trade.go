package strategy

import (
	"math"

	"quantbot-go/internal/signal"
)

// IcebergSignal flags trades whose executed quantity exceeds the visible
// quantity at that exact price level, implying a hidden resting order. The
// side is inferred from the book mid: price at or below mid reads as selling
// into bids (Sell), above mid as buying through asks (Buy). The "price equal
// to mid goes to Sell" boundary is a fixed policy choice, not a market
// invariant.
func IcebergSignal(trade signal.Trade, book signal.Depth, sizeThreshold float64) signal.Signal {
	if trade.Qty < sizeThreshold {
		return signal.Hold
	}
	mid, ok := book.Mid()
	if !ok {
		return signal.Hold
	}

	visible := visibleQtyAt(book, trade.Price)
	if visible == 0 || trade.Qty <= visible {
		return signal.Hold
	}
	if trade.Price <= mid {
		return signal.Sell
	}
	return signal.Buy
}

func visibleQtyAt(book signal.Depth, price float64) float64 {
	var total float64
	for _, lvl := range book.Bids {
		if lvl.Price == price {
			total += lvl.Qty
		}
	}
	for _, lvl := range book.Asks {
		if lvl.Price == price {
			total += lvl.Qty
		}
	}
	return total
}

// FundingArbSignal trades funding-rate extremes against the spot trend:
// deeply negative funding with an up trend is Buy, deeply positive funding
// with a down trend is Sell.
func FundingArbSignal(rate float64, trend int, rateThreshold float64) signal.Signal {
	if math.Abs(rate) < rateThreshold {
		return signal.Hold
	}
	if rate < -rateThreshold && trend > 0 {
		return signal.Buy
	}
	if rate > rateThreshold && trend < 0 {
		return signal.Sell
	}
	return signal.Hold
}
