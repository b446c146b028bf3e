package strategy

import (
	"math"

	"quantbot-go/internal/signal"
)

// ImbalanceSignal compares top-N bid and ask quantity. Bid pressure above the
// threshold is Buy, ask pressure above it is Sell.
func ImbalanceSignal(book signal.Depth, topN int, threshold float64) signal.Signal {
	if topN <= 0 {
		topN = 5
	}
	totalBid := sideQty(book.Bids, topN)
	totalAsk := sideQty(book.Asks, topN)
	total := totalBid + totalAsk
	if total == 0 {
		return signal.Hold
	}
	switch {
	case totalBid/total > threshold:
		return signal.Buy
	case totalAsk/total > threshold:
		return signal.Sell
	default:
		return signal.Hold
	}
}

func sideQty(levels []signal.PriceLevel, topN int) float64 {
	var total float64
	for i, lvl := range levels {
		if i >= topN {
			break
		}
		total += lvl.Qty
	}
	return total
}

// LiquidityClusterSignal buckets each side's resting size and reads the
// dominant cluster as support (Buy) or resistance (Sell). An exact tie
// between the two sides' maxima resolves to Hold.
func LiquidityClusterSignal(book signal.Depth, bucketSize, threshold float64) signal.Signal {
	maxBid := maxClusterQty(book.Bids, bucketSize)
	maxAsk := maxClusterQty(book.Asks, bucketSize)
	switch {
	case maxBid > threshold && maxBid > maxAsk:
		return signal.Buy
	case maxAsk > threshold && maxAsk > maxBid:
		return signal.Sell
	default:
		return signal.Hold
	}
}

func maxClusterQty(levels []signal.PriceLevel, bucketSize float64) float64 {
	if bucketSize <= 0 {
		bucketSize = 0.5
	}
	clusters := make(map[float64]float64)
	var best float64
	for _, lvl := range levels {
		b := math.Round(lvl.Price/bucketSize) * bucketSize
		clusters[b] += lvl.Qty
		if clusters[b] > best {
			best = clusters[b]
		}
	}
	return best
}

// SpreadReversionSignal trades only when the spread is at least the
// threshold. The reference mid sits exactly on the spread centre, so the
// boundary case resolves to Sell.
func SpreadReversionSignal(book signal.Depth, spreadThreshold float64) signal.Signal {
	bid, okB := book.BestBid()
	ask, okA := book.BestAsk()
	if !okB || !okA {
		return signal.Hold
	}
	spread := ask.Price - bid.Price
	if spread < spreadThreshold {
		return signal.Hold
	}
	mid := (bid.Price + ask.Price) / 2
	if mid-bid.Price < spread/2 {
		return signal.Buy
	}
	return signal.Sell
}
