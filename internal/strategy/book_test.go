package strategy

import (
	"testing"

	"quantbot-go/internal/signal"
)

func book(bids, asks []signal.PriceLevel) signal.Depth {
	return signal.Depth{Symbol: "BTCUSDT", Bids: bids, Asks: asks}
}

func TestImbalanceSignal(t *testing.T) {
	b := book(
		[]signal.PriceLevel{{Price: 100, Qty: 30}, {Price: 99, Qty: 25}, {Price: 98, Qty: 15}, {Price: 97, Qty: 5}, {Price: 96, Qty: 5}},
		[]signal.PriceLevel{{Price: 101, Qty: 10}, {Price: 102, Qty: 5}, {Price: 103, Qty: 5}},
	)
	// Bids total 80 vs asks 20 at top-5: bid fraction 0.8 > 0.6.
	if got := ImbalanceSignal(b, 5, 0.6); got != signal.Buy {
		t.Fatalf("expected BUY on bid pressure, got %s", got)
	}

	flipped := book(nil, []signal.PriceLevel{{Price: 101, Qty: 80}})
	if got := ImbalanceSignal(flipped, 5, 0.6); got != signal.Sell {
		t.Fatalf("expected SELL on ask pressure, got %s", got)
	}

	if got := ImbalanceSignal(book(nil, nil), 5, 0.6); got != signal.Hold {
		t.Fatalf("expected HOLD on empty book, got %s", got)
	}
}

func TestImbalanceSignalRespectsTopN(t *testing.T) {
	b := book(
		[]signal.PriceLevel{{Price: 100, Qty: 1}, {Price: 99, Qty: 1000}},
		[]signal.PriceLevel{{Price: 101, Qty: 3}},
	)
	// Only the top level per side counts with topN=1: 1 vs 3 favours asks.
	if got := ImbalanceSignal(b, 1, 0.6); got != signal.Sell {
		t.Fatalf("expected SELL with topN=1, got %s", got)
	}
}

func TestLiquidityClusterSignal(t *testing.T) {
	support := book(
		[]signal.PriceLevel{{Price: 100.1, Qty: 120}, {Price: 100.0, Qty: 130}},
		[]signal.PriceLevel{{Price: 101.0, Qty: 40}},
	)
	// Both bid levels round into the 100 bucket: 250 > threshold and > ask max.
	if got := LiquidityClusterSignal(support, 0.5, 200); got != signal.Buy {
		t.Fatalf("expected BUY on bid cluster, got %s", got)
	}

	resistance := book(
		[]signal.PriceLevel{{Price: 100, Qty: 40}},
		[]signal.PriceLevel{{Price: 101.0, Qty: 150}, {Price: 101.1, Qty: 150}},
	)
	if got := LiquidityClusterSignal(resistance, 0.5, 200); got != signal.Sell {
		t.Fatalf("expected SELL on ask cluster, got %s", got)
	}
}

func TestLiquidityClusterTieHolds(t *testing.T) {
	tied := book(
		[]signal.PriceLevel{{Price: 100, Qty: 250}},
		[]signal.PriceLevel{{Price: 101, Qty: 250}},
	)
	if got := LiquidityClusterSignal(tied, 0.5, 200); got != signal.Hold {
		t.Fatalf("expected HOLD on exact tie, got %s", got)
	}
}

func TestSpreadReversionSignal(t *testing.T) {
	tight := book(
		[]signal.PriceLevel{{Price: 100.0, Qty: 1}},
		[]signal.PriceLevel{{Price: 100.1, Qty: 1}},
	)
	if got := SpreadReversionSignal(tight, 0.5); got != signal.Hold {
		t.Fatalf("expected HOLD under spread threshold, got %s", got)
	}

	wide := book(
		[]signal.PriceLevel{{Price: 100.0, Qty: 1}},
		[]signal.PriceLevel{{Price: 101.0, Qty: 1}},
	)
	// Mid sits exactly on the spread centre; boundary resolves to SELL.
	if got := SpreadReversionSignal(wide, 0.5); got != signal.Sell {
		t.Fatalf("expected SELL on wide spread, got %s", got)
	}

	if got := SpreadReversionSignal(book(nil, nil), 0.5); got != signal.Hold {
		t.Fatalf("expected HOLD on one-sided book, got %s", got)
	}
}
