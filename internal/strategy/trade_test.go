package strategy

import (
	"testing"
	"time"

	"quantbot-go/internal/signal"
)

func TestIcebergSignalHidden(t *testing.T) {
	b := book(
		[]signal.PriceLevel{{Price: 49990, Qty: 5}},
		[]signal.PriceLevel{{Price: 50010, Qty: 10}},
	)
	trade := signal.Trade{Symbol: "BTCUSDT", Price: 50010, Qty: 100, Ts: time.Now()}
	// 100 traded against 10 visible above the mid: hidden buyer.
	if got := IcebergSignal(trade, b, 50); got != signal.Buy {
		t.Fatalf("expected BUY for hidden order above mid, got %s", got)
	}

	trade.Price = 49990
	if got := IcebergSignal(trade, b, 50); got != signal.Sell {
		t.Fatalf("expected SELL for hidden order below mid, got %s", got)
	}
}

func TestIcebergSignalMidBoundarySells(t *testing.T) {
	b := book(
		[]signal.PriceLevel{{Price: 49990, Qty: 1}, {Price: 50000, Qty: 10}},
		[]signal.PriceLevel{{Price: 50010, Qty: 1}},
	)
	// Trade at exactly the mid (50000): the <= mid policy reads it as SELL.
	trade := signal.Trade{Symbol: "BTCUSDT", Price: 50000, Qty: 100}
	if got := IcebergSignal(trade, b, 50); got != signal.Sell {
		t.Fatalf("expected SELL at mid boundary, got %s", got)
	}
}

func TestIcebergSignalHolds(t *testing.T) {
	b := book(
		[]signal.PriceLevel{{Price: 49990, Qty: 500}},
		[]signal.PriceLevel{{Price: 50010, Qty: 500}},
	)
	small := signal.Trade{Symbol: "BTCUSDT", Price: 49990, Qty: 10}
	if got := IcebergSignal(small, b, 50); got != signal.Hold {
		t.Fatalf("expected HOLD below size threshold, got %s", got)
	}

	visible := signal.Trade{Symbol: "BTCUSDT", Price: 49990, Qty: 100}
	if got := IcebergSignal(visible, b, 50); got != signal.Hold {
		t.Fatalf("expected HOLD when fully visible, got %s", got)
	}

	noLevel := signal.Trade{Symbol: "BTCUSDT", Price: 49995, Qty: 100}
	if got := IcebergSignal(noLevel, b, 50); got != signal.Hold {
		t.Fatalf("expected HOLD with no depth at trade price, got %s", got)
	}

	empty := signal.Trade{Symbol: "BTCUSDT", Price: 49990, Qty: 100}
	if got := IcebergSignal(empty, signal.Depth{Symbol: "BTCUSDT"}, 50); got != signal.Hold {
		t.Fatalf("expected HOLD on empty book, got %s", got)
	}
}

func TestFundingArbSignal(t *testing.T) {
	cases := []struct {
		name  string
		rate  float64
		trend int
		want  signal.Signal
	}{
		{"below threshold", 0.0005, 1, signal.Hold},
		{"negative funding up trend", -0.002, 1, signal.Buy},
		{"positive funding down trend", 0.002, -1, signal.Sell},
		{"negative funding down trend", -0.002, -1, signal.Hold},
		{"positive funding up trend", 0.002, 1, signal.Hold},
	}
	for _, tc := range cases {
		if got := FundingArbSignal(tc.rate, tc.trend, 0.001); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
