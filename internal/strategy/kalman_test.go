package strategy

import (
	"testing"

	"quantbot-go/internal/signal"
)

func TestKalmanFirstObservationSeedsEstimate(t *testing.T) {
	k := NewKalman(0.01, 1e-5)
	if _, ok := k.Estimate(); ok {
		t.Fatalf("expected no estimate before first observation")
	}
	if got := k.Signal(50000, 1.5); got != signal.Undefined {
		t.Fatalf("expected UNDEFINED on first observation, got %s", got)
	}
	est, ok := k.Estimate()
	if !ok || est != 50000 {
		t.Fatalf("expected estimate seeded to 50000, got %v (ok=%v)", est, ok)
	}
}

func TestKalmanCovarianceStaysInRange(t *testing.T) {
	k := NewKalman(0.01, 1e-5)
	k.Signal(100, 1.5)
	for i := 0; i < 500; i++ {
		k.Signal(100+float64(i%3)*0.01, 1.5)
		p := k.Covariance()
		if p <= 0 || p > 1.0 {
			t.Fatalf("covariance escaped (0, 1] at step %d: %v", i, p)
		}
	}
}

func TestKalmanSignalsOnLargeResidual(t *testing.T) {
	k := NewKalman(0.01, 1e-5)
	k.Signal(100, 1.5)
	// Let the filter settle on 100 so the covariance tightens.
	for i := 0; i < 200; i++ {
		k.Signal(100, 1.5)
	}
	if got := k.Signal(110, 1.5); got != signal.Sell {
		t.Fatalf("expected SELL on a big jump up, got %s", got)
	}

	k2 := NewKalman(0.01, 1e-5)
	k2.Signal(100, 1.5)
	for i := 0; i < 200; i++ {
		k2.Signal(100, 1.5)
	}
	if got := k2.Signal(90, 1.5); got != signal.Buy {
		t.Fatalf("expected BUY on a big drop, got %s", got)
	}
}

func TestKalmanHoldsOnSmallResidual(t *testing.T) {
	k := NewKalman(0.01, 1e-5)
	k.Signal(100, 5)
	if got := k.Signal(100.0001, 5); got != signal.Hold {
		t.Fatalf("expected HOLD on tiny residual, got %s", got)
	}
}
