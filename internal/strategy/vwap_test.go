package strategy

import (
	"errors"
	"math"
	"testing"

	"quantbot-go/internal/signal"
)

func TestVWAPUndefinedBeforeVolume(t *testing.T) {
	v := NewVWAP()
	if _, ok := v.Value(); ok {
		t.Fatalf("expected undefined VWAP before any update")
	}
	sig, err := v.Signal(100, 0, 0.002)
	if err != nil {
		t.Fatalf("Signal returned error: %v", err)
	}
	if sig != signal.Undefined {
		t.Fatalf("expected UNDEFINED with zero cumulative qty, got %s", sig)
	}
}

func TestVWAPRejectsNegativeQty(t *testing.T) {
	v := NewVWAP()
	if err := v.Update(100, -1); !errors.Is(err, signal.ErrInvalidQty) {
		t.Fatalf("expected ErrInvalidQty, got %v", err)
	}
	// Rejected update must not have touched the sums.
	if _, ok := v.Value(); ok {
		t.Fatalf("state mutated by rejected update")
	}
}

func TestVWAPDeterministicReplay(t *testing.T) {
	trades := [][2]float64{{100, 1}, {101, 2}, {99, 0.5}, {100.5, 3}}
	run := func() float64 {
		v := NewVWAP()
		for _, tr := range trades {
			if err := v.Update(tr[0], tr[1]); err != nil {
				t.Fatalf("Update error: %v", err)
			}
		}
		val, ok := v.Value()
		if !ok {
			t.Fatalf("expected defined VWAP")
		}
		return val
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("replay produced different VWAP: %v vs %v", a, b)
	}
}

func TestVWAPSignalThresholds(t *testing.T) {
	v := NewVWAP()
	if _, err := v.Signal(100, 10, 0.002); err != nil {
		t.Fatalf("seed trade error: %v", err)
	}
	// VWAP is ~100 now; a 1% pop should read SELL.
	sig, err := v.Signal(101, 0.001, 0.002)
	if err != nil {
		t.Fatalf("Signal error: %v", err)
	}
	if sig != signal.Sell {
		t.Fatalf("expected SELL above band, got %s", sig)
	}
	sig, err = v.Signal(99, 0.001, 0.002)
	if err != nil {
		t.Fatalf("Signal error: %v", err)
	}
	if sig != signal.Buy {
		t.Fatalf("expected BUY below band, got %s", sig)
	}
}

func TestVWAPValue(t *testing.T) {
	v := NewVWAP()
	_ = v.Update(100, 1)
	_ = v.Update(200, 1)
	val, ok := v.Value()
	if !ok || math.Abs(val-150) > 1e-12 {
		t.Fatalf("expected VWAP 150, got %v (ok=%v)", val, ok)
	}
}
