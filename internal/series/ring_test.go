package series

import (
	"math"
	"testing"
)

func TestRingEvictsOldest(t *testing.T) {
	ring := NewRing(3)
	for _, v := range []float64{1, 2, 3, 4} {
		ring.Push(v)
	}
	got := ring.Snapshot()
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v at %d, got %v", want[i], i, got[i])
		}
	}
}

func TestRingNeverExceedsCapacity(t *testing.T) {
	ring := NewRing(5)
	for i := 0; i < 50; i++ {
		ring.Push(float64(i))
		if ring.Len() > 5 {
			t.Fatalf("ring grew past capacity: %d", ring.Len())
		}
	}
	if !ring.Full() {
		t.Fatalf("expected full ring")
	}
	snap := ring.Snapshot()
	if snap[0] != 45 || snap[4] != 49 {
		t.Fatalf("expected last five pushes in order, got %v", snap)
	}
}

func TestRingSnapshotIsCopy(t *testing.T) {
	ring := NewRing(2)
	ring.Push(1)
	snap := ring.Snapshot()
	snap[0] = 99
	if ring.Snapshot()[0] != 1 {
		t.Fatalf("snapshot mutation leaked into ring")
	}
}

func TestRingMinimumCapacity(t *testing.T) {
	ring := NewRing(0)
	ring.Push(1)
	ring.Push(2)
	if ring.Cap() != 1 || ring.Len() != 1 {
		t.Fatalf("expected capacity clamp to 1, got cap=%d len=%d", ring.Cap(), ring.Len())
	}
	if ring.Snapshot()[0] != 2 {
		t.Fatalf("expected newest value retained")
	}
}

func TestStdDev(t *testing.T) {
	vs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := StdDev(vs); math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected population stddev 2, got %v", got)
	}
	if got := StdDev(nil); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %v", got)
	}
}

func TestSampleStdDev(t *testing.T) {
	vs := []float64{1, 2, 3, 4}
	want := math.Sqrt(5.0 / 3.0)
	if got := SampleStdDev(vs); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := SampleStdDev([]float64{1}); got != 0 {
		t.Fatalf("expected 0 for single sample, got %v", got)
	}
}

func TestVolatilityAndTrend(t *testing.T) {
	if got := Volatility([]float64{100}); got != 0 {
		t.Fatalf("expected zero volatility with one price, got %v", got)
	}
	if got := Volatility([]float64{100, 110, 99}); got <= 0 {
		t.Fatalf("expected positive volatility, got %v", got)
	}
	if got := Trend([]float64{100, 101}); got != 1 {
		t.Fatalf("expected up trend, got %d", got)
	}
	if got := Trend([]float64{101, 100}); got != -1 {
		t.Fatalf("expected down trend, got %d", got)
	}
	if got := Trend([]float64{100}); got != 0 {
		t.Fatalf("expected no trend with one price, got %d", got)
	}
}
