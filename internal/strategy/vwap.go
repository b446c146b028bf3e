// Package strategy contains the online indicator models and stateless
// microstructure detectors that turn market events into signals.
package strategy

import (
	"fmt"

	"quantbot-go/internal/signal"
)

// VWAP accumulates running price*qty and qty sums. O(1) per update, no history kept.
type VWAP struct {
	cumPQ  float64
	cumQty float64
}

// NewVWAP returns an empty accumulator.
func NewVWAP() *VWAP { return &VWAP{} }

// Update folds a trade into the running sums. Negative quantity is rejected
// as invalid input, never clamped.
func (v *VWAP) Update(price, qty float64) error {
	if qty < 0 {
		return fmt.Errorf("vwap update qty %f: %w", qty, signal.ErrInvalidQty)
	}
	v.cumPQ += price * qty
	v.cumQty += qty
	return nil
}

// Value returns the current VWAP; false until any quantity has been observed.
func (v *VWAP) Value() (float64, bool) {
	if v.cumQty == 0 {
		return 0, false
	}
	return v.cumPQ / v.cumQty, true
}

// Signal updates the accumulator with the trade, then scores the price's
// fractional deviation from VWAP against the threshold.
func (v *VWAP) Signal(price, qty, threshold float64) (signal.Signal, error) {
	if err := v.Update(price, qty); err != nil {
		return signal.Undefined, err
	}
	vwap, ok := v.Value()
	if !ok {
		return signal.Undefined, nil
	}
	switch {
	case price > vwap*(1+threshold):
		return signal.Sell, nil
	case price < vwap*(1-threshold):
		return signal.Buy, nil
	default:
		return signal.Hold, nil
	}
}
