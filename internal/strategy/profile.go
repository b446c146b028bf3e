package strategy

import (
	"math"

	"quantbot-go/internal/signal"
)

// VolumeProfile buckets traded quantity by rounded price level. Buckets are
// tracked in first-seen order so the point-of-control scan is deterministic;
// a Go map alone would randomize tie-breaks.
type VolumeProfile struct {
	bucketSize float64
	volumes    map[float64]float64
	order      []float64
}

// NewVolumeProfile builds a profile with the given bucket size (minimum 1.0 fallback).
func NewVolumeProfile(bucketSize float64) *VolumeProfile {
	if bucketSize <= 0 {
		bucketSize = 1.0
	}
	return &VolumeProfile{
		bucketSize: bucketSize,
		volumes:    make(map[float64]float64),
	}
}

func (p *VolumeProfile) bucket(price float64) float64 {
	return math.Round(price/p.bucketSize) * p.bucketSize
}

// Update adds qty to the bucket containing price.
func (p *VolumeProfile) Update(price, qty float64) {
	b := p.bucket(price)
	if _, seen := p.volumes[b]; !seen {
		p.order = append(p.order, b)
	}
	p.volumes[b] += qty
}

// PointOfControl returns the bucket with the highest cumulative volume, ties
// resolved to the earliest-seen bucket; false while the profile is empty.
func (p *VolumeProfile) PointOfControl() (float64, bool) {
	if len(p.order) == 0 {
		return 0, false
	}
	best := p.order[0]
	bestVol := p.volumes[best]
	for _, b := range p.order[1:] {
		if p.volumes[b] > bestVol {
			best = b
			bestVol = p.volumes[b]
		}
	}
	return best, true
}

// Signal folds the trade into the profile, then mean-reverts around the POC.
func (p *VolumeProfile) Signal(price, qty, threshold float64) signal.Signal {
	p.Update(price, qty)
	poc, ok := p.PointOfControl()
	if !ok {
		return signal.Undefined
	}
	switch {
	case price > poc+threshold:
		return signal.Sell
	case price < poc-threshold:
		return signal.Buy
	default:
		return signal.Hold
	}
}
