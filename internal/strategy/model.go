package strategy

import "quantbot-go/internal/signal"

// ModelDetector is an opaque, externally trained signal source (pattern
// classifier, sequence forecaster, RL agent). The engine only ever sees this
// surface; loading and running the model is someone else's problem.
type ModelDetector interface {
	Name() string
	Signal(recentPrices []float64) signal.Signal
}
