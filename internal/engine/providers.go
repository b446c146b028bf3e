package engine

import "context"

// FundingRateProvider exposes the venue's current perpetual funding rate for
// a symbol. A lookup failure degrades only the funding detector for that
// event; it never aborts the dispatch.
type FundingRateProvider interface {
	Current(ctx context.Context, symbol string) (float64, error)
}

// SentimentScoreProvider yields the latest aggregate sentiment score in [-1, 1].
type SentimentScoreProvider interface {
	Current(ctx context.Context) (float64, error)
}

// StaticSentiment is a fixed-score provider, useful until a real NLP pipeline
// is wired in.
type StaticSentiment float64

// Current returns the configured score.
func (s StaticSentiment) Current(context.Context) (float64, error) {
	return float64(s), nil
}
