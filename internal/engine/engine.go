// Package engine hosts the signal dispatcher: the single-goroutine event loop
// that feeds every indicator model and detector in strict arrival order.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quantbot-go/internal/metrics"
	"quantbot-go/internal/series"
	"quantbot-go/internal/signal"
	"quantbot-go/internal/strategy"
)

// Detector names used as keys in the aggregation record.
const (
	DetectorMACross       = "ma_cross"
	DetectorRSI           = "rsi"
	DetectorBollinger     = "bollinger"
	DetectorVWAP          = "vwap"
	DetectorVolumeProfile = "volume_profile"
	DetectorKalman        = "kalman"
	DetectorPairs         = "pairs"
	DetectorIceberg       = "iceberg"
	DetectorFunding       = "funding_arb"
	DetectorNews          = "news_spike"
	DetectorSentiment     = "sentiment_cluster"
	DetectorImbalance     = "imbalance"
	DetectorLiquidity     = "liquidity_cluster"
	DetectorSpread        = "spread_reversion"
)

// Params carries every threshold and window the dispatcher's models need.
// Injected at construction, never mutated afterwards.
type Params struct {
	Symbol    string
	PairBase  string
	PairQuote string

	BufferLen int

	ImbalanceTopN      int
	ImbalanceThreshold float64

	IcebergSizeThreshold float64

	VWAPThreshold float64

	ProfileBucketSize float64
	ProfileThreshold  float64

	SpreadThreshold float64

	LiquidityBucketSize float64
	LiquidityThreshold  float64

	PairWindow     int
	PairZThreshold float64

	KalmanR          float64
	KalmanQ          float64
	KalmanZThreshold float64

	FundingThreshold float64

	NewsThreshold    float64
	NewsCooldownSecs int

	SentimentWindow     int
	VolatilityThreshold float64
	ClusterThreshold    float64

	MACrossFast     int
	MACrossSlow     int
	RSIPeriod       int
	BollingerPeriod int
	BollingerStd    float64
}

// Dispatcher owns all per-symbol model state and processes one event at a
// time. Run it in a single goroutine; the internal mutex exists only so
// outside readers (UI, tests) can peek at the caches.
type Dispatcher struct {
	log    zerolog.Logger
	params Params

	prices  *series.Ring
	vwap    *strategy.VWAP
	profile *strategy.VolumeProfile
	kalman  *strategy.Kalman
	pairs   *strategy.PairTracker
	cluster *strategy.SentimentCluster
	news    *strategy.NewsSpike

	funding   FundingRateProvider
	sentiment SentimentScoreProvider
	models    []strategy.ModelDetector

	mu         sync.RWMutex
	lastPrices map[string]float64
	books      map[string]signal.Depth
}

// Option configures Dispatcher construction.
type Option func(*Dispatcher)

// WithFundingProvider wires a funding-rate capability into the dispatcher.
func WithFundingProvider(p FundingRateProvider) Option {
	return func(d *Dispatcher) { d.funding = p }
}

// WithSentimentProvider wires a sentiment-score capability into the dispatcher.
func WithSentimentProvider(p SentimentScoreProvider) Option {
	return func(d *Dispatcher) { d.sentiment = p }
}

// WithModelDetectors registers opaque ML-backed detectors run on every trade event.
func WithModelDetectors(models ...strategy.ModelDetector) Option {
	return func(d *Dispatcher) { d.models = append(d.models, models...) }
}

// New builds a dispatcher with fresh model state for the configured symbol.
func New(params Params, log zerolog.Logger, opts ...Option) *Dispatcher {
	if params.BufferLen <= 0 {
		params.BufferLen = 100
	}
	d := &Dispatcher{
		log:        log,
		params:     params,
		prices:     series.NewRing(params.BufferLen),
		vwap:       strategy.NewVWAP(),
		profile:    strategy.NewVolumeProfile(params.ProfileBucketSize),
		kalman:     strategy.NewKalman(params.KalmanR, params.KalmanQ),
		pairs:      strategy.NewPairTracker(params.PairWindow, params.PairZThreshold),
		cluster:    strategy.NewSentimentCluster(params.SentimentWindow),
		news:       strategy.NewNewsSpike(params.NewsThreshold, time.Duration(params.NewsCooldownSecs)*time.Second),
		lastPrices: make(map[string]float64),
		books:      make(map[string]signal.Depth),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process validates one event and routes it to the trade or depth path. A
// validation failure rejects the event before any model state is touched; the
// error is the only way an event leaves no mark. A nil record with nil error
// means the event was consumed but is not in the dispatcher's signal scope
// (e.g. a pair-leg trade that only refreshes the last-price table).
func (d *Dispatcher) Process(ctx context.Context, ev signal.Event) (*signal.Record, error) {
	switch e := ev.(type) {
	case signal.Trade:
		return d.OnTrade(ctx, e)
	case signal.Depth:
		return d.OnDepth(ctx, e)
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}
}

// OnTrade applies a trade event: refresh the last-price table, and when the
// symbol is the primary one, update every trade-keyed model and assemble a
// record. Detector failures are isolated as UNDEFINED entries.
func (d *Dispatcher) OnTrade(ctx context.Context, t signal.Trade) (*signal.Record, error) {
	if err := t.Validate(); err != nil {
		metrics.InvalidEventsTotal.WithLabelValues("trade").Inc()
		return nil, err
	}
	metrics.EventsTotal.WithLabelValues("trade").Inc()

	d.mu.Lock()
	d.lastPrices[t.Symbol] = t.Price
	d.mu.Unlock()

	if t.Symbol != d.params.Symbol {
		return nil, nil
	}

	d.prices.Push(t.Price)
	prices := d.prices.Snapshot()

	rec := signal.NewRecord(t.Symbol, t.Ts)

	d.record(rec, DetectorMACross, strategy.CrossoverSignal(prices, d.params.MACrossFast, d.params.MACrossSlow))
	d.record(rec, DetectorRSI, strategy.RSISignal(prices, d.params.RSIPeriod))
	d.record(rec, DetectorBollinger, strategy.BollingerSignal(prices, d.params.BollingerPeriod, d.params.BollingerStd))

	d.evaluate(rec, DetectorVWAP, func() (signal.Signal, error) {
		return d.vwap.Signal(t.Price, t.Qty, d.params.VWAPThreshold)
	})
	d.record(rec, DetectorVolumeProfile, d.profile.Signal(t.Price, t.Qty, d.params.ProfileThreshold))
	d.record(rec, DetectorKalman, d.kalman.Signal(t.Price, d.params.KalmanZThreshold))

	d.evaluate(rec, DetectorPairs, func() (signal.Signal, error) {
		d.mu.RLock()
		base, okBase := d.lastPrices[d.params.PairBase]
		quote, okQuote := d.lastPrices[d.params.PairQuote]
		d.mu.RUnlock()
		if !okBase || !okQuote {
			return signal.Undefined, nil
		}
		return d.pairs.Signal(base, quote)
	})

	d.record(rec, DetectorIceberg, d.icebergSignal(t))
	d.evaluate(rec, DetectorFunding, func() (signal.Signal, error) {
		return d.fundingSignal(ctx, t.Symbol, prices)
	})

	score, scoreErr := d.sentimentScore(ctx)
	d.evaluate(rec, DetectorNews, func() (signal.Signal, error) {
		if scoreErr != nil {
			return signal.Undefined, scoreErr
		}
		return d.news.Signal(score, t.Ts), nil
	})
	d.evaluate(rec, DetectorSentiment, func() (signal.Signal, error) {
		if scoreErr != nil {
			return signal.Undefined, scoreErr
		}
		return d.cluster.Signal(score, series.Volatility(prices), d.params.VolatilityThreshold, d.params.ClusterThreshold), nil
	})

	for _, model := range d.models {
		m := model
		d.evaluate(rec, m.Name(), func() (signal.Signal, error) {
			return m.Signal(prices), nil
		})
	}

	return rec, nil
}

// OnDepth caches the snapshot wholesale and runs the book-keyed detectors.
func (d *Dispatcher) OnDepth(_ context.Context, book signal.Depth) (*signal.Record, error) {
	if err := book.Validate(); err != nil {
		metrics.InvalidEventsTotal.WithLabelValues("depth").Inc()
		return nil, err
	}
	metrics.EventsTotal.WithLabelValues("depth").Inc()

	d.mu.Lock()
	d.books[book.Symbol] = book
	d.mu.Unlock()

	rec := signal.NewRecord(book.Symbol, book.Ts)
	d.record(rec, DetectorImbalance, strategy.ImbalanceSignal(book, d.params.ImbalanceTopN, d.params.ImbalanceThreshold))
	d.record(rec, DetectorLiquidity, strategy.LiquidityClusterSignal(book, d.params.LiquidityBucketSize, d.params.LiquidityThreshold))
	d.record(rec, DetectorSpread, strategy.SpreadReversionSignal(book, d.params.SpreadThreshold))
	return rec, nil
}

func (d *Dispatcher) icebergSignal(t signal.Trade) signal.Signal {
	d.mu.RLock()
	book, ok := d.books[t.Symbol]
	d.mu.RUnlock()
	if !ok {
		return signal.Hold
	}
	return strategy.IcebergSignal(t, book, d.params.IcebergSizeThreshold)
}

func (d *Dispatcher) fundingSignal(ctx context.Context, symbol string, prices []float64) (signal.Signal, error) {
	if d.funding == nil {
		return signal.Undefined, nil
	}
	rate, err := d.funding.Current(ctx, symbol)
	if err != nil {
		return signal.Undefined, fmt.Errorf("funding rate lookup: %w", err)
	}
	return strategy.FundingArbSignal(rate, series.Trend(prices), d.params.FundingThreshold), nil
}

func (d *Dispatcher) sentimentScore(ctx context.Context) (float64, error) {
	if d.sentiment == nil {
		return 0, fmt.Errorf("no sentiment provider configured")
	}
	score, err := d.sentiment.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("sentiment lookup: %w", err)
	}
	return score, nil
}

// evaluate runs one detector and isolates its failure: an error becomes an
// UNDEFINED entry in the record and the remaining detectors still run.
func (d *Dispatcher) evaluate(rec *signal.Record, name string, fn func() (signal.Signal, error)) {
	sig, err := fn()
	if err != nil {
		d.log.Warn().Err(err).Str("detector", name).Msg("detector degraded")
		sig = signal.Undefined
	}
	d.record(rec, name, sig)
}

func (d *Dispatcher) record(rec *signal.Record, name string, sig signal.Signal) {
	rec.Signals[name] = sig
	metrics.SignalsTotal.WithLabelValues(name, string(sig)).Inc()
}

// LastPrice returns the most recent trade price seen for a symbol.
func (d *Dispatcher) LastPrice(symbol string) (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	px, ok := d.lastPrices[symbol]
	return px, ok
}

// Book returns the cached order-book snapshot for a symbol, exactly as supplied.
func (d *Dispatcher) Book(symbol string) (signal.Depth, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	book, ok := d.books[symbol]
	return book, ok
}

// Run consumes events until the context is canceled, emitting one record per
// processed in-scope event. Invalid events are logged and skipped; they never
// halt the loop or corrupt state for later events.
func (d *Dispatcher) Run(ctx context.Context, events <-chan signal.Event, records chan<- signal.Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			rec, err := d.Process(ctx, ev)
			if err != nil {
				d.log.Warn().Err(err).Str("symbol", ev.EventSymbol()).Msg("event rejected")
				continue
			}
			if rec == nil {
				continue
			}
			select {
			case records <- *rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
