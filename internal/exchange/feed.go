// Package exchange hosts connectors for market data streams and venue REST capabilities.
package exchange

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quantbot-go/internal/metrics"
	"quantbot-go/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic trades and depth snapshots
	// (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams live trades and partial book depth from Binance
	// public websockets.
	ProviderBinance = "binance"
)

// Feed is a pluggable market data stream producing dispatcher events.
type Feed struct {
	provider    string
	symbols     []string
	depthSymbol string
	depthLevels int
	wsBaseURL   string
	log         zerolog.Logger
	mu          sync.RWMutex
}

// Option configures Feed construction parameters.
type Option func(*Feed)

const (
	defaultDepthLevels = 20
	defaultWSBaseURL   = "wss://stream.binance.com:9443"
)

// WithDepthLevels overrides how many book levels the depth stream carries.
func WithDepthLevels(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.depthLevels = n
		}
	}
}

// WithWSBaseURL overrides the websocket endpoint (testnet, proxies).
func WithWSBaseURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.wsBaseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// NewFeed constructs a feed streaming trades for every symbol and depth for
// depthSymbol, backed by the requested provider.
func NewFeed(provider string, symbols []string, depthSymbol string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:    strings.ToLower(provider),
		depthSymbol: strings.ToUpper(strings.TrimSpace(depthSymbol)),
		depthLevels: defaultDepthLevels,
		wsBaseURL:   defaultWSBaseURL,
		log:         log,
	}
	f.setSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetSymbols replaces the tracked symbol list (deduplicated, sorted for determinism).
func (f *Feed) SetSymbols(symbols []string) {
	f.setSymbols(symbols)
}

func (f *Feed) setSymbols(symbols []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

func (f *Feed) snapshotSymbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Run pushes events onto the provided channel until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Event) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

func (f *Feed) runStub(ctx context.Context, out chan<- signal.Event) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	px := 100.0
	step := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			step++
			px += 0.1 * math.Sin(float64(step)/7) // gentle deterministic oscillation
			for _, sym := range f.snapshotSymbols() {
				if err := f.emit(ctx, out, signal.Trade{Symbol: sym, Price: px, Qty: 1, Ts: ts}, "trade"); err != nil {
					return err
				}
			}
			if f.depthSymbol != "" && step%5 == 0 {
				if err := f.emit(ctx, out, f.stubDepth(px, ts), "depth"); err != nil {
					return err
				}
			}
		}
	}
}

func (f *Feed) stubDepth(px float64, ts time.Time) signal.Depth {
	book := signal.Depth{Symbol: f.depthSymbol, Ts: ts}
	for i := 1; i <= f.depthLevels; i++ {
		off := float64(i) * 0.1
		book.Bids = append(book.Bids, signal.PriceLevel{Price: px - off, Qty: float64(i)})
		book.Asks = append(book.Asks, signal.PriceLevel{Price: px + off, Qty: float64(i)})
	}
	return book
}

func (f *Feed) emit(ctx context.Context, out chan<- signal.Event, ev signal.Event, kind string) error {
	select {
	case out <- ev:
		metrics.FeedEventsTotal.WithLabelValues(kind).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
