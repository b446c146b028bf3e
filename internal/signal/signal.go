// Package signal standardizes payloads shared between data ingestion and the engine.
package signal

import (
	"errors"
	"fmt"
	"time"
)

// Signal expresses the directional bias a detector produced for one event.
type Signal string

const (
	// Buy and Sell are ordinary directional signals.
	Buy  Signal = "BUY"
	Sell Signal = "SELL"
	// Hold means the detector ran and sees no edge.
	Hold Signal = "HOLD"
	// BuyPair / SellPair are the pairs-trading variants (long X short Y / short X long Y).
	BuyPair  Signal = "BUY_PAIR"
	SellPair Signal = "SELL_PAIR"
	// Undefined means the detector lacked the data to produce an opinion.
	// Distinct from Hold: Hold is a computed "no action".
	Undefined Signal = "UNDEFINED"
)

// Validation sentinels for malformed inbound events. Callers match with errors.Is.
var (
	ErrEmptySymbol  = errors.New("symbol required")
	ErrInvalidPrice = errors.New("price must be positive")
	ErrInvalidQty   = errors.New("quantity must be non-negative")
	ErrUnsortedBook = errors.New("book side out of order")
)

// Trade is a single execution from the venue's trade stream. Immutable once received.
type Trade struct {
	Symbol string
	Price  float64
	Qty    float64
	Ts     time.Time
}

// EventSymbol identifies which per-symbol state the event belongs to.
func (t Trade) EventSymbol() string { return t.Symbol }

// Validate rejects malformed trades before any model state is touched.
func (t Trade) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("trade: %w", ErrEmptySymbol)
	}
	if t.Price <= 0 {
		return fmt.Errorf("trade %s price %f: %w", t.Symbol, t.Price, ErrInvalidPrice)
	}
	if t.Qty < 0 {
		return fmt.Errorf("trade %s qty %f: %w", t.Symbol, t.Qty, ErrInvalidQty)
	}
	return nil
}

// PriceLevel is a single price+size entry on one side of an order book.
type PriceLevel struct {
	Price float64
	Qty   float64
}

// Depth is a wholesale order-book snapshot: bids sorted descending, asks ascending.
// It replaces the previous snapshot for the symbol; it is never a diff.
type Depth struct {
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
	Ts     time.Time
}

// EventSymbol identifies which per-symbol state the event belongs to.
func (d Depth) EventSymbol() string { return d.Symbol }

// Validate enforces the sort invariants and level sanity on both sides.
func (d Depth) Validate() error {
	if d.Symbol == "" {
		return fmt.Errorf("depth: %w", ErrEmptySymbol)
	}
	if err := validateSide(d.Bids, false); err != nil {
		return fmt.Errorf("depth %s bids: %w", d.Symbol, err)
	}
	if err := validateSide(d.Asks, true); err != nil {
		return fmt.Errorf("depth %s asks: %w", d.Symbol, err)
	}
	return nil
}

func validateSide(levels []PriceLevel, ascending bool) error {
	for i, lvl := range levels {
		if lvl.Price <= 0 {
			return fmt.Errorf("level %d price %f: %w", i, lvl.Price, ErrInvalidPrice)
		}
		if lvl.Qty < 0 {
			return fmt.Errorf("level %d qty %f: %w", i, lvl.Qty, ErrInvalidQty)
		}
		if i == 0 {
			continue
		}
		prev := levels[i-1].Price
		if ascending && lvl.Price < prev {
			return fmt.Errorf("level %d: %w", i, ErrUnsortedBook)
		}
		if !ascending && lvl.Price > prev {
			return fmt.Errorf("level %d: %w", i, ErrUnsortedBook)
		}
	}
	return nil
}

// BestBid returns the top bid level, if any.
func (d Depth) BestBid() (PriceLevel, bool) {
	if len(d.Bids) == 0 {
		return PriceLevel{}, false
	}
	return d.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (d Depth) BestAsk() (PriceLevel, bool) {
	if len(d.Asks) == 0 {
		return PriceLevel{}, false
	}
	return d.Asks[0], true
}

// Mid returns the book mid-price; false when either side is empty.
func (d Depth) Mid() (float64, bool) {
	bid, okB := d.BestBid()
	ask, okA := d.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (bid.Price + ask.Price) / 2, true
}

// Event is either a Trade or a Depth snapshot flowing into the dispatcher.
type Event interface {
	EventSymbol() string
	Validate() error
}

// Record is the consolidated output of one dispatched event: every detector's
// verdict keyed by detector name, for downstream sinks.
type Record struct {
	Symbol  string            `json:"symbol"`
	Ts      time.Time         `json:"ts"`
	Signals map[string]Signal `json:"signals"`
}

// NewRecord allocates a record for the given event scope.
func NewRecord(symbol string, ts time.Time) *Record {
	return &Record{Symbol: symbol, Ts: ts, Signals: make(map[string]Signal)}
}
