package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"quantbot-go/internal/signal"
)

type binanceEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type binanceTrade struct {
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

type binanceDepth struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

func (f *Feed) runBinance(ctx context.Context, out chan<- signal.Event) error {
	symbols := f.snapshotSymbols()
	if len(symbols) == 0 {
		return fmt.Errorf("binance feed requires at least one symbol")
	}

	streams := make([]string, 0, len(symbols)+1)
	for _, sym := range symbols {
		streams = append(streams, strings.ToLower(sym)+"@trade")
	}
	if f.depthSymbol != "" {
		streams = append(streams, fmt.Sprintf("%s@depth%d@100ms", strings.ToLower(f.depthSymbol), f.depthLevels))
	}

	url := fmt.Sprintf("%s/stream?streams=%s", f.wsBaseURL, strings.Join(streams, "/"))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeBinanceStream(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeBinanceStream(ctx context.Context, url string, out chan<- signal.Event) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderBinance).Strs("symbols", f.snapshotSymbols()).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env binanceEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}

		ev, kind, err := parseBinanceEvent(env)
		if err != nil {
			f.log.Warn().Err(err).Str("stream", env.Stream).Msg("failed to parse binance event")
			continue
		}
		if err := f.emit(ctx, out, ev, kind); err != nil {
			return err
		}
	}
}

func parseBinanceEvent(env binanceEnvelope) (signal.Event, string, error) {
	symbol := parseBinanceSymbol(env.Stream)
	if strings.Contains(env.Stream, "@depth") {
		var payload binanceDepth
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, "", fmt.Errorf("decode depth: %w", err)
		}
		bids, err := parseBinanceLevels(payload.Bids)
		if err != nil {
			return nil, "", fmt.Errorf("bids: %w", err)
		}
		asks, err := parseBinanceLevels(payload.Asks)
		if err != nil {
			return nil, "", fmt.Errorf("asks: %w", err)
		}
		return signal.Depth{Symbol: symbol, Bids: bids, Asks: asks, Ts: time.Now().UTC()}, "depth", nil
	}

	var payload binanceTrade
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, "", fmt.Errorf("decode trade: %w", err)
	}
	px, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid price %q: %w", payload.Price, err)
	}
	qty, err := strconv.ParseFloat(payload.Quantity, 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid quantity %q: %w", payload.Quantity, err)
	}
	return signal.Trade{Symbol: symbol, Price: px, Qty: qty, Ts: time.UnixMilli(payload.TradeTime)}, "trade", nil
}

func parseBinanceLevels(raw [][]string) ([]signal.PriceLevel, error) {
	levels := make([]signal.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("level needs price and qty, got %v", pair)
		}
		px, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level price %q: %w", pair[0], err)
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level qty %q: %w", pair[1], err)
		}
		levels = append(levels, signal.PriceLevel{Price: px, Qty: qty})
	}
	return levels, nil
}

func parseBinanceSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
