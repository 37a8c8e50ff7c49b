// Package sink implements MarketEventLogger, the terminal sink for trades,
// best-price updates, and reconstructed book states. See spec §4.6.
package sink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BullionBear/mdc/internal/book"
	"github.com/BullionBear/mdc/internal/marketdata"
)

// Logger writes one human-readable line per event to its configured
// zerolog logger (stdout by default, per the teacher's logging idiom).
// Ordering across the three event classes is not guaranteed since they
// arrive on independent channels (spec §4.6); each Run* method is its own
// goroutine and consumer.
type Logger struct {
	log  zerolog.Logger
	topN int
}

func New(log zerolog.Logger, topN int) *Logger {
	return &Logger{log: log.With().Str("component", "logger").Logger(), topN: topN}
}

// RunTrades drains trades until ctx is cancelled.
func (l *Logger) RunTrades(ctx context.Context, trades <-chan marketdata.Trade) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-trades:
			l.log.Info().
				Str("symbol", t.Symbol).
				Str("price", t.Price).
				Str("qty", t.Qty).
				Int64("time_ms", t.TimeMs).
				Str("side", sideString(t.Side)).
				Msg("trade")
		}
	}
}

// RunPrices drains best-price updates until ctx is cancelled.
func (l *Logger) RunPrices(ctx context.Context, prices <-chan marketdata.PriceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-prices:
			l.log.Info().
				Str("symbol", p.Symbol).
				Str("bid_price", p.BidPrice).
				Str("bid_qty", p.BidQty).
				Str("ask_price", p.AskPrice).
				Str("ask_qty", p.AskQty).
				Msg("price")
		}
	}
}

// RunBookStates drains reconstructed book states until ctx is cancelled.
// Ordering within this stream mirrors the dispatcher's emission order
// (single producer, single consumer).
func (l *Logger) RunBookStates(ctx context.Context, states <-chan book.State) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-states:
			event := l.log.Info().
				Uint64("last_update_id", s.LastUpdateID).
				Int("top_n", l.topN)
			event.Array("bids", levelArray(s.Bids))
			event.Array("asks", levelArray(s.Asks))
			event.Msg("book")
		}
	}
}

func sideString(s marketdata.Side) string {
	switch s {
	case marketdata.SideBuy:
		return "buy"
	case marketdata.SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// levelArray adapts a slice of book.PriceLevel to zerolog.LogArrayMarshaler
// so the per-level price/qty pairs render as a compact JSON array instead
// of a multi-field blob.
type levelArray []book.PriceLevel

func (a levelArray) MarshalZerologArray(arr *zerolog.Array) {
	for _, lvl := range a {
		arr.Str(lvl.Price.String() + "@" + lvl.Qty.String())
	}
}
