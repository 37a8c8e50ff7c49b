package marketdata

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes which of the three stream event classes a decoded
// message belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindTrade
	KindPrice
	KindDepth
)

// DecodeStreamMessage inspects one inbound WebSocket text frame and decodes
// it into exactly one typed event. A message this function cannot classify
// or parse returns an error; per spec §4.2 the caller logs it at warn and
// skips the single message without tearing down the connection.
func DecodeStreamMessage(raw []byte) (Kind, Trade, PriceUpdate, DepthDiff, error) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.EventType {
	case "trade":
		var wt wireTrade
		if err := json.Unmarshal(raw, &wt); err != nil {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode trade: %w", err)
		}
		side := SideBuy
		if wt.IsBuyerMaker {
			// the taker is the side opposite the resting maker
			side = SideSell
		}
		return KindTrade, Trade{
			Symbol: wt.Symbol,
			Price:  wt.Price,
			Qty:    wt.Qty,
			TimeMs: wt.TradeTime,
			Side:   side,
		}, PriceUpdate{}, DepthDiff{}, nil

	case "depthUpdate":
		var wd wireDepthUpdate
		if err := json.Unmarshal(raw, &wd); err != nil {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode depth: %w", err)
		}
		if wd.FirstUpdateID > wd.FinalUpdateID {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("depth update has first_update_id %d > final_update_id %d", wd.FirstUpdateID, wd.FinalUpdateID)
		}
		bids, err := toPriceLevels(wd.Bids)
		if err != nil {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode depth bids: %w", err)
		}
		asks, err := toPriceLevels(wd.Asks)
		if err != nil {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode depth asks: %w", err)
		}
		return KindDepth, Trade{}, PriceUpdate{}, DepthDiff{
			FirstUpdateID: wd.FirstUpdateID,
			FinalUpdateID: wd.FinalUpdateID,
			Bids:          bids,
			Asks:          asks,
		}, nil

	case "bookTicker", "":
		var wb wireBookTicker
		if err := json.Unmarshal(raw, &wb); err != nil {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("decode ticker: %w", err)
		}
		if wb.BidPrice == "" && wb.AskPrice == "" {
			return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("unrecognized message: %s", raw)
		}
		return KindPrice, Trade{}, PriceUpdate{
			Symbol:   wb.Symbol,
			BidPrice: wb.BidPrice,
			BidQty:   wb.BidQty,
			AskPrice: wb.AskPrice,
			AskQty:   wb.AskQty,
		}, DepthDiff{}, nil

	default:
		return KindUnknown, Trade{}, PriceUpdate{}, DepthDiff{}, fmt.Errorf("unknown event type %q", env.EventType)
	}
}

// DecodeSnapshot decodes a REST /depth response body.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var ws wireDepthSnapshot
	if err := json.Unmarshal(raw, &ws); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	bids, err := toPriceLevels(ws.Bids)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot bids: %w", err)
	}
	asks, err := toPriceLevels(ws.Asks)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot asks: %w", err)
	}
	return Snapshot{
		LastUpdateID: ws.LastUpdateID,
		Bids:         bids,
		Asks:         asks,
	}, nil
}
