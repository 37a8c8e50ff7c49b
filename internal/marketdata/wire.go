// Package marketdata decodes the exchange's JSON message envelope into the
// pipeline's internal types. Field names below mirror the exchange's
// published WebSocket/REST schema exactly (bit-exact compatibility is
// required for decoding per spec §6); nothing about their Go names or
// shape is allowed to leak decoding concerns into internal/book or
// internal/dispatcher.
package marketdata

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/BullionBear/mdc/internal/book"
)

// wireLevel is one [price, qty] pair as the exchange sends it: a
// two-element JSON array of decimal strings.
type wireLevel [2]string

func (l wireLevel) toPriceLevel() (book.PriceLevel, error) {
	price, err := decimal.NewFromString(l[0])
	if err != nil {
		return book.PriceLevel{}, fmt.Errorf("price %q: %w", l[0], err)
	}
	qty, err := decimal.NewFromString(l[1])
	if err != nil {
		return book.PriceLevel{}, fmt.Errorf("qty %q: %w", l[1], err)
	}
	return book.PriceLevel{Price: price, Qty: qty}, nil
}

func toPriceLevels(raw []wireLevel) ([]book.PriceLevel, error) {
	out := make([]book.PriceLevel, 0, len(raw))
	for _, r := range raw {
		l, err := r.toPriceLevel()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// wireEnvelope is the minimal shape needed to tell the three stream message
// kinds apart before fully decoding one of them.
type wireEnvelope struct {
	EventType string `json:"e"`
}

// wireDepthUpdate is a depth-diff message: "e":"depthUpdate".
type wireDepthUpdate struct {
	EventType     string      `json:"e"`
	Symbol        string      `json:"s"`
	FirstUpdateID uint64      `json:"U"`
	FinalUpdateID uint64      `json:"u"`
	Bids          []wireLevel `json:"b"`
	Asks          []wireLevel `json:"a"`
}

// wireTrade is a trade message: "e":"trade".
type wireTrade struct {
	EventType     string `json:"e"`
	Symbol        string `json:"s"`
	TradeID       int64  `json:"t"`
	Price         string `json:"p"`
	Qty           string `json:"q"`
	TradeTime     int64  `json:"T"`
	IsBuyerMaker  bool   `json:"m"`
}

// wireBookTicker is a best-price message: "e":"bookTicker" (or, on some
// exchange feeds, no "e" field at all — absence of EventType plus a
// non-empty bid or ask price field also identifies this kind, handled in decode.go).
type wireBookTicker struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	BidPrice  string `json:"b"`
	BidQty    string `json:"B"`
	AskPrice  string `json:"a"`
	AskQty    string `json:"A"`
}

// wireDepthSnapshot is the REST /depth response body.
type wireDepthSnapshot struct {
	LastUpdateID uint64      `json:"lastUpdateId"`
	Bids         []wireLevel `json:"bids"`
	Asks         []wireLevel `json:"asks"`
}
