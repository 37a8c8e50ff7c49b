package marketdata

import "github.com/BullionBear/mdc/internal/book"

// Side flags which side of the trade the taker was on.
type Side int

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Trade is one executed trade, passed through to the logger untouched.
type Trade struct {
	Symbol string
	Price  string
	Qty    string
	TimeMs int64
	Side   Side
}

// PriceUpdate is a best bid/ask update, passed through to the logger untouched.
type PriceUpdate struct {
	Symbol   string
	BidPrice string
	BidQty   string
	AskPrice string
	AskQty   string
}

// DepthDiff is the dispatcher-facing incremental update, identical in
// shape to book.Diff but kept as a distinct type at the decode boundary so
// a future wire-format change doesn't ripple into internal/book.
type DepthDiff = book.Diff

// Snapshot is the dispatcher-facing full book state.
type Snapshot = book.Snapshot
