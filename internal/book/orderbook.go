package book

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Snapshot is the full book state applied to reset both sides at once.
type Snapshot struct {
	LastUpdateID uint64
	Bids         []PriceLevel
	Asks         []PriceLevel
}

// Diff is an incremental update identified by an inclusive
// [FirstUpdateID, FinalUpdateID] sequence-number range.
type Diff struct {
	FirstUpdateID uint64
	FinalUpdateID uint64
	Bids          []PriceLevel
	Asks          []PriceLevel
}

// State is an immutable, point-in-time copy of the book suitable for
// handing to a consumer outside the owning goroutine.
type State struct {
	LastUpdateID uint64
	Bids         []PriceLevel // descending price
	Asks         []PriceLevel // ascending price
}

// OrderBook is the in-memory limit order book for one instrument. It is
// exclusively owned by whichever goroutine calls ApplySnapshot/ApplyDiff
// (the processor, per the package-level ownership rule); Snapshot is the
// only method safe to call from elsewhere, and it never observes a
// partially-applied diff because apply and copy share a mutex.
type OrderBook struct {
	mu           sync.RWMutex
	bids         *side
	asks         *side
	lastUpdateID uint64
}

func New() *OrderBook {
	return &OrderBook{
		bids: newSide(),
		asks: newSide(),
	}
}

// ApplySnapshot replaces both sides wholesale and resets LastUpdateID.
func (b *OrderBook) ApplySnapshot(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids.replace(s.Bids)
	b.asks.replace(s.Asks)
	b.lastUpdateID = s.LastUpdateID
}

// ApplyDiff applies an incremental update: zero-qty levels delete,
// non-zero levels insert-or-overwrite. Sides are independent, so a diff
// touching only one side leaves the other untouched.
func (b *OrderBook) ApplyDiff(d Diff) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids.apply(d.Bids)
	b.asks.apply(d.Asks)
	b.lastUpdateID = d.FinalUpdateID
}

// LastUpdateID returns the highest sequence number reflected in the book.
func (b *OrderBook) LastUpdateID() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdateID
}

// BestBid and BestAsk report the top of book; ok is false if that side is
// empty (the pathological empty-book case from spec §9 is handled by the
// caller treating "ok == false" as "no crossed-book check to perform").
func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.worst() // bids: best = highest price = worst() per ascending treemap order
}

func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.asks.best() // asks: best = lowest price = best()
}

// Snapshot returns a copy of the top n levels on each side plus the
// current LastUpdateID, safe to hand to a downstream consumer.
func (b *OrderBook) Snapshot(topN int) State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return State{
		LastUpdateID: b.lastUpdateID,
		Bids:         b.bids.topDescending(topN),
		Asks:         b.asks.topAscending(topN),
	}
}

// Sizes returns the number of levels on each side, mostly useful for tests
// and for the "both sides momentarily empty" boundary case in spec §9.
func (b *OrderBook) Sizes() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.size(), b.asks.size()
}
