package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func lvl(price, qty string) PriceLevel {
	return PriceLevel{Price: decimal.RequireFromString(price), Qty: decimal.RequireFromString(qty)}
}

func TestApplySnapshotReplacesBothSides(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{
		LastUpdateID: 100,
		Bids:         []PriceLevel{lvl("100.00", "1.5"), lvl("99.50", "2.0")},
		Asks:         []PriceLevel{lvl("100.50", "1.0")},
	})

	state := b.Snapshot(10)
	require.Equal(t, uint64(100), state.LastUpdateID)
	require.Len(t, state.Bids, 2)
	require.Len(t, state.Asks, 1)
	// bids come back strictly descending
	require.True(t, state.Bids[0].Price.GreaterThan(state.Bids[1].Price))
}

func TestApplySnapshotDiscardsZeroQuantityLevels(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{
		LastUpdateID: 1,
		Bids:         []PriceLevel{lvl("100.00", "0")},
		Asks:         []PriceLevel{lvl("101.00", "1.0")},
	})
	bids, asks := b.Sizes()
	require.Equal(t, 0, bids)
	require.Equal(t, 1, asks)
}

// Scenario 5 (spec §8): zero-quantity deletion.
func TestApplyDiffZeroQuantityDeletesLevel(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{LastUpdateID: 10, Bids: []PriceLevel{lvl("100.50", "2.0")}})
	b.ApplyDiff(Diff{FirstUpdateID: 11, FinalUpdateID: 11, Bids: []PriceLevel{lvl("100.50", "0")}})

	state := b.Snapshot(10)
	require.Empty(t, state.Bids)
	require.Equal(t, uint64(11), state.LastUpdateID)
}

func TestApplyDiffOnOneSideLeavesOtherUntouched(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{LastUpdateID: 1})
	b.ApplyDiff(Diff{
		FirstUpdateID: 2,
		FinalUpdateID: 2,
		Bids:          []PriceLevel{lvl("99.00", "1")},
	})
	state := b.Snapshot(10)
	require.Len(t, state.Bids, 1)
	require.Empty(t, state.Asks)
}

// Invariant 2 (spec §8): best bid strictly less than best ask when both sides non-empty.
func TestBestBidBelowBestAsk(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{
		LastUpdateID: 1,
		Bids:         []PriceLevel{lvl("100.00", "1"), lvl("99.00", "1")},
		Asks:         []PriceLevel{lvl("100.50", "1"), lvl("101.00", "1")},
	})
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	require.True(t, okBid)
	require.True(t, okAsk)
	require.True(t, bid.LessThan(ask))
}

func TestEmptyBookBestReturnsFalse(t *testing.T) {
	b := New()
	_, ok := b.BestBid()
	require.False(t, ok)
	_, ok = b.BestAsk()
	require.False(t, ok)
}

func TestApplyDiffOverwritesExistingLevel(t *testing.T) {
	b := New()
	b.ApplySnapshot(Snapshot{LastUpdateID: 1, Bids: []PriceLevel{lvl("100.00", "1")}})
	b.ApplyDiff(Diff{FirstUpdateID: 2, FinalUpdateID: 2, Bids: []PriceLevel{lvl("100.00", "5")}})

	state := b.Snapshot(10)
	require.Len(t, state.Bids, 1)
	require.True(t, state.Bids[0].Qty.Equal(decimal.RequireFromString("5")))
}
