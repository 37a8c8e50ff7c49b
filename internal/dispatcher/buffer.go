package dispatcher

import "github.com/BullionBear/mdc/internal/book"

// diffBuffer holds diffs awaiting reconciliation with a snapshot, ordered
// ascending by FinalUpdateID and deduplicated by (FirstUpdateID,
// FinalUpdateID) range — two diffs covering the same range are the same
// diff arriving over redundant connections (spec §4.4 "content is not
// compared"). It is bounded; once Bound is exceeded the oldest entries are
// dropped to satisfy spec §7 "buffer overflow ... never grow unbounded".
//
// There is no ecosystem container for this: it is ~order-by-insert plus a
// range-dedup check, small enough that reaching for a generic library
// would add indirection without buying anything (see DESIGN.md).
type diffBuffer struct {
	bound int
	diffs []book.Diff
}

func newDiffBuffer(bound int) *diffBuffer {
	return &diffBuffer{bound: bound}
}

// insert adds d if no buffered diff already covers the identical range,
// keeping diffs sorted by FinalUpdateID. Returns true if d was added.
func (b *diffBuffer) insert(d book.Diff) bool {
	for _, existing := range b.diffs {
		if existing.FirstUpdateID == d.FirstUpdateID && existing.FinalUpdateID == d.FinalUpdateID {
			return false
		}
	}
	i := 0
	for i < len(b.diffs) && b.diffs[i].FinalUpdateID < d.FinalUpdateID {
		i++
	}
	b.diffs = append(b.diffs, book.Diff{})
	copy(b.diffs[i+1:], b.diffs[i:])
	b.diffs[i] = d

	if b.bound > 0 && len(b.diffs) > b.bound {
		dropped := len(b.diffs) - b.bound
		b.diffs = b.diffs[dropped:]
		return true // d itself may have been the one dropped if it sorted to the front; caller only uses this for logging cadence
	}
	return true
}

// discardUpTo removes every buffered diff whose FinalUpdateID <= id —
// "already included in the snapshot" (spec §4.4 step 1).
func (b *diffBuffer) discardUpTo(id uint64) {
	i := 0
	for i < len(b.diffs) && b.diffs[i].FinalUpdateID <= id {
		i++
	}
	b.diffs = b.diffs[i:]
}

func (b *diffBuffer) len() int {
	return len(b.diffs)
}

func (b *diffBuffer) reset(seed ...book.Diff) {
	b.diffs = nil
	for _, d := range seed {
		b.insert(d)
	}
}

// all returns the buffered diffs in ascending FinalUpdateID order.
func (b *diffBuffer) all() []book.Diff {
	return b.diffs
}
