// Package dispatcher implements the cross-stream reconciliation core of the
// capture pipeline: deduplicating diffs delivered redundantly over N
// connections, detecting the initial snapshot/diff sync point, detecting
// gaps in steady state, and emitting a strictly-ordered sequence of
// Apply commands to the book processor. See spec §4.4.
package dispatcher

import (
	"context"

	"github.com/BullionBear/mdc/internal/book"
	"github.com/rs/zerolog"
)

// ApplyKind distinguishes the two commands the dispatcher can emit.
type ApplyKind int

const (
	ApplySnapshot ApplyKind = iota
	ApplyDiff
)

// Apply is one command to the BookProcessor: either apply a full snapshot
// or apply one incremental diff. Exactly one of Snapshot/Diff is set,
// matching Kind.
type Apply struct {
	Kind     ApplyKind
	Snapshot book.Snapshot
	Diff     book.Diff
}

// dispatcherState is the sum type from spec §4.4: awaitingState or
// syncedState. Unsynced is folded into awaitingState with an empty buffer
// per the spec's own clarification ("treat the startup as AwaitingSnapshot
// with an empty buffer") — see DESIGN.md.
type dispatcherState interface {
	isDispatcherState()
}

type awaitingState struct {
	buffered *diffBuffer
}

func (awaitingState) isDispatcherState() {}

type syncedState struct {
	lastUpdateID uint64
}

func (syncedState) isDispatcherState() {}

// Dispatcher owns the reconciliation state machine. It is not safe for
// concurrent use; Run's goroutine is the only reader/writer.
type Dispatcher struct {
	log         zerolog.Logger
	maxBuffered int
	state       dispatcherState
}

// New returns a Dispatcher starting in AwaitingSnapshot with an empty
// buffer (spec §4.4 startup clarification). maxBuffered bounds the
// AwaitingSnapshot buffer (spec §7 "buffer overflow").
func New(log zerolog.Logger, maxBuffered int) *Dispatcher {
	return &Dispatcher{
		log:         log.With().Str("component", "dispatcher").Logger(),
		maxBuffered: maxBuffered,
		state:       awaitingState{buffered: newDiffBuffer(maxBuffered)},
	}
}

// Run consumes diffs and snapshots until ctx is cancelled, emitting Apply
// commands on applies. It is CPU-bound and non-suspending between receive
// and emit (spec §5); the only suspension point is the channel sends
// themselves, which provide this pipeline's sole backpressure mechanism.
func (d *Dispatcher) Run(ctx context.Context, diffs <-chan book.Diff, snapshots <-chan book.Snapshot, applies chan<- Apply) {
	for {
		select {
		case <-ctx.Done():
			return
		case diff := <-diffs:
			for _, a := range d.handleDiff(diff) {
				select {
				case applies <- a:
				case <-ctx.Done():
					return
				}
			}
		case snap := <-snapshots:
			for _, a := range d.handleSnapshot(snap) {
				select {
				case applies <- a:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleDiff processes one incoming diff against the current state and
// returns zero or more Apply commands, in order.
func (d *Dispatcher) handleDiff(diff book.Diff) []Apply {
	switch st := d.state.(type) {
	case awaitingState:
		full := d.maxBuffered > 0 && st.buffered.len() >= d.maxBuffered
		if added := st.buffered.insert(diff); !added {
			d.log.Debug().
				Uint64("first_update_id", diff.FirstUpdateID).
				Uint64("final_update_id", diff.FinalUpdateID).
				Msg("duplicate diff discarded while awaiting snapshot")
		} else if full {
			d.log.Warn().
				Int("max_buffered_diffs", d.maxBuffered).
				Msg("awaiting-snapshot buffer overflow, oldest buffered diff dropped")
		}
		return nil

	case syncedState:
		return d.handleDiffSynced(st, diff)

	default:
		return nil
	}
}

func (d *Dispatcher) handleDiffSynced(st syncedState, diff book.Diff) []Apply {
	L := st.lastUpdateID
	switch {
	case diff.FinalUpdateID <= L:
		// duplicate or stale replay; no effect on emitted state (spec §8 "duplicate idempotence")
		return nil

	case diff.FirstUpdateID == L+1:
		d.state = syncedState{lastUpdateID: diff.FinalUpdateID}
		return []Apply{{Kind: ApplyDiff, Diff: diff}}

	case diff.FirstUpdateID <= L:
		// overlapping tail: book's zero-or-overwrite semantics absorb the replay idempotently
		d.state = syncedState{lastUpdateID: diff.FinalUpdateID}
		return []Apply{{Kind: ApplyDiff, Diff: diff}}

	default:
		// diff.FirstUpdateID > L+1: gap
		d.log.Warn().
			Uint64("last_update_id", L).
			Uint64("first_update_id", diff.FirstUpdateID).
			Msg("gap detected, desyncing and awaiting snapshot")
		buf := newDiffBuffer(d.maxBuffered)
		buf.insert(diff)
		d.state = awaitingState{buffered: buf}
		return nil
	}
}

// handleSnapshot processes one incoming snapshot against the current
// state. Snapshots arriving while Synced are only meaningful as a
// staleness check; a gap is the only thing that puts us back into
// AwaitingSnapshot, so an on-time Synced snapshot is simply ignored.
func (d *Dispatcher) handleSnapshot(snap book.Snapshot) []Apply {
	st, ok := d.state.(awaitingState)
	if !ok {
		// already Synced: the existing diff stream supersedes the snapshot (spec §8 scenario 4, "stale snapshot ... ignored")
		return nil
	}
	return d.reconcile(st.buffered, snap)
}

// reconcile implements spec §4.4 AwaitingSnapshot-on-snapshot-arrival.
func (d *Dispatcher) reconcile(buf *diffBuffer, snap book.Snapshot) []Apply {
	buf.discardUpTo(snap.LastUpdateID)
	diffs := buf.all()

	if len(diffs) == 0 {
		d.log.Debug().Uint64("snapshot_last_update_id", snap.LastUpdateID).Msg("no buffered diffs yet, keep waiting")
		d.state = awaitingState{buffered: buf}
		return nil
	}

	target := snap.LastUpdateID + 1
	syncIdx := -1
	for i, dd := range diffs {
		if dd.FirstUpdateID <= target && target <= dd.FinalUpdateID {
			syncIdx = i
			break
		}
	}
	if syncIdx == -1 {
		// either every buffered diff starts after target (snapshot too old
		// relative to the buffer head) or arrives with a gap before target;
		// both per spec §4.4.3/4 resolve the same way here: discard this
		// snapshot, keep buffering for the next periodic one.
		d.log.Warn().
			Uint64("snapshot_last_update_id", snap.LastUpdateID).
			Uint64("buffer_head_first_update_id", diffs[0].FirstUpdateID).
			Msg("snapshot does not bracket buffered diffs, discarding snapshot")
		d.state = awaitingState{buffered: buf}
		return nil
	}

	applies := make([]Apply, 0, len(diffs)-syncIdx+1)
	applies = append(applies, Apply{Kind: ApplySnapshot, Snapshot: snap})

	prev := diffs[syncIdx]
	applies = append(applies, Apply{Kind: ApplyDiff, Diff: prev})

	for i := syncIdx + 1; i < len(diffs); i++ {
		curr := diffs[i]
		if curr.FirstUpdateID != prev.FinalUpdateID+1 {
			d.log.Warn().
				Uint64("expected_first_update_id", prev.FinalUpdateID+1).
				Uint64("got_first_update_id", curr.FirstUpdateID).
				Msg("contiguity broke mid-drain, aborting drain")
			newBuf := newDiffBuffer(d.maxBuffered)
			newBuf.reset(diffs[i:]...)
			d.state = awaitingState{buffered: newBuf}
			return applies
		}
		applies = append(applies, Apply{Kind: ApplyDiff, Diff: curr})
		prev = curr
	}

	d.state = syncedState{lastUpdateID: prev.FinalUpdateID}
	return applies
}
