// Package processor owns the single OrderBook instance and serializes
// Apply commands from the dispatcher into it, forwarding a book-state
// snapshot downstream after each mutation. See spec §4.5.
package processor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BullionBear/mdc/internal/book"
	"github.com/BullionBear/mdc/internal/dispatcher"
)

// Processor is the sole owner of an OrderBook: no other package holds a
// reference to it directly (spec §5 "no component outside the
// BookProcessor holds a reference to the book").
type Processor struct {
	log   zerolog.Logger
	book  *book.OrderBook
	topN  int
}

func New(log zerolog.Logger, topN int) *Processor {
	return &Processor{
		log:  log.With().Str("component", "processor").Logger(),
		book: book.New(),
		topN: topN,
	}
}

// Run consumes applies to completion, one at a time, forwarding a
// BookState after each one. It returns when ctx is cancelled or applies is
// closed. There is no batching or throttling here by design (spec §4.5);
// any rate limiting belongs to the sink.
func (p *Processor) Run(ctx context.Context, applies <-chan dispatcher.Apply, states chan<- book.State) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-applies:
			if !ok {
				return
			}
			p.apply(a)
			state := p.book.Snapshot(p.topN)
			select {
			case states <- state:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Processor) apply(a dispatcher.Apply) {
	switch a.Kind {
	case dispatcher.ApplySnapshot:
		p.book.ApplySnapshot(a.Snapshot)
		p.log.Debug().Uint64("last_update_id", a.Snapshot.LastUpdateID).Msg("applied snapshot")
	case dispatcher.ApplyDiff:
		p.book.ApplyDiff(a.Diff)
		p.log.Debug().Uint64("last_update_id", a.Diff.FinalUpdateID).Msg("applied diff")
	}
}

// Drain processes whatever is already queued on applies without blocking
// for new sends, used by a graceful shutdown that wants in-flight work
// finished before exit (spec §5 "drain its input channel ... only if a
// graceful shutdown is requested").
func (p *Processor) Drain(applies <-chan dispatcher.Apply, states chan<- book.State) {
	for {
		select {
		case a, ok := <-applies:
			if !ok {
				return
			}
			p.apply(a)
			select {
			case states <- p.book.Snapshot(p.topN):
			default:
			}
		default:
			return
		}
	}
}
