// Package stream implements MarketEventStream and DepthSnapshotStream (spec
// §4.1/§4.3): the two external-facing connections to the exchange. Grounded
// on the teacher's websocket client, which already wraps gorilla/websocket
// with the same infinite-retry-fixed-delay reconnect loop this spec
// requires; adapted here to decode through internal/marketdata instead of
// the teacher's own wire types, and to emit typed Events on a channel
// instead of callbacks.
package stream

import (
	"context"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/BullionBear/mdc/internal/marketdata"
)

// EventKind distinguishes the five things an EventStream can emit.
type EventKind int

const (
	EventTrade EventKind = iota
	EventPrice
	EventDepth
	EventDisconnected
	EventReconnected
)

// Event is the single typed value an EventStream pushes downstream. Only
// the field matching Kind is populated.
type Event struct {
	Kind  EventKind
	Trade marketdata.Trade
	Price marketdata.PriceUpdate
	Depth marketdata.DepthDiff
}

// EventStream is one logical WebSocket session against a stream endpoint.
// Multiple instances subscribed to the same depth stream are expected
// (spec §4.1 "multiple depth-stream instances subscribe to the same depth
// stream ... on independent connections"); this type holds no shared state
// and does not know about redundancy, dedup, or any other instance.
type EventStream struct {
	log             zerolog.Logger
	endpoint        string
	reconnectTimeout time.Duration
	dialer          *websocket.Dialer
}

// New creates an EventStream against endpoint (a complete, ready-to-dial
// stream URL — subscription path composition is the caller's
// responsibility, matching the teacher's convention of a pre-built URL per
// session).
func New(log zerolog.Logger, endpoint string, reconnectTimeout time.Duration) *EventStream {
	return &EventStream{
		log:              log.With().Str("component", "event_stream").Str("endpoint", endpoint).Logger(),
		endpoint:         endpoint,
		reconnectTimeout: reconnectTimeout,
		dialer:           websocket.DefaultDialer,
	}
}

// Run connects and pushes decoded events to out until ctx is cancelled. When
// an established connection fails it emits Disconnected; after a failed
// read or dial it waits reconnectTimeout and dials again indefinitely,
// emitting Reconnected once a redial succeeds. Per-message decode errors are
// logged and skipped without tearing down the session (spec §4.1).
func (s *EventStream) Run(ctx context.Context, out chan<- Event) {
	if _, err := url.Parse(s.endpoint); err != nil {
		s.log.Error().Err(err).Msg("invalid endpoint, stream will not start")
		return
	}

	reconnecting := false

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := s.dialer.DialContext(ctx, s.endpoint, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("dial failed, will retry")
			reconnecting = true
			if !s.waitBeforeRetry(ctx) {
				return
			}
			continue
		}

		if reconnecting {
			select {
			case out <- Event{Kind: EventReconnected}:
			case <-ctx.Done():
				conn.Close()
				return
			}
			reconnecting = false
		}

		clean := s.readLoop(ctx, conn, out)
		conn.Close()

		if ctx.Err() != nil {
			return
		}

		if !clean {
			select {
			case out <- Event{Kind: EventDisconnected}:
			case <-ctx.Done():
				return
			}
			reconnecting = true
		}

		if !s.waitBeforeRetry(ctx) {
			return
		}
	}
}

func (s *EventStream) waitBeforeRetry(ctx context.Context) bool {
	timer := time.NewTimer(s.reconnectTimeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// readLoop reads frames until the connection errors or ctx is cancelled.
// Returns true if it stopped because ctx was cancelled (a clean stop that
// should not emit Disconnected).
func (s *EventStream) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Event) bool {
	msgs := make(chan []byte, 1)
	errs := make(chan error, 1)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return true
		case err := <-errs:
			s.log.Warn().Err(err).Msg("read error, reconnecting")
			return false
		case data := <-msgs:
			s.handleMessage(ctx, data, out)
		}
	}
}

func (s *EventStream) handleMessage(ctx context.Context, data []byte, out chan<- Event) {
	kind, trade, price, depth, err := marketdata.DecodeStreamMessage(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("skipping malformed message")
		return
	}

	var ev Event
	switch kind {
	case marketdata.KindTrade:
		ev = Event{Kind: EventTrade, Trade: trade}
	case marketdata.KindPrice:
		ev = Event{Kind: EventPrice, Price: price}
	case marketdata.KindDepth:
		ev = Event{Kind: EventDepth, Depth: depth}
	default:
		return
	}

	select {
	case out <- ev:
	case <-ctx.Done():
	}
}
