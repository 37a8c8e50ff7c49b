package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/BullionBear/mdc/internal/config"
	"github.com/BullionBear/mdc/internal/marketdata"
)

// SnapshotStream polls the exchange's REST depth endpoint on a fixed
// interval and pushes decoded snapshots downstream (spec §4.3). Grounded on
// the teacher's own REST client for the same endpoint family, swapped here
// to stdlib net/http per SPEC_FULL's standard-library justification for
// this component (a single periodic GET does not warrant pulling in a full
// HTTP client library the rest of the pipeline has no other use for).
type SnapshotStream struct {
	log      zerolog.Logger
	client   *http.Client
	endpoint string
	interval time.Duration
}

// NewSnapshotStream creates a SnapshotStream against the configured REST
// endpoint, instrument, and depth.
func NewSnapshotStream(log zerolog.Logger, cfg *config.Config) *SnapshotStream {
	endpoint := fmt.Sprintf("%s/depth?symbol=%s&limit=%d", cfg.BinanceRestEndpoint, cfg.Instrument, cfg.MaxDepth)
	return &SnapshotStream{
		log:      log.With().Str("component", "snapshot_stream").Logger(),
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		interval: cfg.SnapshotUpdateInterval(),
	}
}

// Run fetches a snapshot every interval and sends it to out, until ctx is
// cancelled. Transient failures (5xx, timeout, transport error) are logged
// and the next tick is awaited; a well-formed 4xx response is reported to
// fatal as configuration-fatal (spec §4.3/§7).
func (s *SnapshotStream) Run(ctx context.Context, out chan<- marketdata.Snapshot, fatal chan<- error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fetchAndForward(ctx, out, fatal)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndForward(ctx, out, fatal)
		}
	}
}

func (s *SnapshotStream) fetchAndForward(ctx context.Context, out chan<- marketdata.Snapshot, fatal chan<- error) {
	snap, err := s.fetch(ctx)
	if err != nil {
		if fe, ok := err.(*config.FatalError); ok {
			select {
			case fatal <- fe:
			case <-ctx.Done():
			}
			return
		}
		s.log.Warn().Err(err).Msg("transient snapshot fetch failure, will retry next tick")
		return
	}

	select {
	case out <- snap:
	case <-ctx.Done():
	}
}

func (s *SnapshotStream) fetch(ctx context.Context) (marketdata.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return marketdata.Snapshot{}, &config.FatalError{Reason: fmt.Sprintf("building snapshot request: %v", err)}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return marketdata.Snapshot{}, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return marketdata.Snapshot{}, fmt.Errorf("reading snapshot response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return marketdata.Snapshot{}, fmt.Errorf("snapshot endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return marketdata.Snapshot{}, &config.FatalError{
			Reason: fmt.Sprintf("snapshot endpoint returned %d for a well-formed request: %s", resp.StatusCode, body),
		}
	}

	return marketdata.DecodeSnapshot(body)
}
