package shutdown

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCancelStopsContextAndWaitsForTrackedComponents(t *testing.T) {
	c := New(context.Background(), zerolog.Nop())
	release := c.Track()

	finished := make(chan struct{})
	go func() {
		<-c.Context().Done()
		time.Sleep(10 * time.Millisecond)
		release()
		close(finished)
	}()

	start := time.Now()
	c.Cancel(time.Second)
	require.Less(t, time.Since(start), time.Second)

	select {
	case <-finished:
	default:
		t.Fatal("expected tracked component to have released before Cancel returned")
	}
}

func TestCancelForcesExitAfterGracePeriod(t *testing.T) {
	c := New(context.Background(), zerolog.Nop())
	c.Track() // never released

	start := time.Now()
	c.Cancel(20 * time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCancelIsIdempotent(t *testing.T) {
	c := New(context.Background(), zerolog.Nop())
	c.Cancel(time.Second)
	c.Cancel(time.Second) // must not block or panic
}
