// Package shutdown coordinates cooperative process termination: it turns
// SIGINT/SIGTERM into context cancellation and gives running components a
// bounded window to drain before the process exits. Grounded on the
// teacher's shutdown coordinator, adapted to log through zerolog instead of
// its own logger interface.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Coordinator owns the root context for the pipeline and tracks components
// that must be given a chance to finish in-flight work before exit.
type Coordinator struct {
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	wg   sync.WaitGroup
	done bool
}

// New creates a Coordinator deriving its context from parent. Call Listen
// to start watching for termination signals.
func New(parent context.Context, log zerolog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{
		log:    log.With().Str("component", "shutdown").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context. Components select on
// Context().Done() to learn when to stop.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Track registers a component that should be waited on during a graceful
// shutdown. The returned func must be called exactly once when the
// component has finished draining.
func (c *Coordinator) Track() func() {
	c.wg.Add(1)
	var once sync.Once
	return func() {
		once.Do(c.wg.Done)
	}
}

// Listen blocks until SIGINT or SIGTERM is received, then cancels the
// context and waits up to gracePeriod for tracked components to finish.
// If the context is cancelled first (for example by Cancel), it returns
// without waiting.
func (c *Coordinator) Listen(gracePeriod time.Duration) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		c.log.Info().Str("signal", sig.String()).Msg("received termination signal")
	case <-c.ctx.Done():
		return
	}

	c.shutdown(gracePeriod)
}

// Cancel triggers shutdown programmatically (used by tests and by
// config-fatal error paths that want the same drain behavior as a signal).
func (c *Coordinator) Cancel(gracePeriod time.Duration) {
	c.shutdown(gracePeriod)
}

func (c *Coordinator) shutdown(gracePeriod time.Duration) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()

	c.cancel()

	waited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		c.log.Info().Msg("all components drained cleanly")
	case <-time.After(gracePeriod):
		c.log.Warn().Dur("grace_period", gracePeriod).Msg("grace period expired, forcing exit")
	}
}
