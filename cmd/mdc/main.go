// Command mdc captures real-time market data for a single instrument from
// a centralized exchange and reconstructs a consistent local order book.
// See SPEC_FULL.md for the full component wiring.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BullionBear/mdc/internal/book"
	"github.com/BullionBear/mdc/internal/config"
	"github.com/BullionBear/mdc/internal/dispatcher"
	"github.com/BullionBear/mdc/internal/marketdata"
	"github.com/BullionBear/mdc/internal/processor"
	"github.com/BullionBear/mdc/internal/shutdown"
	"github.com/BullionBear/mdc/internal/sink"
	"github.com/BullionBear/mdc/internal/stream"
	"github.com/BullionBear/mdc/internal/telemetry"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	configPath := flag.String("config", "mdc.yaml", "path to the YAML configuration file")
	logLevel := flag.String("log-level", "", "log level override (trace|debug|info|warn|error)")
	graceful := flag.Bool("graceful-shutdown", false, "drain in-flight work before exit on termination signal")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if err := telemetry.Init(level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := telemetry.Log

	coord := shutdown.New(context.Background(), log)
	ctx := coord.Context()

	diffs := make(chan book.Diff, cfg.ChannelBufferSize)
	snapshots := make(chan book.Snapshot, cfg.ChannelBufferSize)
	applies := make(chan dispatcher.Apply, cfg.ChannelBufferSize)
	states := make(chan book.State, cfg.ChannelBufferSize)
	trades := make(chan marketdata.Trade, cfg.ChannelBufferSize)
	prices := make(chan marketdata.PriceUpdate, cfg.ChannelBufferSize)
	fatal := make(chan error, 1)

	disp := dispatcher.New(log, cfg.MaxBufferedDiffs)
	proc := processor.New(log, cfg.TopNLevels)
	logSink := sink.New(log, cfg.TopNLevels)

	for i := 0; i < cfg.Connections; i++ {
		es := stream.New(log, cfg.BinanceWssEndpoint, cfg.ReconnectTimeout())
		release := coord.Track()
		go func() {
			defer release()
			runDepthStream(ctx, es, diffs)
		}()
	}

	tickerStream := stream.New(log, cfg.BinanceWssEndpoint, cfg.ReconnectTimeout())
	release := coord.Track()
	go func() {
		defer release()
		runTradeStream(ctx, tickerStream, trades, prices)
	}()

	snapStream := stream.NewSnapshotStream(log, cfg)
	release = coord.Track()
	go func() {
		defer release()
		snapStream.Run(ctx, snapshots, fatal)
	}()

	release = coord.Track()
	go func() {
		defer release()
		disp.Run(ctx, diffs, snapshots, applies)
	}()

	release = coord.Track()
	go func() {
		defer release()
		proc.Run(ctx, applies, states)
		// spec §5: drain in-flight applies only if graceful shutdown was
		// requested; otherwise whatever is still queued is dropped.
		if *graceful {
			proc.Drain(applies, states)
		}
	}()

	release = coord.Track()
	go func() {
		defer release()
		logSink.RunTrades(ctx, trades)
	}()

	release = coord.Track()
	go func() {
		defer release()
		logSink.RunPrices(ctx, prices)
	}()

	release = coord.Track()
	go func() {
		defer release()
		logSink.RunBookStates(ctx, states)
	}()

	go func() {
		if err := <-fatal; err != nil {
			log.Error().Err(err).Msg("fatal error, shutting down")
			var cfgFatal *config.FatalError
			if errors.As(err, &cfgFatal) {
				coord.Cancel(shutdownGracePeriod)
				os.Exit(1)
			}
		}
	}()

	grace := shutdownGracePeriod
	if !*graceful {
		grace = 0
	}
	coord.Listen(grace)
	log.Info().Msg("shutdown complete")
}

func runDepthStream(ctx context.Context, es *stream.EventStream, diffs chan<- book.Diff) {
	out := make(chan stream.Event, 64)
	go es.Run(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-out:
			if ev.Kind == stream.EventDepth {
				select {
				case diffs <- ev.Depth:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func runTradeStream(ctx context.Context, es *stream.EventStream, trades chan<- marketdata.Trade, prices chan<- marketdata.PriceUpdate) {
	out := make(chan stream.Event, 64)
	go es.Run(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-out:
			switch ev.Kind {
			case stream.EventTrade:
				select {
				case trades <- ev.Trade:
				case <-ctx.Done():
					return
				}
			case stream.EventPrice:
				select {
				case prices <- ev.Price:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
