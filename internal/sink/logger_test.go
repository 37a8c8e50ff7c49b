package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/BullionBear/mdc/internal/book"
	"github.com/BullionBear/mdc/internal/marketdata"
)

func newCapturingLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	return New(base, 5), &buf
}

func waitForLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if buf.Len() > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NotZero(t, buf.Len(), "expected a log line")
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRunTradesLogsOneLinePerTrade(t *testing.T) {
	l, buf := newCapturingLogger()
	trades := make(chan marketdata.Trade, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.RunTrades(ctx, trades)

	trades <- marketdata.Trade{Symbol: "BTCUSDT", Price: "50000.00", Qty: "0.01", TimeMs: 1000, Side: marketdata.SideBuy}

	line := waitForLine(t, buf)
	require.Equal(t, "trade", line["message"])
	require.Equal(t, "BTCUSDT", line["symbol"])
	require.Equal(t, "buy", line["side"])
}

func TestRunPricesLogsOneLinePerUpdate(t *testing.T) {
	l, buf := newCapturingLogger()
	prices := make(chan marketdata.PriceUpdate, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.RunPrices(ctx, prices)

	prices <- marketdata.PriceUpdate{Symbol: "BTCUSDT", BidPrice: "49999", BidQty: "1", AskPrice: "50001", AskQty: "1"}

	line := waitForLine(t, buf)
	require.Equal(t, "price", line["message"])
	require.Equal(t, "49999", line["bid_price"])
}

func TestRunBookStatesLogsLevelsAsCompactArray(t *testing.T) {
	l, buf := newCapturingLogger()
	states := make(chan book.State, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.RunBookStates(ctx, states)

	states <- book.State{
		LastUpdateID: 123,
		Bids:         []book.PriceLevel{{Price: decimal.RequireFromString("100"), Qty: decimal.RequireFromString("2")}},
		Asks:         []book.PriceLevel{{Price: decimal.RequireFromString("101"), Qty: decimal.RequireFromString("3")}},
	}

	line := waitForLine(t, buf)
	require.Equal(t, "book", line["message"])
	require.Equal(t, float64(123), line["last_update_id"])
	bids, ok := line["bids"].([]interface{})
	require.True(t, ok)
	require.Equal(t, "100@2", bids[0])
}

func TestRunTradesStopsOnContextCancel(t *testing.T) {
	l, _ := newCapturingLogger()
	trades := make(chan marketdata.Trade)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunTrades(ctx, trades)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunTrades did not return after cancellation")
	}
}
