package marketdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStreamMessageDepthUpdate(t *testing.T) {
	raw := []byte(`{"e":"depthUpdate","s":"BTCUSDT","U":100,"u":105,"b":[["100.00","1.5"]],"a":[["100.50","2.0"]]}`)
	kind, _, _, depth, err := DecodeStreamMessage(raw)
	require.NoError(t, err)
	require.Equal(t, KindDepth, kind)
	require.Equal(t, uint64(100), depth.FirstUpdateID)
	require.Equal(t, uint64(105), depth.FinalUpdateID)
	require.Len(t, depth.Bids, 1)
	require.Len(t, depth.Asks, 1)
}

func TestDecodeStreamMessageTrade(t *testing.T) {
	raw := []byte(`{"e":"trade","s":"BTCUSDT","t":123,"p":"100.25","q":"0.5","T":1690000000000,"m":true}`)
	kind, trade, _, _, err := DecodeStreamMessage(raw)
	require.NoError(t, err)
	require.Equal(t, KindTrade, kind)
	require.Equal(t, "100.25", trade.Price)
	require.Equal(t, SideSell, trade.Side)
}

func TestDecodeStreamMessageBookTicker(t *testing.T) {
	raw := []byte(`{"e":"bookTicker","s":"BTCUSDT","b":"100.00","B":"1.0","a":"100.50","A":"2.0"}`)
	kind, _, price, _, err := DecodeStreamMessage(raw)
	require.NoError(t, err)
	require.Equal(t, KindPrice, kind)
	require.Equal(t, "100.00", price.BidPrice)
	require.Equal(t, "100.50", price.AskPrice)
}

func TestDecodeStreamMessageMalformedJSON(t *testing.T) {
	_, _, _, _, err := DecodeStreamMessage([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeStreamMessageUnknownEventType(t *testing.T) {
	_, _, _, _, err := DecodeStreamMessage([]byte(`{"e":"somethingElse"}`))
	require.Error(t, err)
}

func TestDecodeStreamMessageDepthFirstAfterFinalRejected(t *testing.T) {
	raw := []byte(`{"e":"depthUpdate","s":"BTCUSDT","U":200,"u":105}`)
	_, _, _, _, err := DecodeStreamMessage(raw)
	require.Error(t, err)
}

func TestDecodeSnapshot(t *testing.T) {
	raw := []byte(`{"lastUpdateId":100,"bids":[["100.00","1.5"]],"asks":[["100.50","2.0"]]}`)
	snap, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(100), snap.LastUpdateID)
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Asks, 1)
}

func TestDecodeSnapshotMalformedPrice(t *testing.T) {
	raw := []byte(`{"lastUpdateId":100,"bids":[["not-a-number","1.5"]],"asks":[]}`)
	_, err := DecodeSnapshot(raw)
	require.Error(t, err)
}
