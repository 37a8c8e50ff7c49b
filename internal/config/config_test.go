package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validYAML = `
binance_rest_endpoint: https://api.binance.com
binance_wss_endpoint: wss://stream.binance.com:9443
instrument: BTCUSDT
max_depth: 1000
connections: 3
reconnect_timeout: 2000
snapshot_update_interval: 60000
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mdc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.MaxBufferedDiffs)
	require.Equal(t, 3*64, cfg.ChannelBufferSize)
	require.Equal(t, 20, cfg.TopNLevels)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestValidateRejectsLowercaseInstrument(t *testing.T) {
	path := writeTempConfig(t, `
binance_rest_endpoint: https://api.binance.com
binance_wss_endpoint: wss://stream.binance.com:9443
instrument: btcusdt
max_depth: 20
connections: 1
reconnect_timeout: 1000
snapshot_update_interval: 1000
`)
	_, err := Load(path)
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestValidateRejectsUnacceptedDepth(t *testing.T) {
	path := writeTempConfig(t, `
binance_rest_endpoint: https://api.binance.com
binance_wss_endpoint: wss://stream.binance.com:9443
instrument: BTCUSDT
max_depth: 17
connections: 1
reconnect_timeout: 1000
snapshot_update_interval: 1000
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsZeroConnections(t *testing.T) {
	path := writeTempConfig(t, `
binance_rest_endpoint: https://api.binance.com
binance_wss_endpoint: wss://stream.binance.com:9443
instrument: BTCUSDT
max_depth: 20
connections: 0
reconnect_timeout: 1000
snapshot_update_interval: 1000
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateAcceptsLargeConnectionsNoInventedCap(t *testing.T) {
	path := writeTempConfig(t, `
binance_rest_endpoint: https://api.binance.com
binance_wss_endpoint: wss://stream.binance.com:9443
instrument: BTCUSDT
max_depth: 20
connections: 500
reconnect_timeout: 1000
snapshot_update_interval: 1000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.Connections)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}
