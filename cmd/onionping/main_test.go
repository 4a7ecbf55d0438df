package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/pkg/types"
)

const testOnion = "/onion3/vww6ybal4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd:1234"

func TestParseFlags_Defaults(t *testing.T) {
	f, err := parseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, modeDialer, f.mode)
	assert.Equal(t, config.DefaultOnionAddr, f.addr)
	assert.Equal(t, uint(config.DefaultLocalPort), f.port)
	assert.False(t, f.isSet("port"))
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := parseFlags([]string{"-mode", "relay"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-port", "70000"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"extra"})
	assert.Error(t, err)
}

func TestBuildConfig_DialerDefaults(t *testing.T) {
	f, err := parseFlags([]string{"-mode", "dialer"})
	require.NoError(t, err)

	cfg, err := buildConfig(f)
	require.NoError(t, err)

	assert.Equal(t, dialerPingInterval, cfg.Ping.Interval.Duration())
	assert.True(t, cfg.Ping.KeepAlive)
	assert.Equal(t, config.DefaultLocalPort, cfg.Onion.Routes[config.DefaultOnionAddr])
}

func TestBuildConfig_ListenerKeepsInterval(t *testing.T) {
	f, err := parseFlags([]string{"-mode", "listener"})
	require.NoError(t, err)

	cfg, err := buildConfig(f)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPingConfig().Interval, cfg.Ping.Interval)
	assert.True(t, cfg.Ping.KeepAlive)
}

func TestBuildConfig_FlagsOverride(t *testing.T) {
	f, err := parseFlags([]string{
		"-addr", testOnion,
		"-port", "9001",
		"-proxy", "127.0.0.1:9150",
		"-workers", "8",
		"-metrics", "127.0.0.1:0",
		"-identity", filepath.Join(t.TempDir(), "node.key"),
	})
	require.NoError(t, err)

	cfg, err := buildConfig(f)
	require.NoError(t, err)

	assert.Equal(t, uint16(9001), cfg.Onion.Routes[testOnion])
	assert.Equal(t, "127.0.0.1:9150", cfg.Onion.ProxyAddr)
	assert.Equal(t, 8, cfg.Swarm.Workers)
	assert.True(t, cfg.Metrics.Enable)
	assert.Equal(t, "127.0.0.1:0", cfg.Metrics.ListenAddr)
	assert.NotEmpty(t, cfg.Identity.KeyFile)
}

func TestBuildConfig_Priority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onionping.json")
	data := `{"onion":{"proxy_addr":"127.0.0.1:1111","routes":{"` + testOnion + `":4321}},"ping":{"interval":"5s"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	// 文件
	f, err := parseFlags([]string{"-config", path, "-addr", testOnion})
	require.NoError(t, err)
	cfg, err := buildConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1111", cfg.Onion.ProxyAddr)
	assert.Equal(t, uint16(4321), cfg.Onion.Routes[testOnion])
	assert.Equal(t, 5*time.Second, cfg.Ping.Interval.Duration())

	// 环境变量覆盖文件
	t.Setenv(config.EnvPrefix+config.EnvProxyAddr, "127.0.0.1:2222")
	cfg, err = buildConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2222", cfg.Onion.ProxyAddr)

	// 命令行覆盖环境变量
	f, err = parseFlags([]string{"-config", path, "-addr", testOnion, "-proxy", "127.0.0.1:3333"})
	require.NoError(t, err)
	cfg, err = buildConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3333", cfg.Onion.ProxyAddr)
}

func TestBuildConfig_RouteKeyCanonical(t *testing.T) {
	host := strings.TrimSuffix(strings.TrimPrefix(testOnion, "/onion3/"), ":1234")
	upper := "/onion3/" + strings.ToUpper(host) + ":1234"

	path := filepath.Join(t.TempDir(), "onionping.json")
	data := `{"onion":{"routes":{"` + upper + `":4321}}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	// 文件里的非规范写法与命令行地址合并
	f, err := parseFlags([]string{"-config", path, "-addr", testOnion})
	require.NoError(t, err)
	cfg, err := buildConfig(f)
	require.NoError(t, err)
	assert.Equal(t, uint16(4321), cfg.Onion.Routes[testOnion])
	assert.NotContains(t, cfg.Onion.Routes, upper)

	// 命令行的非规范写法覆盖端口
	f, err = parseFlags([]string{"-config", path, "-addr", upper, "-port", "9001"})
	require.NoError(t, err)
	cfg, err = buildConfig(f)
	require.NoError(t, err)
	assert.Equal(t, uint16(9001), cfg.Onion.Routes[testOnion])
	assert.NotContains(t, cfg.Onion.Routes, upper)
}

func TestSetRoute(t *testing.T) {
	routes := map[string]uint16{testOnion: 4321}
	require.NoError(t, setRoute(routes, testOnion, 9001, false))
	assert.Equal(t, uint16(4321), routes[testOnion])

	require.NoError(t, setRoute(routes, testOnion, 9001, true))
	assert.Equal(t, uint16(9001), routes[testOnion])

	assert.Error(t, setRoute(routes, "not-an-addr", 1, true))
	assert.Len(t, routes, 1)
}

func TestBuildConfig_InvalidAddr(t *testing.T) {
	f, err := parseFlags([]string{"-addr", "/ip4/127.0.0.1/tcp/1"})
	require.NoError(t, err)

	_, err = buildConfig(f)
	assert.Error(t, err)
}

func TestFormatEvent(t *testing.T) {
	ev := types.Event{
		Type: types.EventPingSuccess,
		Peer: types.PeerID("QmPeer"),
		RTT:  12 * time.Millisecond,
		Time: time.Date(2024, 1, 1, 10, 20, 30, 0, time.UTC),
	}
	line := formatEvent(ev)
	assert.True(t, strings.HasPrefix(line, "10:20:30.000 "))
	assert.Contains(t, line, "QmPeer")
	assert.Contains(t, line, "12ms")

	line = formatEvent(types.Event{Type: types.EventDialFailed, Err: errors.New("boom")})
	assert.Contains(t, line, "boom")
}
