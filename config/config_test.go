package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Transport.NoDelay)
	assert.Equal(t, 20*time.Second, cfg.Upgrade.Timeout.Duration())
	assert.Equal(t, []string{MuxerYamux, MuxerHashicorpYamux}, cfg.Upgrade.Muxers)
	assert.Equal(t, "127.0.0.1:9050", cfg.Onion.ProxyAddr)
	assert.Equal(t, DefaultLocalPort, cfg.Onion.Routes[DefaultOnionAddr])
}

// TestConfig_Validate 测试配置验证
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"key type", func(c *Config) { c.Identity.KeyType = "RSA" }, ErrInvalidKeyType},
		{"proxy addr", func(c *Config) { c.Onion.ProxyAddr = "nope" }, ErrInvalidProxyAddr},
		{"route not onion", func(c *Config) {
			c.Onion.Routes = map[string]uint16{"/ip4/1.2.3.4/tcp/7": 7777}
		}, ErrInvalidRoute},
		{"route bad addr", func(c *Config) { c.Onion.Routes = map[string]uint16{"garbage": 1} }, ErrInvalidRoute},
		{"route port zero", func(c *Config) { c.Onion.Routes = map[string]uint16{DefaultOnionAddr: 0} }, ErrInvalidRoute},
		{"upgrade timeout", func(c *Config) { c.Upgrade.Timeout = 0 }, ErrInvalidTimeout},
		{"no muxers", func(c *Config) { c.Upgrade.Muxers = nil }, ErrNoMuxers},
		{"unknown muxer", func(c *Config) { c.Upgrade.Muxers = []string{"/mplex/6.7.0"} }, ErrUnknownMuxer},
		{"ping interval", func(c *Config) { c.Ping.Interval = -1 }, ErrInvalidInterval},
		{"dns server", func(c *Config) { c.DNS.Servers = []string{"8.8.8.8"} }, ErrInvalidDNSServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

// TestDuration_JSON 测试 Duration 的 JSON 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, time.Microsecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}

// TestLoad 测试从文件加载
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onionping.json")
	data := `{
		"onion": {"routes": {"/onion3/r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid:7": 9999}},
		"ping": {"interval": "1s"},
		"upgrade": {"timeout": "5s"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint16(9999), cfg.Onion.Routes[DefaultOnionAddr])
	assert.Equal(t, time.Second, cfg.Ping.Interval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Upgrade.Timeout.Duration())
	// 未出现的字段保留默认值
	assert.Equal(t, "127.0.0.1:9050", cfg.Onion.ProxyAddr)
	assert.Equal(t, 20*time.Second, cfg.Ping.Timeout.Duration())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestToJSON 测试序列化后可再次加载
func TestToJSON(t *testing.T) {
	cfg := NewConfig()
	cfg.DNS.Servers = []string{"127.0.0.1:53"}

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

// TestApplyEnv 测试环境变量覆盖
func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPrefix+EnvProxyAddr, "127.0.0.1:9150")
	t.Setenv(EnvPrefix+EnvDNSServers, " 1.1.1.1:53, ,9.9.9.9:53 ")
	t.Setenv(EnvPrefix+EnvPingInterval, "1s")
	t.Setenv(EnvPrefix+EnvKeepAlive, "false")
	t.Setenv(EnvPrefix+EnvUpgradeTimeout, "later")

	cfg := NewConfig()
	ignored := cfg.ApplyEnv()

	assert.Equal(t, "127.0.0.1:9150", cfg.Onion.ProxyAddr)
	assert.Equal(t, []string{"1.1.1.1:53", "9.9.9.9:53"}, cfg.DNS.Servers)
	assert.Equal(t, time.Second, cfg.Ping.Interval.Duration())
	assert.False(t, cfg.Ping.KeepAlive)
	assert.Equal(t, 20*time.Second, cfg.Upgrade.Timeout.Duration())
	assert.Equal(t, []string{EnvPrefix + EnvUpgradeTimeout}, ignored)
}

// TestFromJSON_RoutesReplaced 测试 routes 整体替换默认路由表
func TestFromJSON_RoutesReplaced(t *testing.T) {
	other := "/onion3/vww6ybal4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd:80"
	cfg, err := FromJSON([]byte(`{"onion": {"routes": {"` + other + `": 8080}}}`))
	require.NoError(t, err)
	assert.Len(t, cfg.Onion.Routes, 1)
	assert.Equal(t, uint16(8080), cfg.Onion.Routes[other])

	cfg, err = FromJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultLocalPort, cfg.Onion.Routes[DefaultOnionAddr])
}
