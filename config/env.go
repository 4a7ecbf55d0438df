package config

import (
	"os"
	"strconv"
	"strings"
)

// 环境变量
const (
	EnvPrefix = "ONIONPING_"

	EnvKeyFile        = "KEY_FILE"
	EnvProxyAddr      = "PROXY_ADDR"
	EnvLocalHost      = "LOCAL_HOST"
	EnvDNSServers     = "DNS_SERVERS"
	EnvUpgradeTimeout = "UPGRADE_TIMEOUT"
	EnvPingInterval   = "PING_INTERVAL"
	EnvPingTimeout    = "PING_TIMEOUT"
	EnvKeepAlive      = "KEEP_ALIVE"
	EnvNoDelay        = "NO_DELAY"
	EnvMetricsAddr    = "METRICS_ADDR"
)

// ApplyEnv 应用环境变量覆盖
//
// 支持的环境变量（均使用 ONIONPING_ 前缀）：
//   - ONIONPING_KEY_FILE: 身份密钥文件
//   - ONIONPING_PROXY_ADDR: Tor SOCKS5 代理地址
//   - ONIONPING_LOCAL_HOST: 隐藏服务本地主机
//   - ONIONPING_DNS_SERVERS: DNS 服务器（逗号分隔）
//   - ONIONPING_UPGRADE_TIMEOUT: 建连总超时
//   - ONIONPING_PING_INTERVAL / ONIONPING_PING_TIMEOUT: 探测参数
//   - ONIONPING_KEEP_ALIVE / ONIONPING_NO_DELAY: 布尔开关
//   - ONIONPING_METRICS_ADDR: /metrics 监听地址
//
// 无法解析的值被忽略，返回被忽略的变量名。
func (c *Config) ApplyEnv() []string {
	var ignored []string
	get := func(name string) (string, bool) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	setDuration := func(name string, d *Duration) {
		if v, ok := get(name); ok {
			if err := d.Set(v); err != nil {
				ignored = append(ignored, EnvPrefix+name)
			}
		}
	}
	setBool := func(name string, b *bool) {
		if v, ok := get(name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				ignored = append(ignored, EnvPrefix+name)
				return
			}
			*b = parsed
		}
	}

	if v, ok := get(EnvKeyFile); ok {
		c.Identity.KeyFile = v
	}
	if v, ok := get(EnvProxyAddr); ok {
		c.Onion.ProxyAddr = v
	}
	if v, ok := get(EnvLocalHost); ok {
		c.Onion.LocalHost = v
	}
	if v, ok := get(EnvDNSServers); ok {
		c.DNS.Servers = splitAndTrim(v, ",")
	}
	if v, ok := get(EnvMetricsAddr); ok {
		c.Metrics.ListenAddr = v
	}
	setDuration(EnvUpgradeTimeout, &c.Upgrade.Timeout)
	setDuration(EnvPingInterval, &c.Ping.Interval)
	setDuration(EnvPingTimeout, &c.Ping.Timeout)
	setBool(EnvKeepAlive, &c.Ping.KeepAlive)
	setBool(EnvNoDelay, &c.Transport.NoDelay)

	return ignored
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
