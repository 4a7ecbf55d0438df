package config

import (
	"fmt"
	"time"
)

// TransportConfig 基础传输配置
type TransportConfig struct {
	// NoDelay 禁用 Nagle 算法，每个写入立即发送
	NoDelay bool `json:"no_delay"`

	// KeepAlivePeriod TCP KeepAlive 周期，0 表示系统默认
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// DialTimeout 单次 TCP 拨号超时（整体超时见 Upgrade.Timeout）
	DialTimeout Duration `json:"dial_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		NoDelay:         true,
		KeepAlivePeriod: Duration(15 * time.Second),
		DialTimeout:     Duration(10 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return fmt.Errorf("transport.dial_timeout: %w", ErrInvalidTimeout)
	}
	return nil
}
