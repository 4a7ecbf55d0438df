package config

import (
	"fmt"
	"time"
)

// PingConfig 存活探测配置
type PingConfig struct {
	// Interval 两次探测之间的间隔（首次探测也在一个间隔之后）
	Interval Duration `json:"interval"`

	// Timeout 单次探测等待回复的时限
	Timeout Duration `json:"timeout"`

	// KeepAlive 为 false 时完成一轮探测后行为变为惰性
	KeepAlive bool `json:"keep_alive"`
}

// DefaultPingConfig 返回默认探测配置
func DefaultPingConfig() PingConfig {
	return PingConfig{
		Interval:  Duration(15 * time.Second),
		Timeout:   Duration(20 * time.Second),
		KeepAlive: true,
	}
}

// Validate 验证探测配置
func (c PingConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("ping.interval: %w", ErrInvalidInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ping.timeout: %w", ErrInvalidTimeout)
	}
	return nil
}
