package config

import (
	"fmt"
	"time"
)

// 支持的多路复用协议
const (
	MuxerYamux          = "/yamux/1.0.0"
	MuxerHashicorpYamux = "/yamux/hashicorp/1.0.0"
)

// UpgradeConfig 升级流程配置
type UpgradeConfig struct {
	// Timeout 从拨号/接受开始到多路复用完成的总时限
	Timeout Duration `json:"timeout"`

	// Muxers 多路复用协议，按优先级排序（先匹配者胜出）
	Muxers []string `json:"muxers"`
}

// DefaultUpgradeConfig 返回默认升级配置
func DefaultUpgradeConfig() UpgradeConfig {
	return UpgradeConfig{
		Timeout: Duration(20 * time.Second),
		Muxers:  []string{MuxerYamux, MuxerHashicorpYamux},
	}
}

// Validate 验证升级配置
func (c UpgradeConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("upgrade.timeout: %w", ErrInvalidTimeout)
	}
	if len(c.Muxers) == 0 {
		return ErrNoMuxers
	}
	for _, m := range c.Muxers {
		if m != MuxerYamux && m != MuxerHashicorpYamux {
			return fmt.Errorf("%w: %q", ErrUnknownMuxer, m)
		}
	}
	return nil
}
