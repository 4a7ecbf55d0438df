// Package yamux 提供基于 hashicorp/yamux 的备选多路复用实现
//
// 协议标识 /yamux/hashicorp/1.0.0。与 go-yamux 线格式兼容，
// 但不支持半关闭和 RST，CloseWrite / Reset 退化为 Close。
package yamux

import (
	"io"
	"time"

	"github.com/hashicorp/yamux"
)

// ID hashicorp/yamux 协议标识
const ID = "/yamux/hashicorp/1.0.0"

// DefaultYamuxConfig 返回默认的 yamux 配置
//
// 心跳关闭：存活检测由 ping 行为负责。
func DefaultYamuxConfig() *yamux.Config {
	return &yamux.Config{
		AcceptBacklog:          256,
		EnableKeepAlive:        false,
		KeepAliveInterval:      30 * time.Second,
		ConnectionWriteTimeout: 10 * time.Second,
		MaxStreamWindowSize:    256 * 1024,
		StreamOpenTimeout:      75 * time.Second,
		StreamCloseTimeout:     5 * time.Minute,
		LogOutput:              io.Discard,
	}
}
