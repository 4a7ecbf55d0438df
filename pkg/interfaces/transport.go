package interfaces

import (
	"context"
	"net"
	"time"

	"github.com/dep2p/go-onionping/pkg/types"
)

// Transport 组合后的完整传输
//
// 路由 → 拨号/监听 → 名称解析 → 认证 → 多路复用，整体受一个超时约束。
type Transport interface {
	// Route 同步检查地址是否可路由（不打开任何 socket）
	Route(addr types.Multiaddr) error

	// Dial 拨号并完成全部升级
	Dial(ctx context.Context, addr types.Multiaddr) (UpgradedConn, error)

	// Listen 在地址上监听，Accept 返回尚未升级的原始连接
	Listen(addr types.Multiaddr) (Listener, error)

	// UpgradeInbound 升级一个入站原始连接（同样受超时约束）
	UpgradeInbound(ctx context.Context, conn net.Conn) (UpgradedConn, error)

	// Timeout 返回整个建连流程的时限
	Timeout() time.Duration
}

// Listener 原始连接监听器
type Listener interface {
	// Accept 接受下一个原始连接
	Accept() (net.Conn, error)

	// Multiaddr 返回监听的（调用方请求的）地址
	Multiaddr() types.Multiaddr

	// LocalAddr 返回实际绑定的本地地址
	LocalAddr() net.Addr

	// Close 关闭监听器
	Close() error
}
