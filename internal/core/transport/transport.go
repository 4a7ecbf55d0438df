package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dep2p/go-onionping/internal/core/onion"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/transport")

// DefaultTimeout 从拨号到多路复用完成的默认时限
const DefaultTimeout = 20 * time.Second

// Base 路由之后的拨号/监听层（名称解析包装的基础传输）
type Base interface {
	Dial(ctx context.Context, ep onion.Endpoint) (net.Conn, error)
	Listen(ep onion.Endpoint) (pkgif.Listener, error)
}

// Transport 组合后的完整传输
type Transport struct {
	router   *onion.Router
	base     Base
	upgrader pkgif.Upgrader
	timeout  time.Duration
}

var _ pkgif.Transport = (*Transport)(nil)

// New 创建组合传输，timeout <= 0 时使用 DefaultTimeout
func New(router *onion.Router, base Base, upgrader pkgif.Upgrader, timeout time.Duration) (*Transport, error) {
	switch {
	case router == nil:
		return nil, ErrNilRouter
	case base == nil:
		return nil, ErrNilBase
	case upgrader == nil:
		return nil, ErrNilUpgrader
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{router: router, base: base, upgrader: upgrader, timeout: timeout}, nil
}

// Timeout 返回整体超时
func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

// Route 同步检查地址是否可路由
func (t *Transport) Route(addr types.Multiaddr) error {
	_, err := t.router.Route(addr)
	return err
}

// Dial 拨号并完成全部升级
//
// 地址携带 /p2p/<id> 时握手校验远端身份。
func (t *Transport) Dial(ctx context.Context, addr types.Multiaddr) (pkgif.UpgradedConn, error) {
	ep, err := t.router.Route(addr)
	if err != nil {
		return nil, err
	}
	_, remotePeer, err := types.SplitPeerID(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	raw, err := t.base.Dial(ctx, ep)
	if err != nil {
		err = timeoutError(ctx, err)
		logger.Debug("拨号失败", "addr", addr, "kind", types.ErrorKind(err), "error", err)
		return nil, err
	}

	uc, err := t.upgrader.Upgrade(ctx, raw, types.DirOutbound, remotePeer)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		_ = uc.Close()
		return nil, timeoutError(ctx, ctx.Err())
	}

	logger.Debug("出站连接就绪", "addr", addr, "remotePeer", log.TruncateID(string(uc.RemotePeer()), 12))
	return &dialedConn{UpgradedConn: uc, addr: addr}, nil
}

// Listen 在地址上监听，Accept 返回尚未升级的原始连接
func (t *Transport) Listen(addr types.Multiaddr) (pkgif.Listener, error) {
	ep, err := t.router.Route(addr)
	if err != nil {
		return nil, err
	}
	return t.base.Listen(ep)
}

// UpgradeInbound 升级一个入站原始连接，同样受整体超时约束
func (t *Transport) UpgradeInbound(ctx context.Context, conn net.Conn) (pkgif.UpgradedConn, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	uc, err := t.upgrader.Upgrade(ctx, conn, types.DirInbound, "")
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		_ = uc.Close()
		return nil, timeoutError(ctx, ctx.Err())
	}
	return uc, nil
}

// timeoutError 截止时间到达时归类为 ErrUpgradeTimeout
func timeoutError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, types.ErrUpgradeTimeout) {
		return fmt.Errorf("%w: %v", types.ErrUpgradeTimeout, err)
	}
	return err
}

// dialedConn 出站连接，RemoteMultiaddr 返回调用方拨号的地址
type dialedConn struct {
	pkgif.UpgradedConn
	addr types.Multiaddr
}

func (c *dialedConn) RemoteMultiaddr() types.Multiaddr {
	return c.addr
}
