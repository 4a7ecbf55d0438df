package tcp

import (
	"fmt"
	"net"
	"sync/atomic"

	tec "github.com/jbenet/go-temp-err-catcher"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-onionping/internal/core/onion"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// Listener TCP 监听器
type Listener struct {
	listener *net.TCPListener
	addr     types.Multiaddr
	tune     func(net.Conn)
	closed   atomic.Bool
}

var _ pkgif.Listener = (*Listener)(nil)

func newListener(l *net.TCPListener, ep onion.Endpoint, tune func(net.Conn)) (*Listener, error) {
	addr := ep.Addr
	if !ep.Proxied || addr == nil {
		// 端口可能是 0，使用实际绑定的地址
		actual, err := manet.FromNetAddr(l.Addr())
		if err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("获取监听地址失败: %w", err)
		}
		addr = actual
	}
	return &Listener{listener: l, addr: addr, tune: tune}, nil
}

// Accept 接受连接
//
// 临时错误（如 EMFILE）按退避重试，不返回给调用方。
func (l *Listener) Accept() (net.Conn, error) {
	var catcher tec.TempErrCatcher
	for {
		c, err := l.listener.Accept()
		if err != nil {
			if catcher.IsTemporary(err) {
				logger.Debug("accept 临时错误，重试", "error", err)
				continue
			}
			return nil, err
		}
		l.tune(c)
		return c, nil
	}
}

// Multiaddr 返回监听地址（onion 监听返回 onion 地址）
func (l *Listener) Multiaddr() types.Multiaddr {
	return l.addr
}

// LocalAddr 返回实际绑定的地址
func (l *Listener) LocalAddr() net.Addr {
	return l.listener.Addr()
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.listener.Close()
	}
	return nil
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
