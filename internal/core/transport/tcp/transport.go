package tcp

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"

	"github.com/dep2p/go-onionping/internal/core/onion"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// Config TCP 传输配置
type Config struct {
	// NoDelay 禁用 Nagle 算法
	NoDelay bool

	// KeepAlivePeriod TCP KeepAlive 周期，0 表示系统默认
	KeepAlivePeriod time.Duration

	// DialTimeout 单次 TCP 连接超时
	DialTimeout time.Duration

	// ProxyAddr 本地 SOCKS5 代理地址
	ProxyAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		NoDelay:         true,
		KeepAlivePeriod: 15 * time.Second,
		DialTimeout:     10 * time.Second,
		ProxyAddr:       "127.0.0.1:9050",
	}
}

// Transport 基础 TCP 传输
type Transport struct {
	cfg    Config
	closed atomic.Bool
}

// New 创建 TCP 传输
func New(cfg Config) *Transport {
	return &Transport{cfg: cfg}
}

// Config 返回配置
func (t *Transport) Config() Config {
	return t.cfg
}

// Dial 建立出站连接
func (t *Transport) Dial(ctx context.Context, ep onion.Endpoint) (net.Conn, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !ep.Resolved() {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedEndpoint, ep)
	}
	if ep.Proxied {
		return t.dialProxy(ctx, ep)
	}

	conn, err := t.netDialer().DialContext(ctx, "tcp", ep.HostPort())
	if err != nil {
		return nil, types.IOError(err)
	}
	t.tune(conn)
	return conn, nil
}

// dialProxy 通过 SOCKS5 代理连接 onion 目标
//
// 代理 TCP 连接本身失败属于 I/O 错误；连上代理之后的失败属于代理握手失败。
func (t *Transport) dialProxy(ctx context.Context, ep onion.Endpoint) (net.Conn, error) {
	fwd := &trackingDialer{dialer: t.netDialer(), tune: t.tune}
	d, err := proxy.SOCKS5("tcp", t.cfg.ProxyAddr, nil, fwd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProxyHandshakeFailed, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%w: socks dialer has no context support", types.ErrProxyHandshakeFailed)
	}

	logger.Debug("通过代理拨号", "proxy", t.cfg.ProxyAddr, "target", ep.Target)
	conn, err := cd.DialContext(ctx, "tcp", ep.Target)
	if err != nil {
		if !fwd.connected.Load() {
			return nil, types.IOError(err)
		}
		return nil, fmt.Errorf("%w: %s: %v", types.ErrProxyHandshakeFailed, ep.Target, err)
	}
	return conn, nil
}

// Listen 监听端点
//
// Proxied 端点绑定本地转发端口，Listener.Multiaddr 仍返回 onion 地址。
func (t *Transport) Listen(ep onion.Endpoint) (pkgif.Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !ep.Resolved() {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedEndpoint, ep)
	}

	var lc net.ListenConfig
	if t.cfg.KeepAlivePeriod > 0 {
		lc.KeepAlive = t.cfg.KeepAlivePeriod
	}
	l, err := lc.Listen(context.Background(), "tcp", ep.HostPort())
	if err != nil {
		return nil, types.IOError(err)
	}
	ln, err := newListener(l.(*net.TCPListener), ep, t.tune)
	if err != nil {
		return nil, err
	}
	logger.Debug("开始监听", "addr", ln.Multiaddr(), "local", ln.LocalAddr())
	return ln, nil
}

// Close 关闭传输，之后的 Dial/Listen 失败
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}

func (t *Transport) netDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   t.cfg.DialTimeout,
		KeepAlive: t.cfg.KeepAlivePeriod,
	}
}

// tune 设置 TCP 选项
func (t *Transport) tune(c net.Conn) {
	tc, ok := c.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(t.cfg.NoDelay)
}

// trackingDialer SOCKS5 的下层拨号器，记录是否已连上代理
type trackingDialer struct {
	dialer    *net.Dialer
	tune      func(net.Conn)
	connected atomic.Bool
}

func (d *trackingDialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

func (d *trackingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	c, err := d.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	d.tune(c)
	d.connected.Store(true)
	return c, nil
}
