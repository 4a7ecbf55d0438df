package tcp

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-onionping/internal/core/onion"
	"github.com/dep2p/go-onionping/internal/util/testutil"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

const onionTarget = "r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid.onion:7"

func loopback(port int) onion.Endpoint {
	return onion.Endpoint{Host: "127.0.0.1", Port: uint16(port)}
}

// echoOnce 接受一个连接并回显
func echoOnce(t *testing.T, l pkgif.Listener) {
	t.Helper()
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = io.Copy(c, c)
	}()
}

func roundTrip(t *testing.T, c net.Conn) {
	t.Helper()
	_, err := c.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = io.ReadFull(c, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

// TestTransport_DialListen 直连拨号和监听
func TestTransport_DialListen(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(loopback(0))
	require.NoError(t, err)
	defer l.Close()
	echoOnce(t, l)

	port := l.LocalAddr().(*net.TCPAddr).Port
	assert.Contains(t, l.Multiaddr().String(), "/ip4/127.0.0.1/tcp/")

	c, err := tr.Dial(context.Background(), loopback(port))
	require.NoError(t, err)
	defer c.Close()
	roundTrip(t, c)
}

// TestTransport_Refused 拒绝连接归为 ErrIO
func TestTransport_Refused(t *testing.T) {
	port, err := testutil.FreePort()
	require.NoError(t, err)

	tr := New(DefaultConfig())
	_, err = tr.Dial(context.Background(), loopback(port))
	assert.ErrorIs(t, err, types.ErrIO)
}

// TestTransport_AddressInUse 地址占用归为 ErrIO
func TestTransport_AddressInUse(t *testing.T) {
	tr := New(DefaultConfig())
	l, err := tr.Listen(loopback(0))
	require.NoError(t, err)
	defer l.Close()

	port := l.LocalAddr().(*net.TCPAddr).Port
	_, err = tr.Listen(loopback(port))
	assert.ErrorIs(t, err, types.ErrIO)
}

// TestTransport_Unresolved 未解析的端点被拒绝
func TestTransport_Unresolved(t *testing.T) {
	tr := New(DefaultConfig())
	ep := onion.Endpoint{Addr: types.MustMultiaddr("/dns4/example.com/tcp/7")}

	_, err := tr.Dial(context.Background(), ep)
	assert.ErrorIs(t, err, ErrUnresolvedEndpoint)
	_, err = tr.Listen(ep)
	assert.ErrorIs(t, err, ErrUnresolvedEndpoint)
}

// TestTransport_Closed 关闭后拒绝新操作
func TestTransport_Closed(t *testing.T) {
	tr := New(DefaultConfig())
	require.NoError(t, tr.Close())
	_, err := tr.Dial(context.Background(), loopback(1))
	assert.ErrorIs(t, err, ErrTransportClosed)
}

// TestTransport_NoDelay 拨出的连接设置了 NoDelay 选项（无法读回，只验证类型）
func TestTransport_NoDelay(t *testing.T) {
	tr := New(DefaultConfig())
	l, err := tr.Listen(loopback(0))
	require.NoError(t, err)
	defer l.Close()
	echoOnce(t, l)

	c, err := tr.Dial(context.Background(), loopback(l.LocalAddr().(*net.TCPAddr).Port))
	require.NoError(t, err)
	defer c.Close()
	_, ok := c.(*net.TCPConn)
	assert.True(t, ok)
}

// TestTransport_Proxy 通过 SOCKS5 代理到达 onion 目标
func TestTransport_Proxy(t *testing.T) {
	proxy, err := testutil.StartSOCKSProxy()
	require.NoError(t, err)
	defer proxy.Close()

	cfg := DefaultConfig()
	cfg.ProxyAddr = proxy.Addr()
	tr := New(cfg)

	// 隐藏服务侧：监听本地转发端口
	l, err := tr.Listen(loopback(0))
	require.NoError(t, err)
	defer l.Close()
	echoOnce(t, l)
	proxy.Forward(onionTarget, l.LocalAddr().(*net.TCPAddr).Port)

	ep := onion.Endpoint{Host: "127.0.0.1", Port: 7777, Proxied: true, Target: onionTarget}
	c, err := tr.Dial(context.Background(), ep)
	require.NoError(t, err)
	defer c.Close()
	roundTrip(t, c)
	assert.Equal(t, int64(1), proxy.Connects())
}

// TestTransport_ProxyHandshakeFailed 代理拒绝目标时返回 ErrProxyHandshakeFailed
func TestTransport_ProxyHandshakeFailed(t *testing.T) {
	proxy, err := testutil.StartSOCKSProxy()
	require.NoError(t, err)
	defer proxy.Close()

	cfg := DefaultConfig()
	cfg.ProxyAddr = proxy.Addr()
	tr := New(cfg)

	ep := onion.Endpoint{Host: "127.0.0.1", Port: 7777, Proxied: true, Target: onionTarget}
	_, err = tr.Dial(context.Background(), ep)
	assert.ErrorIs(t, err, types.ErrProxyHandshakeFailed)
	assert.NotErrorIs(t, err, types.ErrIO)
}

// TestTransport_ProxyUnreachable 代理本身不可达属于 I/O 错误
func TestTransport_ProxyUnreachable(t *testing.T) {
	port, err := testutil.FreePort()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ProxyAddr = net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	tr := New(cfg)

	ep := onion.Endpoint{Host: "127.0.0.1", Port: 7777, Proxied: true, Target: onionTarget}
	_, err = tr.Dial(context.Background(), ep)
	assert.ErrorIs(t, err, types.ErrIO)
	assert.NotErrorIs(t, err, types.ErrProxyHandshakeFailed)
}

// TestListener_ProxiedMultiaddr onion 监听保留 onion 地址
func TestListener_ProxiedMultiaddr(t *testing.T) {
	addr := types.MustMultiaddr("/onion3/r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid:7")
	tr := New(DefaultConfig())
	l, err := tr.Listen(onion.Endpoint{Addr: addr, Host: "127.0.0.1", Port: 0, Proxied: true, Target: onionTarget})
	require.NoError(t, err)
	defer l.Close()

	assert.True(t, l.Multiaddr().Equal(addr))
	assert.NoError(t, l.Close())
	assert.True(t, l.(*Listener).IsClosed())
	assert.NoError(t, l.Close())

	_, err = l.Accept()
	assert.Error(t, err)
}
