package testutil

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	socks5 "github.com/armon/go-socks5"
)

// ErrUnknownOnion 代理没有该 onion 目标的转发
var ErrUnknownOnion = errors.New("unknown onion target")

// SOCKSProxy 模拟本地 Tor 客户端
//
// 收到 "<id>.onion:<vport>" 的 CONNECT 请求时，按 Forward 注册的表
// 转发到本地端口；未注册的目标返回 host unreachable。
type SOCKSProxy struct {
	ln     net.Listener
	server *socks5.Server

	mu       sync.Mutex
	forwards map[string]int

	connects atomic.Int64
}

// StartSOCKSProxy 在 127.0.0.1 随机端口启动代理
func StartSOCKSProxy() (*SOCKSProxy, error) {
	p := &SOCKSProxy{forwards: make(map[string]int)}
	server, err := socks5.New(&socks5.Config{
		Resolver: onionResolver{p},
		Rewriter: onionRewriter{p},
		Logger:   stdlog.New(io.Discard, "", 0),
		Dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			p.connects.Add(1)
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	})
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	p.ln = ln
	p.server = server
	go func() { _ = server.Serve(ln) }()
	return p, nil
}

// Forward 注册 onion 目标到本地端口的转发
//
// target 形如 "xyz.onion:7"。
func (p *SOCKSProxy) Forward(target string, localPort int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forwards[strings.ToLower(target)] = localPort
}

// Addr 返回代理地址
func (p *SOCKSProxy) Addr() string {
	return p.ln.Addr().String()
}

// Connects 返回代理发起的出站连接数
func (p *SOCKSProxy) Connects() int64 {
	return p.connects.Load()
}

// Close 关闭代理
func (p *SOCKSProxy) Close() error {
	return p.ln.Close()
}

func (p *SOCKSProxy) lookup(target string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	port, ok := p.forwards[strings.ToLower(target)]
	return port, ok
}

func (p *SOCKSProxy) knowsHost(host string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix := strings.ToLower(host) + ":"
	for k := range p.forwards {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// onionResolver 把已注册的 onion 主机解析到回环地址
type onionResolver struct{ p *SOCKSProxy }

func (r onionResolver) Resolve(ctx context.Context, name string) (context.Context, net.IP, error) {
	if !r.p.knowsHost(name) {
		return ctx, nil, ErrUnknownOnion
	}
	return ctx, net.IPv4(127, 0, 0, 1), nil
}

// onionRewriter 把虚拟端口改写为本地转发端口
type onionRewriter struct{ p *SOCKSProxy }

func (r onionRewriter) Rewrite(ctx context.Context, req *socks5.Request) (context.Context, *socks5.AddrSpec) {
	dest := req.DestAddr
	target := net.JoinHostPort(dest.FQDN, strconv.Itoa(dest.Port))
	if port, ok := r.p.lookup(target); ok {
		return ctx, &socks5.AddrSpec{IP: net.IPv4(127, 0, 0, 1), Port: port}
	}
	// 虚拟端口未注册：改写到一个必然拒绝的端口
	return ctx, &socks5.AddrSpec{IP: net.IPv4(127, 0, 0, 1), Port: 1}
}
