package dns

import (
	"context"
	"fmt"
	"net"
	"strconv"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-onionping/internal/core/onion"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/transport/dns")

// Base 被包装的基础拨号器/监听器
type Base interface {
	Dial(ctx context.Context, ep onion.Endpoint) (net.Conn, error)
	Listen(ep onion.Endpoint) (pkgif.Listener, error)
}

// Transport 名称解析包装
type Transport struct {
	base     Base
	resolver Resolver
}

// New 创建名称解析包装
func New(base Base, resolver Resolver) *Transport {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Transport{base: base, resolver: resolver}
}

// Dial 解析后依次拨号，返回第一个成功的连接
func (t *Transport) Dial(ctx context.Context, ep onion.Endpoint) (net.Conn, error) {
	if ep.Resolved() {
		return t.base.Dial(ctx, ep)
	}
	candidates, err := t.Resolve(ctx, ep)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, c := range candidates {
		conn, err := t.base.Dial(ctx, c)
		if err == nil {
			return conn, nil
		}
		logger.Debug("候选地址拨号失败", "endpoint", c.HostPort(), "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Listen 解析后在第一个可绑定的端点上监听
func (t *Transport) Listen(ep onion.Endpoint) (pkgif.Listener, error) {
	if ep.Resolved() {
		return t.base.Listen(ep)
	}
	candidates, err := t.Resolve(context.Background(), ep)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, c := range candidates {
		l, err := t.base.Listen(c)
		if err == nil {
			return l, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Resolve 把未解析端点展开为具体端点
func (t *Transport) Resolve(ctx context.Context, ep onion.Endpoint) ([]onion.Endpoint, error) {
	if ep.Resolved() {
		return []onion.Endpoint{ep}, nil
	}
	bare, _, err := types.SplitPeerID(ep.Addr)
	if err != nil {
		return nil, err
	}
	if bare == nil {
		return nil, types.ErrInvalidMultiaddr
	}

	if !types.IsDNS(bare) {
		network, hostport, err := manet.DialArgs(bare)
		if err != nil || (network != "tcp" && network != "tcp4" && network != "tcp6") {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, bare)
		}
		host, port, err := splitHostPort(hostport)
		if err != nil {
			return nil, err
		}
		return []onion.Endpoint{{Addr: ep.Addr, Host: host, Port: port}}, nil
	}

	first, rest := ma.SplitFirst(bare)
	if rest == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, bare)
	}
	portStr, err := rest.ValueForProtocol(ma.P_TCP)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, bare)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, bare)
	}

	host := first.Value()
	ips, err := t.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, &types.ResolutionError{Host: host, Err: err}
	}

	code := first.Protocol().Code
	out := make([]onion.Endpoint, 0, len(ips))
	for _, ip := range ips {
		is4 := ip.IP.To4() != nil
		if (code == ma.P_DNS4 && !is4) || (code == ma.P_DNS6 && is4) {
			continue
		}
		out = append(out, onion.Endpoint{Addr: ep.Addr, Host: ip.IP.String(), Port: uint16(port)})
	}
	if len(out) == 0 {
		return nil, &types.ResolutionError{Host: host, Err: ErrNoAddresses}
	}
	logger.Debug("解析完成", "host", host, "count", len(out))
	return out, nil
}

func splitHostPort(hostport string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, err
	}
	return host, uint16(port), nil
}
