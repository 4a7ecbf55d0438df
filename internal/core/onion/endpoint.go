package onion

import (
	"net"
	"strconv"

	"github.com/dep2p/go-onionping/pkg/types"
)

// Endpoint 基础拨号器/监听器可直接使用的端点
type Endpoint struct {
	// Addr 调用方给出的原始地址
	Addr types.Multiaddr

	// Host/Port 本地可直接连接的主机和端口；非 onion 地址为空，由下一层解析
	Host string
	Port uint16

	// Proxied 目标必须经由本地 SOCKS5 代理到达
	Proxied bool

	// Target 代理请求的最终目标，例如 "xyz.onion:7"
	Target string
}

// Resolved 是否已经有具体的 host:port
func (e Endpoint) Resolved() bool {
	return e.Host != ""
}

// HostPort 返回 host:port
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) String() string {
	switch {
	case e.Proxied:
		return e.HostPort() + " -> " + e.Target
	case e.Resolved():
		return e.HostPort()
	default:
		return types.AddrKey(e.Addr)
	}
}
