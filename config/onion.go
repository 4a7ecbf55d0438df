package config

import (
	"fmt"
	"net"

	"github.com/dep2p/go-onionping/pkg/types"
)

// DefaultOnionAddr 默认的 onion 服务地址（虚拟端口 7）
const DefaultOnionAddr = "/onion3/r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid:7"

// DefaultLocalPort 默认路由到的本地端口
const DefaultLocalPort uint16 = 7777

// OnionConfig onion 路由配置
type OnionConfig struct {
	// ProxyAddr 本地 Tor SOCKS5 代理地址
	ProxyAddr string `json:"proxy_addr"`

	// LocalHost 隐藏服务转发目标所在的本地主机
	LocalHost string `json:"local_host"`

	// Routes onion 地址 → 本地端口
	//
	// 启动时构建一次，运行期只读。
	Routes map[string]uint16 `json:"routes"`
}

// DefaultOnionConfig 返回默认 onion 配置
func DefaultOnionConfig() OnionConfig {
	return OnionConfig{
		ProxyAddr: "127.0.0.1:9050",
		LocalHost: "127.0.0.1",
		Routes: map[string]uint16{
			DefaultOnionAddr: DefaultLocalPort,
		},
	}
}

// Validate 验证 onion 配置
func (c OnionConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ProxyAddr); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddr, c.ProxyAddr)
	}
	if net.ParseIP(c.LocalHost) == nil && c.LocalHost != "localhost" {
		return fmt.Errorf("%w: local_host %q", ErrInvalidProxyAddr, c.LocalHost)
	}
	for addr, port := range c.Routes {
		m, err := types.NewMultiaddr(addr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}
		if !types.IsOnion(m) {
			return fmt.Errorf("%w: %s is not an onion address", ErrInvalidRoute, addr)
		}
		if port == 0 {
			return fmt.Errorf("%w: %s has port 0", ErrInvalidRoute, addr)
		}
	}
	return nil
}
