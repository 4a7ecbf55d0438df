package config

import (
	"fmt"
	"net"
	"time"
)

// DNSConfig 名称解析配置
type DNSConfig struct {
	// Servers DNS 服务器（host:port），为空时使用系统解析器
	Servers []string `json:"servers,omitempty"`

	// Timeout 单次查询超时
	Timeout Duration `json:"timeout"`
}

// DefaultDNSConfig 返回默认 DNS 配置
func DefaultDNSConfig() DNSConfig {
	return DNSConfig{
		Timeout: Duration(5 * time.Second),
	}
}

// Validate 验证 DNS 配置
func (c DNSConfig) Validate() error {
	for _, s := range c.Servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDNSServer, s)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("dns.timeout: %w", ErrInvalidTimeout)
	}
	return nil
}
