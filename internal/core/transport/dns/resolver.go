package dns

import (
	"context"
	"fmt"
	"net"
	"time"

	mdns "github.com/miekg/dns"
)

// Resolver 主机名解析器
//
// *net.Resolver 直接满足该接口。
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// NewResolver 按配置选择解析器：未配置服务器时使用系统解析器
func NewResolver(servers []string, timeout time.Duration) Resolver {
	if len(servers) == 0 {
		return net.DefaultResolver
	}
	return NewServerResolver(servers, timeout)
}

// ServerResolver 向指定 DNS 服务器查询 A/AAAA 记录
type ServerResolver struct {
	servers []string
	client  *mdns.Client
}

// NewServerResolver 创建解析器
func NewServerResolver(servers []string, timeout time.Duration) *ServerResolver {
	return &ServerResolver{
		servers: append([]string(nil), servers...),
		client:  &mdns.Client{Net: "udp", Timeout: timeout},
	}
}

// LookupIPAddr 依次询问每个服务器，返回第一个非空结果
func (r *ServerResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IPAddr{{IP: ip}}, nil
	}
	name := mdns.Fqdn(host)

	var lastErr error
	for _, server := range r.servers {
		var out []net.IPAddr
		for _, qtype := range []uint16{mdns.TypeA, mdns.TypeAAAA} {
			msg := new(mdns.Msg)
			msg.SetQuestion(name, qtype)
			msg.RecursionDesired = true

			in, _, err := r.client.ExchangeContext(ctx, msg, server)
			if err != nil {
				lastErr = err
				continue
			}
			if in.Rcode != mdns.RcodeSuccess {
				lastErr = fmt.Errorf("%s: %s", server, mdns.RcodeToString[in.Rcode])
				continue
			}
			for _, rr := range in.Answer {
				switch v := rr.(type) {
				case *mdns.A:
					out = append(out, net.IPAddr{IP: v.A})
				case *mdns.AAAA:
					out = append(out, net.IPAddr{IP: v.AAAA})
				}
			}
		}
		if len(out) > 0 {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = ErrNoAddresses
	}
	return nil, lastErr
}
