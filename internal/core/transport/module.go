package transport

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/onion"
	"github.com/dep2p/go-onionping/internal/core/transport/dns"
	"github.com/dep2p/go-onionping/internal/core/transport/tcp"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Params 传输模块输入
type Params struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Upgrader  pkgif.Upgrader
	Lifecycle fx.Lifecycle
}

// Result 传输模块输出
type Result struct {
	fx.Out

	Transport pkgif.Transport
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideTransport),
	)
}

// ProvideTransport 按配置组装传输
func ProvideTransport(p Params) (Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	t, base, err := NewFromConfig(cfg, p.Upgrader)
	if err != nil {
		return Result{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return base.Close()
		},
	})
	return Result{Transport: t}, nil
}

// NewFromConfig 组装 Router → DNS → TCP → Upgrader
//
// 返回的 tcp.Transport 由调用方在退出时关闭。
func NewFromConfig(cfg *config.Config, up pkgif.Upgrader) (*Transport, *tcp.Transport, error) {
	table, err := onion.NewRouteTable(cfg.Onion.Routes)
	if err != nil {
		return nil, nil, err
	}
	router := onion.NewRouter(table, cfg.Onion.LocalHost)

	base := tcp.New(tcp.Config{
		NoDelay:         cfg.Transport.NoDelay,
		KeepAlivePeriod: cfg.Transport.KeepAlivePeriod.Duration(),
		DialTimeout:     cfg.Transport.DialTimeout.Duration(),
		ProxyAddr:       cfg.Onion.ProxyAddr,
	})
	resolver := dns.NewResolver(cfg.DNS.Servers, cfg.DNS.Timeout.Duration())

	t, err := New(router, dns.New(base, resolver), up, cfg.Upgrade.Timeout.Duration())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("传输已组装",
		"routes", table.Len(),
		"proxy", cfg.Onion.ProxyAddr,
		"timeout", t.Timeout())
	return t, base, nil
}
