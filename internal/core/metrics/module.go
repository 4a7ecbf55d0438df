package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
)

// Params 指标模块输入
type Params struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result 指标模块输出
//
// 未启用时 Metrics 为 nil。
type Result struct {
	fx.Out

	Registry *prometheus.Registry
	Metrics  *Metrics
}

// ProvideMetrics 创建 Registry 与指标，配置了监听地址时启动 HTTP 服务
func ProvideMetrics(p Params) Result {
	cfg := config.DefaultMetricsConfig()
	if p.Config != nil {
		cfg = p.Config.Metrics
	}

	reg := prometheus.NewRegistry()
	if !cfg.Enable {
		return Result{Registry: reg}
	}
	m := New(reg)

	if cfg.ListenAddr != "" {
		srv := NewServer(cfg.ListenAddr, reg)
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error { return srv.Start() },
			OnStop:  srv.Stop,
		})
	}
	return Result{Registry: reg, Metrics: m}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideMetrics),
	)
}
