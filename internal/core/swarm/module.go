package swarm

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/liveness"
	"github.com/dep2p/go-onionping/internal/core/metrics"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Params Swarm 依赖参数
type Params struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Identity  pkgif.Identity
	Transport pkgif.Transport
	Lifecycle fx.Lifecycle

	// 可选依赖
	Executor pkgif.Executor        `optional:"true"`
	Ping     liveness.Config       `optional:"true"`
	Pong     *liveness.PongService `optional:"true"`
	Metrics  *metrics.Metrics      `optional:"true"`
}

// Result Swarm 模块输出
type Result struct {
	fx.Out

	Swarm *Swarm
}

// OptionsFromConfig 从统一配置生成选项
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithPing(liveness.ConfigFrom(cfg.Ping)),
		WithInboundRate(cfg.Swarm.InboundRate, cfg.Swarm.InboundBurst),
		WithEventBuffer(cfg.Swarm.EventBuffer),
	}
}

// ProvideSwarm 创建 Swarm，事件循环随应用启动，应用停止时调用 Stop
func ProvideSwarm(p Params) (Result, error) {
	opts := OptionsFromConfig(p.Config)
	if p.Ping.Interval > 0 {
		opts = append(opts, WithPing(p.Ping))
	}
	if p.Executor != nil {
		opts = append(opts, WithExecutor(p.Executor))
	}
	opts = append(opts, WithPongService(p.Pong), WithMetrics(p.Metrics))

	s, err := New(p.Transport, p.Identity.PeerID(), opts...)
	if err != nil {
		return Result{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start()
		},
		OnStop: func(context.Context) error {
			return s.Stop()
		},
	})
	return Result{Swarm: s}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("swarm",
		fx.Provide(ProvideSwarm),
	)
}
