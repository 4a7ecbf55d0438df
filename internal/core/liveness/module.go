package liveness

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
)

// Params 探测模块输入
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Result 探测模块输出
type Result struct {
	fx.Out

	Config Config
	Pong   *PongService
}

// ProvideLiveness 提供探测参数和应答服务
func ProvideLiveness(p Params) Result {
	cfg := DefaultConfig()
	if p.Config != nil {
		cfg = ConfigFrom(p.Config.Ping)
	}
	return Result{Config: cfg, Pong: NewPongService()}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("liveness",
		fx.Provide(ProvideLiveness),
	)
}
