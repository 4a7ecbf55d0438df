package executor

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Params 执行器模块输入
type Params struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result 执行器模块输出
type Result struct {
	fx.Out

	Executor pkgif.Executor
}

// ProvideExecutor 按 Swarm.Workers 选择执行器
//
// Workers <= 0 使用 GoExecutor。
func ProvideExecutor(p Params) (Result, error) {
	workers := 0
	if p.Config != nil {
		workers = p.Config.Swarm.Workers
	}
	if workers <= 0 {
		return Result{Executor: GoExecutor{}}, nil
	}

	pool, err := NewPoolExecutor(workers)
	if err != nil {
		return Result{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pool.Close()
		},
	})
	return Result{Executor: pool}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("executor",
		fx.Provide(ProvideExecutor),
	)
}
