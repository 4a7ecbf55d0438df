package onionping

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-onionping/internal/core/executor"
	"github.com/dep2p/go-onionping/internal/core/identity"
	"github.com/dep2p/go-onionping/internal/core/liveness"
	"github.com/dep2p/go-onionping/internal/core/metrics"
	"github.com/dep2p/go-onionping/internal/core/swarm"
	"github.com/dep2p/go-onionping/internal/core/transport"
	"github.com/dep2p/go-onionping/internal/core/upgrader"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	Identity → Upgrader → Transport → Executor → Liveness → Metrics → Swarm
func buildFxApp(o *options, node *Node) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),

		identity.Module(),
		upgrader.Module(),
		transport.Module(),
		executor.Module(),
		liveness.Module(),
		metrics.Module(),
		swarm.Module(),

		fx.Populate(&node.identity, &node.swarm, &node.registry),

		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	}

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
