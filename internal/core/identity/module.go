package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Params 身份模块输入
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Result 身份模块输出
type Result struct {
	fx.Out

	Identity pkgif.Identity
}

// ProvideIdentity 按配置创建或加载身份
//
// 优先级：KeyFile > 随机生成。
func ProvideIdentity(p Params) (Result, error) {
	cfg := config.DefaultIdentityConfig()
	if p.Config != nil {
		cfg = p.Config.Identity
	}

	var (
		id  *Identity
		err error
	)
	if cfg.KeyFile != "" {
		id, err = LoadOrCreate(cfg.KeyFile, cfg.AutoGenerate)
	} else {
		id, err = Generate()
	}
	if err != nil {
		return Result{}, err
	}
	logger.Debug("身份就绪", "peerID", id.PeerID().String())
	return Result{Identity: id}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}
