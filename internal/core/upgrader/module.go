package upgrader

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/muxer"
	"github.com/dep2p/go-onionping/internal/core/muxer/yamux"
	"github.com/dep2p/go-onionping/internal/core/security/noise"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Params Upgrader 依赖参数
type Params struct {
	fx.In

	Identity pkgif.Identity
	Config   *config.Config `optional:"true"`
}

// Result Upgrader 输出
type Result struct {
	fx.Out

	Upgrader pkgif.Upgrader
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(ProvideUpgrader),
	)
}

// ProvideUpgrader 提供 Upgrader（依赖注入）
func ProvideUpgrader(p Params) (Result, error) {
	cfg := config.DefaultUpgradeConfig()
	if p.Config != nil {
		cfg = p.Config.Upgrade
	}
	u, err := NewFromConfig(p.Identity, cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Upgrader: u}, nil
}

// NewFromConfig 使用 Noise 和配置中的多路复用器列表创建 Upgrader
func NewFromConfig(id pkgif.Identity, cfg config.UpgradeConfig) (*Upgrader, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	sec, err := noise.New(id)
	if err != nil {
		return nil, err
	}
	muxers, err := NewMuxers(cfg.Muxers)
	if err != nil {
		return nil, err
	}
	return New(id, Config{
		SecurityTransports: []pkgif.SecureTransport{sec},
		StreamMuxers:       muxers,
	})
}

// NewMuxers 按协议 ID 顺序创建多路复用器
func NewMuxers(ids []string) ([]pkgif.StreamMuxer, error) {
	if len(ids) == 0 {
		return nil, ErrNoStreamMuxer
	}
	out := make([]pkgif.StreamMuxer, 0, len(ids))
	for _, id := range ids {
		switch id {
		case muxer.ID:
			out = append(out, muxer.NewTransport())
		case yamux.ID:
			out = append(out, yamux.NewTransport(nil))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMuxer, id)
		}
	}
	return out, nil
}
