package onionping

import (
	"fmt"
	"time"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/pkg/types"
)

// Option 节点配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置（后续选项在其上修改）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidOption)
		}
		o.config = cfg
		return nil
	}
}

// WithKeyFile 从文件加载身份，文件不存在时生成并保存
func WithKeyFile(path string) Option {
	return func(o *options) error {
		o.config.Identity.KeyFile = path
		o.config.Identity.AutoGenerate = true
		return nil
	}
}

// WithProxy 设置 Tor SOCKS5 代理地址
func WithProxy(addr string) Option {
	return func(o *options) error {
		o.config.Onion.ProxyAddr = addr
		return nil
	}
}

// WithRoute 添加一条 onion 地址 → 本地端口的路由
func WithRoute(addr string, localPort uint16) Option {
	return func(o *options) error {
		if _, err := types.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("%w: route %q: %v", ErrInvalidOption, addr, err)
		}
		if o.config.Onion.Routes == nil {
			o.config.Onion.Routes = make(map[string]uint16)
		}
		o.config.Onion.Routes[addr] = localPort
		return nil
	}
}

// WithoutDefaultRoutes 清空默认路由表
func WithoutDefaultRoutes() Option {
	return func(o *options) error {
		o.config.Onion.Routes = map[string]uint16{}
		return nil
	}
}

// WithPing 设置探测参数
func WithPing(interval, timeout time.Duration, keepAlive bool) Option {
	return func(o *options) error {
		o.config.Ping = config.PingConfig{
			Interval:  config.Duration(interval),
			Timeout:   config.Duration(timeout),
			KeepAlive: keepAlive,
		}
		return nil
	}
}

// WithUpgradeTimeout 设置整体升级超时
func WithUpgradeTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.config.Upgrade.Timeout = config.Duration(d)
		return nil
	}
}

// WithWorkers 设置执行器并发上限，0 表示每个任务一个 goroutine
func WithWorkers(n int) Option {
	return func(o *options) error {
		o.config.Swarm.Workers = n
		return nil
	}
}

// WithMetricsAddr 在地址上暴露 /metrics
func WithMetricsAddr(addr string) Option {
	return func(o *options) error {
		o.config.Metrics.Enable = true
		o.config.Metrics.ListenAddr = addr
		return nil
	}
}
