package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/pkg/types"
)

// dialerPingInterval 拨号端默认的探测间隔
const dialerPingInterval = time.Second

// buildConfig 构建运行配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（ONIONPING_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig(f *cliFlags) (*config.Config, error) {
	var cfg *config.Config
	if f.configFile != "" {
		var err error
		cfg, err = config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	} else {
		cfg = config.NewConfig()
	}

	if ignored := cfg.ApplyEnv(); len(ignored) > 0 {
		logger.Warn("忽略无法解析的环境变量", "vars", strings.Join(ignored, ","))
	}

	if f.isSet("identity") && f.identity != "" {
		cfg.Identity.KeyFile = f.identity
		cfg.Identity.AutoGenerate = true
	}
	if f.isSet("proxy") && f.proxy != "" {
		cfg.Onion.ProxyAddr = f.proxy
	}
	if f.isSet("workers") {
		cfg.Swarm.Workers = f.workers
	}
	if f.isSet("metrics") && f.metrics != "" {
		cfg.Metrics.Enable = true
		cfg.Metrics.ListenAddr = f.metrics
	}

	if cfg.Onion.Routes == nil {
		cfg.Onion.Routes = make(map[string]uint16)
	}
	if err := setRoute(cfg.Onion.Routes, f.addr, uint16(f.port), f.isSet("port")); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	// 两种模式都保持探测；拨号端未配置间隔时使用 1s
	cfg.Ping.KeepAlive = true
	if f.mode == modeDialer && cfg.Ping.Interval == config.DefaultPingConfig().Interval {
		cfg.Ping.Interval = config.Duration(dialerPingInterval)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

// setRoute 以规范地址为键写入路由
//
// 路由表中写法不同的同一地址合并到规范键下。显式给出端口，
// 或地址不在路由表里时，使用 port。
func setRoute(routes map[string]uint16, addr string, port uint16, override bool) error {
	m, err := types.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	key := types.AddrKey(m)

	cur, ok := routes[key]
	for k, p := range routes {
		if k == key {
			continue
		}
		if km, err := types.NewMultiaddr(k); err == nil && types.AddrKey(km) == key {
			delete(routes, k)
			cur, ok = p, true
		}
	}
	if override || !ok {
		cur = port
	}
	routes[key] = cur
	return nil
}

// formatEvent 格式化一行事件输出
func formatEvent(ev types.Event) string {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%s %s", ts.Format("15:04:05.000"), ev)
}
