// Package config 提供 onionping 的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义。
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
//
// 使用示例：
//
//	cfg, err := config.Load("onionping.json")
//	if err != nil { ... }
//	cfg.ApplyEnv()
//	if err := cfg.Validate(); err != nil { ... }
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config onionping 的完整配置
type Config struct {
	Identity  IdentityConfig  `json:"identity"`
	Transport TransportConfig `json:"transport"`
	Onion     OnionConfig     `json:"onion"`
	DNS       DNSConfig       `json:"dns"`
	Upgrade   UpgradeConfig   `json:"upgrade"`
	Ping      PingConfig      `json:"ping"`
	Swarm     SwarmConfig     `json:"swarm"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Transport: DefaultTransportConfig(),
		Onion:     DefaultOnionConfig(),
		DNS:       DefaultDNSConfig(),
		Upgrade:   DefaultUpgradeConfig(),
		Ping:      DefaultPingConfig(),
		Swarm:     DefaultSwarmConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证所有子配置
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		c.Identity, c.Transport, c.Onion, c.DNS,
		c.Upgrade, c.Ping, c.Swarm, c.Metrics,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FromJSON 在默认配置之上解析 JSON
//
// JSON 中未出现的字段保留默认值；routes 出现时整体替换默认路由表。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	cfg.Onion.Routes = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Onion.Routes == nil {
		cfg.Onion.Routes = DefaultOnionConfig().Routes
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Load 从 JSON 文件加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // 用户指定的配置文件路径
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return FromJSON(data)
}
