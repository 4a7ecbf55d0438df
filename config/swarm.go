package config

import "errors"

// SwarmConfig 连接驱动配置
type SwarmConfig struct {
	// Workers 执行器并发上限，0 表示每个任务一个 goroutine
	Workers int `json:"workers"`

	// InboundRate 每秒允许开始升级的入站连接数，0 表示不限
	InboundRate float64 `json:"inbound_rate"`

	// InboundBurst 入站突发上限
	InboundBurst int `json:"inbound_burst"`

	// EventBuffer 事件队列初始容量
	EventBuffer int `json:"event_buffer"`
}

// DefaultSwarmConfig 返回默认驱动配置
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		InboundRate:  50,
		InboundBurst: 16,
		EventBuffer:  64,
	}
}

// Validate 验证驱动配置
func (c SwarmConfig) Validate() error {
	if c.Workers < 0 {
		return errors.New("swarm.workers must not be negative")
	}
	if c.InboundRate < 0 || c.InboundBurst < 0 {
		return errors.New("swarm.inbound_rate/inbound_burst must not be negative")
	}
	return nil
}
