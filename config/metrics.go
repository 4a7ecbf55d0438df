package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否采集 Prometheus 指标
	Enable bool `json:"enable"`

	// ListenAddr /metrics HTTP 监听地址，为空时不暴露
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enable: true}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	return nil
}
