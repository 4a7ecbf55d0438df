package config

import "errors"

// 配置校验错误
var (
	// ErrInvalidKeyType 不支持的密钥类型
	ErrInvalidKeyType = errors.New("invalid key type")

	// ErrInvalidProxyAddr 代理地址无效
	ErrInvalidProxyAddr = errors.New("invalid proxy address")

	// ErrInvalidRoute 路由表条目无效
	ErrInvalidRoute = errors.New("invalid onion route")

	// ErrInvalidTimeout 超时必须为正
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidInterval 间隔必须为正
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrNoMuxers 未配置任何多路复用协议
	ErrNoMuxers = errors.New("no stream muxers configured")

	// ErrUnknownMuxer 未知的多路复用协议
	ErrUnknownMuxer = errors.New("unknown stream muxer")

	// ErrInvalidDNSServer DNS 服务器地址无效
	ErrInvalidDNSServer = errors.New("invalid dns server")
)
