package upgrader

import "errors"

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("upgrader: identity is nil")

	// ErrNoSecurityTransport 没有安全传输
	ErrNoSecurityTransport = errors.New("upgrader: no security transport configured")

	// ErrNoStreamMuxer 没有流复用器
	ErrNoStreamMuxer = errors.New("upgrader: no stream muxer configured")

	// ErrUnknownMuxer 配置了未知的多路复用协议
	ErrUnknownMuxer = errors.New("upgrader: unknown stream muxer")
)

// 升级阶段名（UpgradeError.Stage）
const (
	StageSecurity = "security"
	StageMuxer    = "muxer"
)
