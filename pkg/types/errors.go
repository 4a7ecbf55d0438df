package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              建连错误分类
// ============================================================================

// 单个连接建立过程中可能出现的错误。
// 调用方使用 errors.Is 判断类别，使用 errors.As 取出 AuthError / ResolutionError 细节。
var (
	// ErrUnroutableAddress onion 地址在路由表中没有条目
	ErrUnroutableAddress = errors.New("unroutable address")

	// ErrProxyHandshakeFailed 与本地代理的 SOCKS5 握手失败
	ErrProxyHandshakeFailed = errors.New("proxy handshake failed")

	// ErrResolutionFailed 主机名解析失败
	ErrResolutionFailed = errors.New("resolution failed")

	// ErrAuthenticationFailed 安全握手失败
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNoCommonMultiplexer 没有双方都支持的多路复用协议
	ErrNoCommonMultiplexer = errors.New("no common multiplexer")

	// ErrUpgradeTimeout 整个建连流程超时
	ErrUpgradeTimeout = errors.New("upgrade timeout")

	// ErrIO 底层 I/O 错误（拒绝连接、不可达、地址占用）
	ErrIO = errors.New("i/o error")
)

// ID / 地址相关错误
var (
	// ErrEmptyPeerID 空节点 ID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrInvalidPeerID 无效的节点 ID
	ErrInvalidPeerID = errors.New("invalid peer ID")

	// ErrInvalidMultiaddr 无效的 multiaddr
	ErrInvalidMultiaddr = errors.New("invalid multiaddr")

	// ErrNotOnionAddress 不是 onion 地址
	ErrNotOnionAddress = errors.New("not an onion address")
)

// ============================================================================
//                              AuthError
// ============================================================================

// AuthReason 认证失败原因
type AuthReason int

const (
	// AuthProtocolMismatch 安全协议协商失败
	AuthProtocolMismatch AuthReason = iota
	// AuthVerificationFailed 握手或签名校验失败
	AuthVerificationFailed
)

// String 返回原因的字符串表示
func (r AuthReason) String() string {
	switch r {
	case AuthProtocolMismatch:
		return "protocol mismatch"
	case AuthVerificationFailed:
		return "verification failed"
	default:
		return "unknown"
	}
}

// AuthError 认证失败
//
// errors.Is(err, ErrAuthenticationFailed) 对所有 AuthError 成立。
type AuthError struct {
	Reason AuthReason
	Err    error
}

// NewAuthError 创建认证错误
func NewAuthError(reason AuthReason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authentication failed (%s)", e.Reason)
	}
	return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
}

// Unwrap 同时暴露分类哨兵和底层错误
func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAuthenticationFailed}
	}
	return []error{ErrAuthenticationFailed, e.Err}
}

// ============================================================================
//                              ResolutionError
// ============================================================================

// ResolutionError 主机名解析失败，携带主机名
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolution failed: %s", e.Host)
	}
	return fmt.Sprintf("resolution failed: %s: %v", e.Host, e.Err)
}

// Unwrap 同时暴露分类哨兵和底层错误
func (e *ResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResolutionFailed}
	}
	return []error{ErrResolutionFailed, e.Err}
}

// ============================================================================
//                              UpgradeError
// ============================================================================

// UpgradeError 标记失败发生在升级流程的哪个阶段
type UpgradeError struct {
	Stage string
	Err   error
}

func (e *UpgradeError) Error() string {
	return fmt.Sprintf("upgrade %s: %v", e.Stage, e.Err)
}

func (e *UpgradeError) Unwrap() error {
	return e.Err
}

// ============================================================================
//                              辅助函数
// ============================================================================

// IOError 将底层错误包装为 ErrIO 类别
//
// 已经归类的错误原样返回。
func IOError(err error) error {
	if err == nil {
		return nil
	}
	if ErrorKind(err) != "other" {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// ErrorKind 返回错误类别（用于日志和指标标签）
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnroutableAddress):
		return "unroutable"
	case errors.Is(err, ErrUpgradeTimeout):
		return "timeout"
	case errors.Is(err, ErrProxyHandshakeFailed):
		return "proxy"
	case errors.Is(err, ErrResolutionFailed):
		return "resolution"
	case errors.Is(err, ErrAuthenticationFailed):
		return "auth"
	case errors.Is(err, ErrNoCommonMultiplexer):
		return "muxer"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "other"
	}
}
