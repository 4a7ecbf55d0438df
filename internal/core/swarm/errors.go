package swarm

import "errors"

var (
	// ErrNilTransport 传输为空
	ErrNilTransport = errors.New("nil transport")

	// ErrEmptyPeer 本地节点 ID 为空
	ErrEmptyPeer = errors.New("local peer cannot be empty")

	// ErrNilExecutor 执行器为空
	ErrNilExecutor = errors.New("nil executor")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid config")

	// ErrSwarmNotStarted 事件循环尚未启动
	ErrSwarmNotStarted = errors.New("swarm not started")

	// ErrInboundThrottled 入站限速等待会超出建连时限
	ErrInboundThrottled = errors.New("inbound upgrade throttled")

	// ErrSwarmStopped Swarm 已停止
	ErrSwarmStopped = errors.New("swarm stopped")

	// ErrExhausted 事件流已终止
	ErrExhausted = errors.New("swarm exhausted")
)
