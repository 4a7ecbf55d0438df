package liveness

import "errors"

var (
	// ErrPingTimeout 在截止时间内未收到回复
	ErrPingTimeout = errors.New("ping timeout")

	// ErrPayloadMismatch 回显数据与发送数据不一致
	ErrPayloadMismatch = errors.New("ping payload mismatch")

	// ErrNilConn 连接为空
	ErrNilConn = errors.New("nil connection")
)
