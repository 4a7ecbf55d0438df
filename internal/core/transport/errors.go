package transport

import "errors"

var (
	// ErrNilRouter 路由器为空
	ErrNilRouter = errors.New("transport: router is nil")

	// ErrNilBase 基础传输为空
	ErrNilBase = errors.New("transport: base transport is nil")

	// ErrNilUpgrader 升级器为空
	ErrNilUpgrader = errors.New("transport: upgrader is nil")
)
