package onionping

import (
	"errors"

	"github.com/dep2p/go-onionping/internal/core/swarm"
)

// 公共错误定义
var (
	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrInvalidOption 无效选项
	ErrInvalidOption = errors.New("invalid option")

	// ErrExhausted 事件流已终止，不会再有事件
	ErrExhausted = swarm.ErrExhausted
)
