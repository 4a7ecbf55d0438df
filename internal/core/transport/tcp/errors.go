package tcp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnresolvedEndpoint 端点缺少 host:port
	ErrUnresolvedEndpoint = errors.New("endpoint not resolved")
)
