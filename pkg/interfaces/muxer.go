package interfaces

import (
	"context"
	"net"
	"time"
)

// StreamMuxer 在安全连接上建立多路复用会话
//
// 升级器按 ID 做 multistream 协商，选中后调用 NewConn。
type StreamMuxer interface {
	// NewConn isServer 为 true 时作为应答方（入站连接）
	NewConn(conn net.Conn, isServer bool) (MuxedConn, error)

	ID() string
}

// MuxedConn 一条已升级连接上的会话
//
// 出站方每次 ping 调用 OpenStream，入站方循环 AcceptStream 回送 pong。
// 会话关闭后两者都返回错误，之后 IsClosed 为 true。
type MuxedConn interface {
	OpenStream(ctx context.Context) (MuxedStream, error)
	AcceptStream() (MuxedStream, error)

	Close() error
	IsClosed() bool
}

// MuxedStream 会话内的一条流，承载一次 ping/pong 交换
type MuxedStream interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)

	// Close 双向关闭，对端读到 EOF
	Close() error

	// CloseWrite 半关闭，本端仍可读取对端回复
	CloseWrite() error

	// Reset 异常终止，对端读到重置错误
	Reset() error

	SetDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}
