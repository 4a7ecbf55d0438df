package yamux

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/hashicorp/yamux"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// ErrMuxerClosed 多路复用器已关闭
var ErrMuxerClosed = errors.New("yamux: muxer closed")

// Transport hashicorp/yamux 多路复用器
type Transport struct {
	config *yamux.Config
}

var _ pkgif.StreamMuxer = (*Transport)(nil)

// NewTransport 创建 Transport，cfg 为 nil 时使用 DefaultYamuxConfig
func NewTransport(cfg *yamux.Config) *Transport {
	if cfg == nil {
		cfg = DefaultYamuxConfig()
	}
	return &Transport{config: cfg}
}

// ID 返回协议标识
func (t *Transport) ID() string {
	return ID
}

// NewConn 在连接上创建会话
func (t *Transport) NewConn(conn net.Conn, isServer bool) (pkgif.MuxedConn, error) {
	if conn == nil {
		return nil, fmt.Errorf("连接不能为 nil")
	}

	var (
		session *yamux.Session
		err     error
	)
	if isServer {
		session, err = yamux.Server(conn, t.config)
	} else {
		session, err = yamux.Client(conn, t.config)
	}
	if err != nil {
		return nil, fmt.Errorf("创建 yamux session 失败: %w", err)
	}
	return &Muxer{session: session}, nil
}

// Muxer 封装 yamux.Session
type Muxer struct {
	session *yamux.Session
	closed  atomic.Bool
}

var _ pkgif.MuxedConn = (*Muxer)(nil)

// OpenStream 创建新流
//
// yamux.Session.OpenStream 不支持 context，在单独 goroutine 中等待。
func (m *Muxer) OpenStream(ctx context.Context) (pkgif.MuxedStream, error) {
	if m.IsClosed() {
		return nil, ErrMuxerClosed
	}

	type result struct {
		stream *yamux.Stream
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		s, err := m.session.OpenStream()
		resultCh <- result{stream: s, err: err}
	}()

	select {
	case <-ctx.Done():
		// 关闭孤立的流
		go func() {
			if r := <-resultCh; r.stream != nil {
				_ = r.stream.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, fmt.Errorf("创建流失败: %w", r.err)
		}
		return newStream(r.stream), nil
	}
}

// AcceptStream 接受新流
func (m *Muxer) AcceptStream() (pkgif.MuxedStream, error) {
	if m.IsClosed() {
		return nil, ErrMuxerClosed
	}
	s, err := m.session.AcceptStream()
	if err != nil {
		return nil, fmt.Errorf("接受流失败: %w", err)
	}
	return newStream(s), nil
}

// Close 关闭会话
func (m *Muxer) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.session.Close()
}

// IsClosed 检查是否已关闭
func (m *Muxer) IsClosed() bool {
	return m.closed.Load() || m.session.IsClosed()
}

// NumStreams 返回当前流数量
func (m *Muxer) NumStreams() int {
	return m.session.NumStreams()
}
