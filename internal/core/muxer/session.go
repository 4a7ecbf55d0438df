package muxer

import (
	"context"
	"errors"

	"github.com/libp2p/go-yamux/v5"

	"github.com/dep2p/go-onionping/pkg/lib/log"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

var logger = log.Logger("core/muxer")

// session 一条升级后连接上的 go-yamux 会话
//
// 每次 ping 在会话上开一条新流，pong 端逐条接受。
type session struct {
	ys *yamux.Session
}

var _ pkgif.MuxedConn = (*session)(nil)

func (s *session) OpenStream(ctx context.Context) (pkgif.MuxedStream, error) {
	st, err := s.ys.OpenStream(ctx)
	if err != nil {
		err = parseError(err)
		if !errors.Is(err, ErrConnClosed) {
			logger.Debug("开流失败", "error", err)
		}
		return nil, err
	}
	return stream{st}, nil
}

func (s *session) AcceptStream() (pkgif.MuxedStream, error) {
	st, err := s.ys.AcceptStream()
	if err != nil {
		return nil, parseError(err)
	}
	return stream{st}, nil
}

// Close 发送 GoAway 并释放底层连接，重复调用返回 nil
func (s *session) Close() error {
	return parseClose(s.ys.Close())
}

func (s *session) IsClosed() bool {
	return s.ys.IsClosed()
}

// stream 只改写读写错误，半关闭、重置和截止时间沿用 yamux.Stream
type stream struct {
	*yamux.Stream
}

var _ pkgif.MuxedStream = stream{}

func (s stream) Read(p []byte) (int, error) {
	n, err := s.Stream.Read(p)
	return n, parseError(err)
}

func (s stream) Write(p []byte) (int, error) {
	n, err := s.Stream.Write(p)
	return n, parseError(err)
}
