package muxer

import (
	"errors"
	"fmt"

	"github.com/libp2p/go-yamux/v5"
)

var (
	// ErrStreamReset ping 流被对端或本端重置
	ErrStreamReset = errors.New("stream reset")

	// ErrConnClosed 会话已关闭（本端 Close 或对端 GoAway）
	ErrConnClosed = errors.New("connection closed")
)

// parseError 把 go-yamux 错误归入包内错误，保留原错误链
//
// GoAwayError 对 yamux.ErrStreamReset 也返回 true，必须先判断会话关闭。
func parseError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, yamux.ErrSessionShutdown), errors.Is(err, yamux.ErrRemoteGoAway):
		return fmt.Errorf("%w: %w", ErrConnClosed, err)
	case errors.Is(err, yamux.ErrStreamReset):
		return fmt.Errorf("%w: %w", ErrStreamReset, err)
	}
	return err
}

// parseClose 会话已关闭时 Close 视为成功
func parseClose(err error) error {
	if err == nil || errors.Is(err, yamux.ErrSessionShutdown) {
		return nil
	}
	logger.Debug("关闭会话失败", "error", err)
	return err
}
