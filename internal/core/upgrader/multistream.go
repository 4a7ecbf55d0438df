package upgrader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// errNoCommonProtocol 协商完成但双方没有共同协议
var errNoCommonProtocol = errors.New("no common protocol")

// naFrame 服务端拒绝一个提议时写出的完整帧（varint 长度 + "na\n"）
var naFrame = []byte{3, 'n', 'a', '\n'}

// negotiateSecurity 协商安全协议
//
// 服务器端使用 MultistreamMuxer.Negotiate()，客户端使用 SelectOneOf()。
func (u *Upgrader) negotiateSecurity(conn net.Conn, isServer bool) (pkgif.SecureTransport, error) {
	protocols := make([]string, len(u.securityTransports))
	for i, st := range u.securityTransports {
		protocols[i] = string(st.ID())
	}

	selected, err := negotiate(conn, protocols, isServer)
	if err != nil {
		return nil, err
	}
	for _, st := range u.securityTransports {
		if string(st.ID()) == selected {
			return st, nil
		}
	}
	return nil, fmt.Errorf("negotiated protocol %s not found", selected)
}

// negotiateMuxer 协商多路复用器
func (u *Upgrader) negotiateMuxer(conn net.Conn, isServer bool) (pkgif.StreamMuxer, error) {
	protocols := make([]string, len(u.streamMuxers))
	for i, sm := range u.streamMuxers {
		protocols[i] = sm.ID()
	}

	selected, err := negotiate(conn, protocols, isServer)
	if err != nil {
		return nil, err
	}
	for _, sm := range u.streamMuxers {
		if sm.ID() == selected {
			return sm, nil
		}
	}
	return nil, fmt.Errorf("negotiated muxer %s not found", selected)
}

// negotiate 运行一次 multistream-select
//
// 没有共同协议时返回的错误匹配 errNoCommonProtocol，连接失败归为 ErrIO。
func negotiate(conn net.Conn, protocols []string, isServer bool) (string, error) {
	if isServer {
		w := &rejectWatcher{Conn: conn}
		m := mss.NewMultistreamMuxer[string]()
		for _, p := range protocols {
			m.AddHandler(p, nil)
		}
		selected, _, err := m.Negotiate(w)
		if err != nil {
			return "", negotiationError("server", err, w.rejected)
		}
		return selected, nil
	}

	selected, err := mss.SelectOneOf(protocols, conn)
	if err != nil {
		return "", negotiationError("client", err, false)
	}
	return selected, nil
}

// negotiationError 区分协议不匹配与连接失败
//
// 服务端拒绝过提议后对端断开，说明客户端已放弃协商，同样视为不匹配。
func negotiationError(side string, err error, rejected bool) error {
	if isMismatch(err) || (rejected && isConnFailure(err)) {
		return fmt.Errorf("%s negotiation: %w: %w", side, errNoCommonProtocol, err)
	}
	return types.IOError(fmt.Errorf("%s negotiation: %w", side, err))
}

func isMismatch(err error) bool {
	var unrecognized mss.ErrUnrecognizedResponse[string]
	return errors.Is(err, mss.ErrNotSupported[string]{}) ||
		errors.Is(err, mss.ErrIncorrectVersion) ||
		errors.Is(err, mss.ErrTooLarge) ||
		errors.As(err, &unrecognized)
}

// isConnFailure 报告错误是否来自底层连接（断开、重置、超时）
func isConnFailure(err error) bool {
	var ne net.Error
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.As(err, &ne)
}

// rejectWatcher 记录服务端是否向对端回复过 "na"
type rejectWatcher struct {
	net.Conn
	rejected bool
}

func (w *rejectWatcher) Write(p []byte) (int, error) {
	if bytes.Equal(p, naFrame) {
		w.rejected = true
	}
	return w.Conn.Write(p)
}
