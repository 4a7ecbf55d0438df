package upgrader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-onionping/pkg/lib/log"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/upgrader")

var _ pkgif.Upgrader = (*Upgrader)(nil)

// Upgrader 连接升级器
type Upgrader struct {
	identity pkgif.Identity

	securityTransports []pkgif.SecureTransport
	streamMuxers       []pkgif.StreamMuxer
}

// New 创建连接升级器
func New(id pkgif.Identity, cfg Config) (*Upgrader, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return &Upgrader{
		identity:           id,
		securityTransports: cfg.SecurityTransports,
		streamMuxers:       cfg.StreamMuxers,
	}, nil
}

// Upgrade 升级连接
//
// 失败时原始连接一定已关闭。remotePeer 为空时不校验远端身份。
func (u *Upgrader) Upgrade(
	ctx context.Context,
	conn net.Conn,
	dir types.Direction,
	remotePeer types.PeerID,
) (pkgif.UpgradedConn, error) {
	isServer := dir == types.DirInbound

	if d, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(d); err != nil {
			conn.Close()
			return nil, types.IOError(fmt.Errorf("set deadline: %w", err))
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	fail := func(stage string, err error) (pkgif.UpgradedConn, error) {
		stop()
		conn.Close()
		err = classify(ctx, err)
		logger.Debug("连接升级失败", "stage", stage, "direction", dir, "kind", types.ErrorKind(err), "error", err)
		return nil, &types.UpgradeError{Stage: stage, Err: err}
	}

	// 1. 协商安全协议
	secTransport, err := u.negotiateSecurity(conn, isServer)
	if err != nil {
		if errors.Is(err, errNoCommonProtocol) {
			err = types.NewAuthError(types.AuthProtocolMismatch, err)
		}
		return fail(StageSecurity, err)
	}

	// 2. 安全握手
	var secConn pkgif.SecureConn
	if isServer {
		secConn, err = secTransport.SecureInbound(ctx, conn, remotePeer)
	} else {
		secConn, err = secTransport.SecureOutbound(ctx, conn, remotePeer)
	}
	if err != nil {
		if isConnFailure(err) {
			return fail(StageSecurity, types.IOError(err))
		}
		return fail(StageSecurity, types.NewAuthError(types.AuthVerificationFailed, err))
	}

	// 3. 协商多路复用器
	sm, err := u.negotiateMuxer(secConn, isServer)
	if err != nil {
		if errors.Is(err, errNoCommonProtocol) {
			err = fmt.Errorf("%w: %v", types.ErrNoCommonMultiplexer, err)
		}
		return fail(StageMuxer, err)
	}

	// 会话建立后由多路复用器持续读写，清除 deadline
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return fail(StageMuxer, types.IOError(err))
	}

	// 4. 多路复用会话
	muxedConn, err := sm.NewConn(secConn, isServer)
	if err != nil {
		return fail(StageMuxer, types.IOError(err))
	}

	if !stop() {
		// ctx 已结束，连接已被关闭
		muxedConn.Close()
		return fail(StageMuxer, ctx.Err())
	}

	remoteAddr, _ := manet.FromNetAddr(conn.RemoteAddr())

	logger.Debug("连接升级成功",
		"remotePeer", log.TruncateID(string(secConn.RemotePeer()), 12),
		"direction", dir,
		"security", secTransport.ID(),
		"muxer", sm.ID())

	return &upgradedConn{
		MuxedConn:     muxedConn,
		secConn:       secConn,
		securityProto: secTransport.ID(),
		muxerID:       sm.ID(),
		remoteAddr:    remoteAddr,
		dir:           dir,
	}, nil
}

// classify 截止时间到达的失败统一归为 ErrUpgradeTimeout，取消归为 context.Canceled
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %v", types.ErrUpgradeTimeout, err)
	case errors.Is(ctx.Err(), context.Canceled) && !errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", context.Canceled, err)
	default:
		return err
	}
}
