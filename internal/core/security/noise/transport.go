package noise

import (
	"context"
	"net"

	"github.com/dep2p/go-onionping/pkg/lib/log"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/security/noise")

// ID Noise 安全协议标识
const ID types.ProtocolID = "/noise"

// Transport Noise 安全传输
type Transport struct {
	identity pkgif.Identity
}

var _ pkgif.SecureTransport = (*Transport)(nil)

// New 创建 Noise 传输
func New(identity pkgif.Identity) (*Transport, error) {
	if identity == nil {
		return nil, ErrNilIdentity
	}
	return &Transport{identity: identity}, nil
}

// ID 返回协议标识
func (t *Transport) ID() types.ProtocolID {
	return ID
}

// SecureInbound 以响应者身份完成握手
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (pkgif.SecureConn, error) {
	return t.secure(ctx, conn, remotePeer, false)
}

// SecureOutbound 以发起者身份完成握手
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (pkgif.SecureConn, error) {
	return t.secure(ctx, conn, remotePeer, true)
}

// secure 握手受 ctx 截止时间约束，由调用方设置连接 deadline
func (t *Transport) secure(ctx context.Context, conn net.Conn, remotePeer types.PeerID, initiator bool) (pkgif.SecureConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := performHandshake(conn, t.identity.PrivateKey(), remotePeer, initiator)
	if err != nil {
		logger.Debug("Noise 握手失败", "initiator", initiator, "error", err)
		return nil, err
	}

	logger.Debug("Noise 握手完成",
		"initiator", initiator,
		"remotePeer", log.TruncateID(string(res.remote), 12))

	return &secureConn{
		Conn:       conn,
		sendCS:     res.sendCS,
		recvCS:     res.recvCS,
		localPeer:  t.identity.PeerID(),
		remotePeer: res.remote,
		remoteKey:  res.remoteKey,
	}, nil
}
