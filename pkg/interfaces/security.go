package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-onionping/pkg/types"
)

// SecureTransport 定义安全传输接口
//
// 在原始连接上完成双向认证握手，得到加密通道和远端节点 ID。
type SecureTransport interface {
	// SecureInbound 保护入站连接，remotePeer 为空时接受任意节点
	SecureInbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (SecureConn, error)

	// SecureOutbound 保护出站连接，remotePeer 为空时不校验远端身份
	SecureOutbound(ctx context.Context, conn net.Conn, remotePeer types.PeerID) (SecureConn, error)

	// ID 返回安全协议标识
	ID() types.ProtocolID
}

// SecureConn 定义安全连接接口
type SecureConn interface {
	net.Conn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回远端节点 ID
	RemotePeer() types.PeerID

	// RemotePublicKey 返回远端公钥
	RemotePublicKey() PublicKey
}
