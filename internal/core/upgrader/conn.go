package upgrader

import (
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

var _ pkgif.UpgradedConn = (*upgradedConn)(nil)

// upgradedConn 升级后的连接
type upgradedConn struct {
	pkgif.MuxedConn

	secConn pkgif.SecureConn

	securityProto types.ProtocolID
	muxerID       string
	remoteAddr    types.Multiaddr
	dir           types.Direction
}

// LocalPeer 返回本地节点 ID
func (c *upgradedConn) LocalPeer() types.PeerID {
	return c.secConn.LocalPeer()
}

// RemotePeer 返回远端节点 ID
func (c *upgradedConn) RemotePeer() types.PeerID {
	return c.secConn.RemotePeer()
}

// Security 返回协商的安全协议
func (c *upgradedConn) Security() types.ProtocolID {
	return c.securityProto
}

// Muxer 返回协商的多路复用器
func (c *upgradedConn) Muxer() string {
	return c.muxerID
}

// RemoteMultiaddr 返回远端地址（由底层连接地址转换，可能为 nil）
func (c *upgradedConn) RemoteMultiaddr() types.Multiaddr {
	return c.remoteAddr
}

// Direction 返回连接方向
func (c *upgradedConn) Direction() types.Direction {
	return c.dir
}
