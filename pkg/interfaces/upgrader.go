package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-onionping/pkg/types"
)

// Upgrader 连接升级器接口
//
// 升级顺序固定：
//  1. 安全协议协商（multistream-select）
//  2. 安全握手（Noise）
//  3. 多路复用协商（multistream-select，先匹配者胜出）
//  4. 多路复用会话（yamux）
//
// 任一阶段失败都会关闭原始连接。
type Upgrader interface {
	// Upgrade 升级连接
	//
	// remotePeer 可为空：出站地址不一定携带 /p2p 后缀。
	Upgrade(ctx context.Context, conn net.Conn, dir types.Direction,
		remotePeer types.PeerID) (UpgradedConn, error)
}

// UpgradedConn 升级后的连接接口
type UpgradedConn interface {
	MuxedConn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回远端节点 ID
	RemotePeer() types.PeerID

	// Security 返回协商的安全协议，例如 "/noise"
	Security() types.ProtocolID

	// Muxer 返回协商的多路复用器，例如 "/yamux/1.0.0"
	Muxer() string

	// RemoteMultiaddr 返回远端地址
	RemoteMultiaddr() types.Multiaddr

	// Direction 返回连接方向
	Direction() types.Direction
}
