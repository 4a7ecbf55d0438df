package noise

import (
	"fmt"
	"net"
	"sync"

	"github.com/flynn/noise"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

const (
	// maxFrameSize 单帧最大长度（2 字节长度前缀）
	maxFrameSize = 65535
	// maxPlaintext 单帧最大明文长度（扣除 16 字节 Poly1305 tag）
	maxPlaintext = maxFrameSize - 16
)

// secureConn Noise 安全连接
type secureConn struct {
	net.Conn

	sendCS *noise.CipherState
	recvCS *noise.CipherState

	localPeer  types.PeerID
	remotePeer types.PeerID
	remoteKey  pkgif.PublicKey

	readMu  sync.Mutex
	writeMu sync.Mutex

	readBuf []byte
}

var _ pkgif.SecureConn = (*secureConn)(nil)

// Read 读取并解密
func (c *secureConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.readBuf) == 0 {
		frame, err := readFrame(c.Conn)
		if err != nil {
			return 0, err
		}
		plaintext, err := c.recvCS.Decrypt(nil, nil, frame)
		if err != nil {
			return 0, fmt.Errorf("decrypt: %w", err)
		}
		c.readBuf = plaintext
	}

	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write 加密并写入
//
// 超过 maxPlaintext 的数据拆成多帧，每帧一次底层 Write。
func (c *secureConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for written < len(p) {
		end := written + maxPlaintext
		if end > len(p) {
			end = len(p)
		}
		ciphertext, err := c.sendCS.Encrypt(nil, nil, p[written:end])
		if err != nil {
			return written, fmt.Errorf("encrypt: %w", err)
		}
		if err := writeFrame(c.Conn, ciphertext); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

// LocalPeer 返回本地节点 ID
func (c *secureConn) LocalPeer() types.PeerID {
	return c.localPeer
}

// RemotePeer 返回远端节点 ID
func (c *secureConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// RemotePublicKey 返回远端身份公钥
func (c *secureConn) RemotePublicKey() pkgif.PublicKey {
	return c.remoteKey
}
