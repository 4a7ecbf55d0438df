package noise

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"filippo.io/edwards25519"
	"github.com/flynn/noise"
	"golang.org/x/crypto/curve25519"

	"github.com/dep2p/go-onionping/internal/core/identity"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// payloadSigPrefix 签名 payload 的前缀
const payloadSigPrefix = "noise-libp2p-static-key:"

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// ============================================================================
//                              握手
// ============================================================================

// handshakeResult 握手结果
type handshakeResult struct {
	sendCS    *noise.CipherState
	recvCS    *noise.CipherState
	remoteKey pkgif.PublicKey
	remote    types.PeerID
}

// performHandshake 执行 Noise XX 握手
//
// remotePeer 非空时校验远端身份，不符返回 ErrPeerIDMismatch。
func performHandshake(conn net.Conn, priv pkgif.PrivateKey, remotePeer types.PeerID, initiator bool) (*handshakeResult, error) {
	static, err := staticKeypair(priv)
	if err != nil {
		return nil, err
	}

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: static,
	})
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	localPayload, err := generatePayload(priv, static.Public)
	if err != nil {
		return nil, err
	}

	var res handshakeResult
	var remotePayload []byte
	if initiator {
		res.sendCS, res.recvCS, remotePayload, err = clientHandshake(conn, hs, localPayload)
	} else {
		res.sendCS, res.recvCS, remotePayload, err = serverHandshake(conn, hs, localPayload)
	}
	if err != nil {
		return nil, err
	}

	remoteStatic := hs.PeerStatic()
	if len(remoteStatic) != curve25519.PointSize {
		return nil, fmt.Errorf("%w: remote static key length %d", ErrInvalidHandshake, len(remoteStatic))
	}

	res.remoteKey, res.remote, err = verifyPayload(remotePayload, remoteStatic)
	if err != nil {
		return nil, err
	}
	if remotePeer != "" && res.remote != remotePeer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrPeerIDMismatch, remotePeer, res.remote)
	}
	return &res, nil
}

// clientHandshake 发起者流程
func clientHandshake(conn net.Conn, hs *noise.HandshakeState, payload []byte) (*noise.CipherState, *noise.CipherState, []byte, error) {
	// -> e
	msg1, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 1: %w", err)
	}
	if err := writeFrame(conn, msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 1: %w", err)
	}

	// <- e, ee, s, es, payload
	msg2, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 2: %w", err)
	}
	remotePayload, _, _, err := hs.ReadMessage(nil, msg2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 2: %v", ErrInvalidHandshake, err)
	}

	// -> s, se, payload
	msg3, cs1, cs2, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 3: %w", err)
	}
	if err := writeFrame(conn, msg3); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 3: %w", err)
	}

	return cs1, cs2, remotePayload, nil
}

// serverHandshake 响应者流程
func serverHandshake(conn net.Conn, hs *noise.HandshakeState, payload []byte) (*noise.CipherState, *noise.CipherState, []byte, error) {
	// <- e
	msg1, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 1: %w", err)
	}
	if _, _, _, err = hs.ReadMessage(nil, msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 1: %v", ErrInvalidHandshake, err)
	}

	// -> e, ee, s, es, payload
	msg2, _, _, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 2: %w", err)
	}
	if err := writeFrame(conn, msg2); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 2: %w", err)
	}

	// <- s, se, payload
	msg3, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 3: %w", err)
	}
	remotePayload, cs1, cs2, err := hs.ReadMessage(nil, msg3)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: read message 3: %v", ErrInvalidHandshake, err)
	}

	// 响应者：cs1 用于接收，cs2 用于发送
	return cs2, cs1, remotePayload, nil
}

// ============================================================================
//                              Payload
// ============================================================================

// generatePayload 生成本地 payload
func generatePayload(priv pkgif.PrivateKey, staticPub []byte) ([]byte, error) {
	keyBytes, err := identity.MarshalPublicKey(priv.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("marshal identity key: %w", err)
	}
	sig, err := priv.Sign(append([]byte(payloadSigPrefix), staticPub...))
	if err != nil {
		return nil, fmt.Errorf("sign static key: %w", err)
	}
	p := handshakePayload{IdentityKey: keyBytes, IdentitySig: sig}
	return p.marshal(), nil
}

// verifyPayload 校验远端 payload，返回远端公钥和 PeerID
func verifyPayload(b []byte, remoteStatic []byte) (pkgif.PublicKey, types.PeerID, error) {
	var p handshakePayload
	if err := p.unmarshal(b); err != nil {
		return nil, "", err
	}

	pub, err := identity.UnmarshalPublicKey(p.IdentityKey)
	if err != nil {
		return nil, "", fmt.Errorf("%w: remote identity key: %v", ErrInvalidHandshake, err)
	}

	ok, err := pub.Verify(append([]byte(payloadSigPrefix), remoteStatic...), p.IdentitySig)
	if err != nil || !ok {
		return nil, "", ErrInvalidSignature
	}

	id, err := identity.PeerIDFromPublicKey(pub)
	if err != nil {
		return nil, "", fmt.Errorf("derive remote peer id: %w", err)
	}
	return pub, id, nil
}

// ============================================================================
//                              密钥转换
// ============================================================================

// staticKeypair 从 Ed25519 身份密钥派生 Noise 静态密钥对
//
// 私钥：SHA-512(seed)[:32] 并 clamping；公钥：Edwards → Montgomery。
// 两者必须满足 X25519(priv, basepoint) == pub。
func staticKeypair(priv pkgif.PrivateKey) (noise.DHKey, error) {
	if priv.Type() != pkgif.KeyTypeEd25519 {
		return noise.DHKey{}, fmt.Errorf("%w: unsupported key type %s", ErrKeyConversion, priv.Type())
	}
	privRaw, err := priv.Raw()
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("%w: %v", ErrKeyConversion, err)
	}
	pubRaw, err := priv.PublicKey().Raw()
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("%w: %v", ErrKeyConversion, err)
	}

	cpriv, err := ed25519ToCurve25519Private(privRaw)
	if err != nil {
		return noise.DHKey{}, err
	}
	cpub, err := ed25519ToCurve25519Public(pubRaw)
	if err != nil {
		return noise.DHKey{}, err
	}

	check, err := curve25519.X25519(cpriv, curve25519.Basepoint)
	if err != nil || !bytes.Equal(check, cpub) {
		return noise.DHKey{}, fmt.Errorf("%w: keypair mismatch", ErrKeyConversion)
	}
	return noise.DHKey{Private: cpriv, Public: cpub}, nil
}

// ed25519ToCurve25519Private RFC 7748 / RFC 8032 私钥转换
func ed25519ToCurve25519Private(edPriv []byte) ([]byte, error) {
	var seed []byte
	switch len(edPriv) {
	case ed25519.PrivateKeySize:
		seed = edPriv[:ed25519.SeedSize]
	case ed25519.SeedSize:
		seed = edPriv
	default:
		return nil, fmt.Errorf("%w: private key length %d", ErrKeyConversion, len(edPriv))
	}

	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	return h[:32], nil
}

// ed25519ToCurve25519Public u = (1 + y) / (1 - y) mod p
func ed25519ToCurve25519Public(edPub []byte) ([]byte, error) {
	if len(edPub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key length %d", ErrKeyConversion, len(edPub))
	}
	point, err := new(edwards25519.Point).SetBytes(edPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyConversion, err)
	}
	return point.BytesMontgomery(), nil
}

// ============================================================================
//                              帧
// ============================================================================

// writeFrame 写入帧（2 字节长度 + 数据），一次 Write 完成
func writeFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("frame too large: %d", len(data))
	}
	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	copy(buf[2:], data)
	_, err := w.Write(buf)
	return err
}

// readFrame 读取帧（2 字节长度 + 数据）
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(lenBuf[:])
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
