package noise

import "errors"

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("noise: nil identity")

	// ErrInvalidHandshake 握手消息无效
	ErrInvalidHandshake = errors.New("noise: invalid handshake")

	// ErrInvalidSignature 静态公钥签名校验失败
	ErrInvalidSignature = errors.New("noise: invalid static key signature")

	// ErrPeerIDMismatch 远端 PeerID 与期望不符
	ErrPeerIDMismatch = errors.New("noise: peer ID mismatch")

	// ErrKeyConversion Ed25519 到 Curve25519 的密钥转换失败
	ErrKeyConversion = errors.New("noise: key conversion failed")
)
