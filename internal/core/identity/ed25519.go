package identity

import (
	"crypto/ed25519"
	"crypto/rand"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// ============================================================================
//                              Ed25519PublicKey
// ============================================================================

// Ed25519PublicKey Ed25519 公钥实现
type Ed25519PublicKey struct {
	key ed25519.PublicKey
}

var _ pkgif.PublicKey = (*Ed25519PublicKey)(nil)

// NewEd25519PublicKey 从原始字节创建公钥
func NewEd25519PublicKey(b []byte) (*Ed25519PublicKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, ed25519.PublicKeySize)
	copy(k, b)
	return &Ed25519PublicKey{key: k}, nil
}

// Raw 返回 32 字节原始公钥
func (k *Ed25519PublicKey) Raw() ([]byte, error) {
	return append([]byte(nil), k.key...), nil
}

// Type 返回密钥类型
func (k *Ed25519PublicKey) Type() pkgif.KeyType {
	return pkgif.KeyTypeEd25519
}

// Equals 比较两个公钥
func (k *Ed25519PublicKey) Equals(other pkgif.PublicKey) bool {
	o, ok := other.(*Ed25519PublicKey)
	if !ok {
		return false
	}
	return k.key.Equal(o.key)
}

// Verify 验证签名
func (k *Ed25519PublicKey) Verify(data, sig []byte) (bool, error) {
	if len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(k.key, data, sig), nil
}

// ============================================================================
//                              Ed25519PrivateKey
// ============================================================================

// Ed25519PrivateKey Ed25519 私钥实现
type Ed25519PrivateKey struct {
	key ed25519.PrivateKey
}

var _ pkgif.PrivateKey = (*Ed25519PrivateKey)(nil)

// NewEd25519PrivateKey 从 64 字节私钥创建
func NewEd25519PrivateKey(b []byte) (*Ed25519PrivateKey, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, ed25519.PrivateKeySize)
	copy(k, b)
	return &Ed25519PrivateKey{key: k}, nil
}

// Raw 返回 64 字节原始私钥（seed || pub）
func (k *Ed25519PrivateKey) Raw() ([]byte, error) {
	return append([]byte(nil), k.key...), nil
}

// Seed 返回 32 字节种子
func (k *Ed25519PrivateKey) Seed() []byte {
	return k.key.Seed()
}

// Type 返回密钥类型
func (k *Ed25519PrivateKey) Type() pkgif.KeyType {
	return pkgif.KeyTypeEd25519
}

// PublicKey 返回对应的公钥
func (k *Ed25519PrivateKey) PublicKey() pkgif.PublicKey {
	return &Ed25519PublicKey{key: k.key.Public().(ed25519.PublicKey)}
}

// Sign 签名数据
func (k *Ed25519PrivateKey) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(k.key, data), nil
}

// GenerateEd25519Key 生成 Ed25519 密钥对
func GenerateEd25519Key() (*Ed25519PrivateKey, *Ed25519PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &Ed25519PrivateKey{key: priv}, &Ed25519PublicKey{key: pub}, nil
}
