package identity

import (
	"fmt"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// Identity 节点身份
//
// 创建后不可变，可在多个 goroutine 间共享。
type Identity struct {
	priv   pkgif.PrivateKey
	pub    pkgif.PublicKey
	peerID types.PeerID
}

var _ pkgif.Identity = (*Identity)(nil)

// New 从私钥创建身份
func New(priv pkgif.PrivateKey) (*Identity, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}
	pub := priv.PublicKey()
	id, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Identity{priv: priv, pub: pub, peerID: id}, nil
}

// Generate 生成新的 Ed25519 身份
func Generate() (*Identity, error) {
	priv, _, err := GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return New(priv)
}

// PeerID 返回节点 ID
func (i *Identity) PeerID() types.PeerID { return i.peerID }

// PublicKey 返回公钥
func (i *Identity) PublicKey() pkgif.PublicKey { return i.pub }

// PrivateKey 返回私钥
func (i *Identity) PrivateKey() pkgif.PrivateKey { return i.priv }

// Sign 签名数据
func (i *Identity) Sign(data []byte) ([]byte, error) {
	return i.priv.Sign(data)
}

// PeerIDFromPublicKey 从公钥派生 PeerID
//
// 派生算法：Base58(Multihash(sha2-256, MarshalPublicKey(pub)))
func PeerIDFromPublicKey(pub pkgif.PublicKey) (types.PeerID, error) {
	b, err := MarshalPublicKey(pub)
	if err != nil {
		return types.EmptyPeerID, err
	}
	return types.PeerIDFromPublicKey(b)
}

// MatchesPeerID 检查公钥是否派生出给定 PeerID
func MatchesPeerID(pub pkgif.PublicKey, id types.PeerID) bool {
	derived, err := PeerIDFromPublicKey(pub)
	return err == nil && derived == id
}
