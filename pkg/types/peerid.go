package types

import (
	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点唯一标识符
//
// 内容为公钥的 sha2-256 多哈希，外部表示为 Base58（"Qm..."），
// 因此可以直接出现在 /p2p/<PeerID> 地址后缀中。
type PeerID string

// EmptyPeerID 空节点 ID
const EmptyPeerID PeerID = ""

// String 返回 Base58 表示
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回日志用的短表示（前8...后3）
func (id PeerID) ShortString() string {
	s := string(id)
	if len(s) <= 11 {
		return s
	}
	return s[:8] + "..." + s[len(s)-3:]
}

// IsEmpty 检查是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// Bytes 返回解码后的多哈希字节
func (id PeerID) Bytes() []byte {
	b, err := base58.Decode(string(id))
	if err != nil {
		return nil
	}
	return b
}

// Validate 校验 PeerID 格式
func (id PeerID) Validate() error {
	_, err := ParsePeerID(string(id))
	return err
}

// PeerIDFromBytes 从多哈希字节创建 PeerID
func PeerIDFromBytes(b []byte) (PeerID, error) {
	if len(b) == 0 {
		return EmptyPeerID, ErrEmptyPeerID
	}
	if _, err := mh.Cast(b); err != nil {
		return EmptyPeerID, ErrInvalidPeerID
	}
	return PeerID(base58.Encode(b)), nil
}

// PeerIDFromPublicKey 从编码后的公钥派生 PeerID
func PeerIDFromPublicKey(pubKeyBytes []byte) (PeerID, error) {
	sum, err := mh.Sum(pubKeyBytes, mh.SHA2_256, -1)
	if err != nil {
		return EmptyPeerID, err
	}
	return PeerIDFromBytes(sum)
}

// ParsePeerID 从 Base58 字符串解析 PeerID
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return EmptyPeerID, ErrEmptyPeerID
	}
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPeerID, ErrInvalidPeerID
	}
	return PeerIDFromBytes(b)
}
