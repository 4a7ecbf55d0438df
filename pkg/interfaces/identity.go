package interfaces

import "github.com/dep2p/go-onionping/pkg/types"

// Identity 定义节点身份接口
//
// 进程启动时创建一次，之后只读；显式传入升级流程。
type Identity interface {
	// PeerID 返回节点 ID（从公钥派生）
	PeerID() types.PeerID

	// PublicKey 返回公钥
	PublicKey() PublicKey

	// PrivateKey 返回私钥
	PrivateKey() PrivateKey

	// Sign 使用私钥签名数据
	Sign(data []byte) ([]byte, error)
}

// PublicKey 定义公钥接口
type PublicKey interface {
	// Raw 返回原始公钥字节
	Raw() ([]byte, error)

	// Type 返回密钥类型
	Type() KeyType

	// Equals 比较两个公钥是否相等
	Equals(other PublicKey) bool

	// Verify 使用此公钥验证签名
	Verify(data, sig []byte) (bool, error)
}

// PrivateKey 定义私钥接口
type PrivateKey interface {
	// Raw 返回原始私钥字节
	Raw() ([]byte, error)

	// Type 返回密钥类型
	Type() KeyType

	// PublicKey 返回对应的公钥
	PublicKey() PublicKey

	// Sign 使用此私钥签名数据
	Sign(data []byte) ([]byte, error)
}

// KeyType 密钥类型
//
// 取值与 libp2p crypto.proto 保持一致。
type KeyType int

const (
	// KeyTypeRSA RSA 密钥
	KeyTypeRSA KeyType = 0
	// KeyTypeEd25519 Ed25519 密钥
	KeyTypeEd25519 KeyType = 1
)

// String 返回密钥类型名称
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeEd25519:
		return "Ed25519"
	default:
		return "Unknown"
	}
}
