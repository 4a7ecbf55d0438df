package identity

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// 公钥/私钥的线上编码：
//
//	message PublicKey  { KeyType Type = 1; bytes Data = 2; }
//	message PrivateKey { KeyType Type = 1; bytes Data = 2; }
//
// 与 libp2p crypto.proto 兼容，PeerID 和 Noise 握手载荷都基于这个编码。

const (
	fieldKeyType protowire.Number = 1
	fieldKeyData protowire.Number = 2
)

func marshalKey(t pkgif.KeyType, data []byte) []byte {
	b := make([]byte, 0, len(data)+4)
	b = protowire.AppendTag(b, fieldKeyType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t))
	b = protowire.AppendTag(b, fieldKeyData, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	return b
}

func unmarshalKey(b []byte) (pkgif.KeyType, []byte, error) {
	var (
		keyType pkgif.KeyType
		data    []byte
		seen    int
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldKeyType && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, protowire.ParseError(m))
			}
			keyType = pkgif.KeyType(v)
			seen |= 1
			b = b[m:]
		case num == fieldKeyData && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, protowire.ParseError(m))
			}
			data = append([]byte(nil), v...)
			seen |= 2
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	if seen != 3 {
		return 0, nil, fmt.Errorf("%w: missing fields", ErrInvalidKeyEncoding)
	}
	return keyType, data, nil
}

// MarshalPublicKey 编码公钥
func MarshalPublicKey(pub pkgif.PublicKey) ([]byte, error) {
	raw, err := pub.Raw()
	if err != nil {
		return nil, err
	}
	return marshalKey(pub.Type(), raw), nil
}

// UnmarshalPublicKey 解码公钥
func UnmarshalPublicKey(b []byte) (pkgif.PublicKey, error) {
	t, data, err := unmarshalKey(b)
	if err != nil {
		return nil, err
	}
	if t != pkgif.KeyTypeEd25519 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, t)
	}
	return NewEd25519PublicKey(data)
}

// MarshalPrivateKey 编码私钥
func MarshalPrivateKey(priv pkgif.PrivateKey) ([]byte, error) {
	raw, err := priv.Raw()
	if err != nil {
		return nil, err
	}
	return marshalKey(priv.Type(), raw), nil
}

// UnmarshalPrivateKey 解码私钥
func UnmarshalPrivateKey(b []byte) (pkgif.PrivateKey, error) {
	t, data, err := unmarshalKey(b)
	if err != nil {
		return nil, err
	}
	if t != pkgif.KeyTypeEd25519 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, t)
	}
	return NewEd25519PrivateKey(data)
}
