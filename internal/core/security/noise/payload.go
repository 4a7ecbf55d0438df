package noise

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// handshakePayload 握手 payload
//
//	message NoiseHandshakePayload {
//	  bytes identity_key = 1;
//	  bytes identity_sig = 2;
//	}
type handshakePayload struct {
	IdentityKey []byte
	IdentitySig []byte
}

// marshal 按 protobuf wire 格式编码
func (p *handshakePayload) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentityKey)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentitySig)
	return b
}

// unmarshal 解码，未知字段忽略
func (p *handshakePayload) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("payload tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("payload field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return fmt.Errorf("payload field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case 1:
			p.IdentityKey = append([]byte(nil), v...)
		case 2:
			p.IdentitySig = append([]byte(nil), v...)
		}
	}
	if len(p.IdentityKey) == 0 || len(p.IdentitySig) == 0 {
		return ErrInvalidHandshake
	}
	return nil
}
