package types

import (
	"fmt"
	"strconv"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              Multiaddr - 统一地址类型
// ============================================================================

// Multiaddr 统一地址类型
//
// 直接复用 go-multiaddr 的实现：不可变、可通过 Equal 比较，
// 以 AddrKey 返回的规范字符串作为 map 键。
//
// 格式示例：
//   - /onion3/r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid:7
//   - /ip4/127.0.0.1/tcp/7777
//   - /dns4/example.com/tcp/7/p2p/QmNodeID
type Multiaddr = ma.Multiaddr

// NewMultiaddr 解析 multiaddr 字符串
func NewMultiaddr(s string) (Multiaddr, error) {
	m, err := ma.NewMultiaddr(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidMultiaddr, s, err)
	}
	return m, nil
}

// MustMultiaddr 解析 multiaddr，失败时 panic（仅用于常量和测试）
func MustMultiaddr(s string) Multiaddr {
	m, err := NewMultiaddr(s)
	if err != nil {
		panic(err)
	}
	return m
}

// AddrKey 返回地址的规范字符串，用作 map 键
func AddrKey(m Multiaddr) string {
	if m == nil {
		return ""
	}
	return m.String()
}

// firstCode 返回第一个协议组件的 code
func firstCode(m Multiaddr) int {
	if m == nil {
		return 0
	}
	c, _ := ma.SplitFirst(m)
	if c == nil {
		return 0
	}
	return c.Protocol().Code
}

// IsOnion 判断是否为 onion / onion3 地址
func IsOnion(m Multiaddr) bool {
	code := firstCode(m)
	return code == ma.P_ONION || code == ma.P_ONION3
}

// IsDNS 判断地址是否以符号主机名开头（/dns, /dns4, /dns6）
func IsDNS(m Multiaddr) bool {
	switch firstCode(m) {
	case ma.P_DNS, ma.P_DNS4, ma.P_DNS6:
		return true
	}
	return false
}

// OnionTarget 返回 onion 地址对应的代理目标 "<id>.onion" 和虚拟端口
func OnionTarget(m Multiaddr) (string, uint16, error) {
	if !IsOnion(m) {
		return "", 0, ErrNotOnionAddress
	}
	c, _ := ma.SplitFirst(m)
	id, portStr, ok := strings.Cut(c.Value(), ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidMultiaddr, m)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidMultiaddr, m)
	}
	return id + ".onion", uint16(port), nil
}

// SplitPeerID 拆分地址末尾的 /p2p/<id>
//
// 没有 /p2p 后缀时返回原地址和空 PeerID。
func SplitPeerID(m Multiaddr) (Multiaddr, PeerID, error) {
	if m == nil {
		return nil, EmptyPeerID, nil
	}
	rest, last := ma.SplitLast(m)
	if last == nil || last.Protocol().Code != ma.P_P2P {
		return m, EmptyPeerID, nil
	}
	id, err := ParsePeerID(last.Value())
	if err != nil {
		return nil, EmptyPeerID, err
	}
	return rest, id, nil
}

// WithPeerID 在地址末尾追加 /p2p/<id>
func WithPeerID(m Multiaddr, id PeerID) (Multiaddr, error) {
	p, err := ma.NewComponent("p2p", id.String())
	if err != nil {
		return nil, err
	}
	return m.Encapsulate(p), nil
}
