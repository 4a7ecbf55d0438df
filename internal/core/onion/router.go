package onion

import (
	"fmt"
	"net"
	"strconv"

	"github.com/dep2p/go-onionping/pkg/types"
)

// DefaultLocalHost 隐藏服务转发目标所在的主机
const DefaultLocalHost = "127.0.0.1"

// ============================================================================
//                              RouteTable
// ============================================================================

// RouteTable onion 地址 → 本地端口
//
// 构建后只读，可并发查询。
type RouteTable struct {
	routes map[string]uint16
}

// NewRouteTable 从配置构建路由表
//
// 键必须是 onion / onion3 地址；规范化后重复的键被拒绝。
func NewRouteTable(routes map[string]uint16) (*RouteTable, error) {
	t := &RouteTable{routes: make(map[string]uint16, len(routes))}
	for s, port := range routes {
		m, err := types.NewMultiaddr(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}
		if !types.IsOnion(m) {
			return nil, fmt.Errorf("%w: %s is not an onion address", ErrInvalidRoute, s)
		}
		if port == 0 {
			return nil, fmt.Errorf("%w: %s maps to port 0", ErrInvalidRoute, s)
		}
		key := types.AddrKey(m)
		if _, dup := t.routes[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
		}
		t.routes[key] = port
	}
	return t, nil
}

// Lookup 查询地址的本地端口
func (t *RouteTable) Lookup(addr types.Multiaddr) (uint16, bool) {
	if t == nil {
		return 0, false
	}
	port, ok := t.routes[types.AddrKey(addr)]
	return port, ok
}

// Len 返回条目数
func (t *RouteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// ============================================================================
//                              Router
// ============================================================================

// Router 地址到端点的路由器，纯查询、无副作用
type Router struct {
	table     *RouteTable
	localHost string
}

// NewRouter 创建路由器
func NewRouter(table *RouteTable, localHost string) *Router {
	if localHost == "" {
		localHost = DefaultLocalHost
	}
	return &Router{table: table, localHost: localHost}
}

// Route 返回地址对应的端点
//
// 地址末尾的 /p2p/<id> 不参与查询。
func (r *Router) Route(addr types.Multiaddr) (Endpoint, error) {
	if addr == nil {
		return Endpoint{}, types.ErrInvalidMultiaddr
	}
	bare, _, err := types.SplitPeerID(addr)
	if err != nil {
		return Endpoint{}, err
	}
	if !types.IsOnion(bare) {
		return Endpoint{Addr: addr}, nil
	}

	port, ok := r.table.Lookup(bare)
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", types.ErrUnroutableAddress, bare)
	}
	host, vport, err := types.OnionTarget(bare)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{
		Addr:    addr,
		Host:    r.localHost,
		Port:    port,
		Proxied: true,
		Target:  net.JoinHostPort(host, strconv.Itoa(int(vport))),
	}, nil
}
