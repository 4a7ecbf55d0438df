package onion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-onionping/pkg/types"
)

const (
	onionX = "/onion3/r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid:7"
	onionY = "/onion3/vww6ybal4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd:80"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	table, err := NewRouteTable(map[string]uint16{onionX: 7777})
	require.NoError(t, err)
	return NewRouter(table, "")
}

// TestRouter_PassThrough 非 onion 地址原样返回
func TestRouter_PassThrough(t *testing.T) {
	r := newTestRouter(t)
	for _, s := range []string{
		"/ip4/127.0.0.1/tcp/7",
		"/ip6/::1/tcp/4001",
		"/dns4/example.com/tcp/443",
	} {
		addr := types.MustMultiaddr(s)
		ep, err := r.Route(addr)
		require.NoError(t, err, s)
		assert.True(t, ep.Addr.Equal(addr))
		assert.False(t, ep.Proxied)
		assert.False(t, ep.Resolved())
		assert.Equal(t, s, ep.String())
	}
}

// TestRouter_Mapped 有条目的 onion 地址映射到本地端点
func TestRouter_Mapped(t *testing.T) {
	r := newTestRouter(t)
	ep, err := r.Route(types.MustMultiaddr(onionX))
	require.NoError(t, err)

	assert.Equal(t, DefaultLocalHost, ep.Host)
	assert.Equal(t, uint16(7777), ep.Port)
	assert.True(t, ep.Proxied)
	assert.Equal(t, "r4nttccifklkruvrztwxuhk2iy4xx7cnnex2sgogbo4zw6rnx3cq2bid.onion:7", ep.Target)
	assert.Equal(t, "127.0.0.1:7777", ep.HostPort())
}

// TestRouter_PeerIDSuffix /p2p 后缀不影响查询
func TestRouter_PeerIDSuffix(t *testing.T) {
	r := newTestRouter(t)
	id, err := types.PeerIDFromPublicKey([]byte("k"))
	require.NoError(t, err)
	addr, err := types.WithPeerID(types.MustMultiaddr(onionX), id)
	require.NoError(t, err)

	ep, err := r.Route(addr)
	require.NoError(t, err)
	assert.Equal(t, uint16(7777), ep.Port)
	assert.True(t, ep.Addr.Equal(addr))
}

// TestRouter_Unroutable 无条目的 onion 地址返回 ErrUnroutableAddress
func TestRouter_Unroutable(t *testing.T) {
	r := newTestRouter(t)
	_, err := r.Route(types.MustMultiaddr(onionY))
	assert.ErrorIs(t, err, types.ErrUnroutableAddress)

	// 空路由表
	empty := NewRouter(nil, "")
	_, err = empty.Route(types.MustMultiaddr(onionX))
	assert.ErrorIs(t, err, types.ErrUnroutableAddress)

	_, err = r.Route(nil)
	assert.ErrorIs(t, err, types.ErrInvalidMultiaddr)
}

// TestNewRouteTable 测试路由表校验
func TestNewRouteTable(t *testing.T) {
	table, err := NewRouteTable(map[string]uint16{onionX: 1, onionY: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	port, ok := table.Lookup(types.MustMultiaddr(onionY))
	assert.True(t, ok)
	assert.Equal(t, uint16(2), port)

	_, err = NewRouteTable(map[string]uint16{"/ip4/1.2.3.4/tcp/7": 1})
	assert.ErrorIs(t, err, ErrInvalidRoute)

	_, err = NewRouteTable(map[string]uint16{"nonsense": 1})
	assert.ErrorIs(t, err, ErrInvalidRoute)

	_, err = NewRouteTable(map[string]uint16{onionX: 0})
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

// TestNewRouteTable_Duplicate 规范化后重复的键被拒绝
func TestNewRouteTable_Duplicate(t *testing.T) {
	upper := "/onion3/R4NTTCCIFKLKRUVRZTWXUHK2IY4XX7CNNEX2SGOGBO4ZW6RNX3CQ2BID:7"
	_, err := NewRouteTable(map[string]uint16{onionX: 1, upper: 2})
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}

// TestRouter_CustomLocalHost 使用自定义本地主机
func TestRouter_CustomLocalHost(t *testing.T) {
	table, err := NewRouteTable(map[string]uint16{onionX: 9000})
	require.NoError(t, err)
	ep, err := NewRouter(table, "::1").Route(types.MustMultiaddr(onionX))
	require.NoError(t, err)
	assert.Equal(t, "[::1]:9000", ep.HostPort())
}
