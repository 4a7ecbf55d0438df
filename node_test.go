package onionping

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/swarm"
	"github.com/dep2p/go-onionping/pkg/types"
)

func waitEvent(t *testing.T, n *Node, typ types.EventType) types.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for {
		ev, err := n.NextEvent(ctx)
		require.NoError(t, err)
		if ev.Type == typ {
			return ev
		}
	}
}

func TestNode_Lifecycle(t *testing.T) {
	ctx := context.Background()
	n, err := New(ctx, WithoutDefaultRoutes())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, n.State())
	assert.ErrorIs(t, n.Dial("/ip4/127.0.0.1/tcp/1"), ErrNotStarted)

	require.NoError(t, n.Start(ctx))
	assert.Equal(t, StateRunning, n.State())
	assert.ErrorIs(t, n.Start(ctx), ErrAlreadyStarted)
	assert.NotEmpty(t, n.ID())
	assert.NotNil(t, n.Registry())

	require.NoError(t, n.Close())
	assert.Equal(t, StateStopped, n.State())
	assert.NoError(t, n.Close())
	assert.ErrorIs(t, n.Listen("/ip4/127.0.0.1/tcp/0"), ErrNodeClosed)
	assert.ErrorIs(t, n.Start(ctx), ErrNodeClosed)
}

func TestNode_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), WithUpgradeTimeout(0))
	assert.Error(t, err)

	_, err = New(context.Background(), WithConfig(nil))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(context.Background(), WithRoute("not-an-addr", 1))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestNode_UnroutableDial(t *testing.T) {
	n, err := Start(context.Background(), WithoutDefaultRoutes())
	require.NoError(t, err)
	defer n.Close()

	assert.ErrorIs(t, n.Dial(config.DefaultOnionAddr), types.ErrUnroutableAddress)
}

func TestNode_PingPong(t *testing.T) {
	ctx := context.Background()
	keyFile := filepath.Join(t.TempDir(), "listener.key")

	listener, err := Start(ctx,
		WithoutDefaultRoutes(),
		WithKeyFile(keyFile),
		WithPing(100*time.Millisecond, 5*time.Second, true))
	require.NoError(t, err)
	defer listener.Close()

	dialer, err := Start(ctx,
		WithoutDefaultRoutes(),
		WithWorkers(4),
		WithPing(50*time.Millisecond, 5*time.Second, true))
	require.NoError(t, err)
	defer dialer.Close()

	require.NoError(t, listener.Listen("/ip4/127.0.0.1/tcp/0"))
	waitEvent(t, listener, types.EventListening)
	addrs := listener.ListenAddrs()
	require.Len(t, addrs, 1)

	require.NoError(t, dialer.Dial(addrs[0]))
	est := waitEvent(t, dialer, types.EventConnectionEstablished)
	assert.Equal(t, listener.ID(), est.Peer)

	ping := waitEvent(t, dialer, types.EventPingSuccess)
	assert.Equal(t, listener.ID(), ping.Peer)

	require.NoError(t, dialer.Close())
	_, err = dialer.NextEvent(ctx)
	assert.ErrorIs(t, err, swarm.ErrExhausted)

	// 同一密钥文件得到同一身份
	again, err := New(ctx, WithoutDefaultRoutes(), WithKeyFile(keyFile))
	require.NoError(t, err)
	assert.Equal(t, listener.ID(), again.ID())
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Contains(t, VersionInfo(), "(01234567)")
}
