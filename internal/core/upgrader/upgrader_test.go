package upgrader

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/identity"
	"github.com/dep2p/go-onionping/internal/core/muxer"
	"github.com/dep2p/go-onionping/internal/core/muxer/yamux"
	"github.com/dep2p/go-onionping/internal/core/security/noise"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server := <-accepted
	require.NotNil(t, server)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func newUpgrader(t *testing.T, muxers ...string) (*Upgrader, *identity.Identity) {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	if len(muxers) == 0 {
		muxers = []string{muxer.ID}
	}
	u, err := NewFromConfig(id, config.UpgradeConfig{Muxers: muxers})
	require.NoError(t, err)
	return u, id
}

type upgradeResult struct {
	conn pkgif.UpgradedConn
	err  error
}

// upgradePair 并发升级 TCP 连接的两端
func upgradePair(t *testing.T, client, server *Upgrader, expect types.PeerID) (upgradeResult, upgradeResult) {
	t.Helper()
	cc, sc := tcpPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan upgradeResult, 1)
	go func() {
		c, err := server.Upgrade(ctx, sc, types.DirInbound, "")
		done <- upgradeResult{c, err}
	}()
	c, err := client.Upgrade(ctx, cc, types.DirOutbound, expect)
	sr := <-done

	for _, r := range []upgradeResult{{c, err}, sr} {
		if r.conn != nil {
			uc := r.conn
			t.Cleanup(func() { uc.Close() })
		}
	}
	return upgradeResult{c, err}, sr
}

// recorder 记录阶段执行顺序
type recorder struct {
	mu     sync.Mutex
	stages []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stages...)
}

type recordingSecurity struct {
	pkgif.SecureTransport
	rec *recorder
	id  types.ProtocolID
}

func (s *recordingSecurity) ID() types.ProtocolID {
	if s.id != "" {
		return s.id
	}
	return s.SecureTransport.ID()
}

func (s *recordingSecurity) SecureOutbound(ctx context.Context, conn net.Conn, p types.PeerID) (pkgif.SecureConn, error) {
	s.rec.add("security")
	return s.SecureTransport.SecureOutbound(ctx, conn, p)
}

func (s *recordingSecurity) SecureInbound(ctx context.Context, conn net.Conn, p types.PeerID) (pkgif.SecureConn, error) {
	s.rec.add("security")
	return s.SecureTransport.SecureInbound(ctx, conn, p)
}

type recordingMuxer struct {
	pkgif.StreamMuxer
	rec *recorder
}

func (m *recordingMuxer) NewConn(conn net.Conn, isServer bool) (pkgif.MuxedConn, error) {
	m.rec.add("muxer")
	return m.StreamMuxer.NewConn(conn, isServer)
}

func recordingUpgrader(t *testing.T, rec *recorder, secID types.ProtocolID) *Upgrader {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	sec, err := noise.New(id)
	require.NoError(t, err)
	u, err := New(id, Config{
		SecurityTransports: []pkgif.SecureTransport{&recordingSecurity{SecureTransport: sec, rec: rec, id: secID}},
		StreamMuxers:       []pkgif.StreamMuxer{&recordingMuxer{StreamMuxer: muxer.NewTransport(), rec: rec}},
	})
	require.NoError(t, err)
	return u
}

// ============================================================================
//                              构造
// ============================================================================

func TestNew(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	sec, err := noise.New(id)
	require.NoError(t, err)

	_, err = New(nil, Config{})
	assert.ErrorIs(t, err, ErrNilIdentity)

	_, err = New(id, Config{StreamMuxers: []pkgif.StreamMuxer{muxer.NewTransport()}})
	assert.ErrorIs(t, err, ErrNoSecurityTransport)

	_, err = New(id, Config{SecurityTransports: []pkgif.SecureTransport{sec}})
	assert.ErrorIs(t, err, ErrNoStreamMuxer)

	u, err := New(id, Config{
		SecurityTransports: []pkgif.SecureTransport{sec, sec},
		StreamMuxers:       []pkgif.StreamMuxer{yamux.NewTransport(nil), muxer.NewTransport(), yamux.NewTransport(nil)},
	})
	require.NoError(t, err)
	require.Len(t, u.securityTransports, 1)
	require.Len(t, u.streamMuxers, 2)
	assert.Equal(t, yamux.ID, u.streamMuxers[0].ID())
	assert.Equal(t, muxer.ID, u.streamMuxers[1].ID())
}

func TestNewMuxers(t *testing.T) {
	ms, err := NewMuxers([]string{yamux.ID, muxer.ID})
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, yamux.ID, ms[0].ID())
	assert.Equal(t, muxer.ID, ms[1].ID())

	_, err = NewMuxers(nil)
	assert.ErrorIs(t, err, ErrNoStreamMuxer)

	_, err = NewMuxers([]string{"/mplex/6.7.0"})
	assert.ErrorIs(t, err, ErrUnknownMuxer)
}

// ============================================================================
//                              升级
// ============================================================================

func TestUpgrade_Success(t *testing.T) {
	client, clientID := newUpgrader(t)
	server, serverID := newUpgrader(t)

	cr, sr := upgradePair(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	assert.Equal(t, serverID.PeerID(), cr.conn.RemotePeer())
	assert.Equal(t, clientID.PeerID(), cr.conn.LocalPeer())
	assert.Equal(t, clientID.PeerID(), sr.conn.RemotePeer())
	assert.Equal(t, types.ProtocolID("/noise"), cr.conn.Security())
	assert.Equal(t, muxer.ID, cr.conn.Muxer())
	assert.Equal(t, types.DirOutbound, cr.conn.Direction())
	assert.Equal(t, types.DirInbound, sr.conn.Direction())
	require.NotNil(t, cr.conn.RemoteMultiaddr())
	assert.Contains(t, cr.conn.RemoteMultiaddr().String(), "/ip4/127.0.0.1/tcp/")

	// 在升级后的连接上打开流
	accepted := make(chan pkgif.MuxedStream, 1)
	go func() {
		s, err := sr.conn.AcceptStream()
		if err == nil {
			accepted <- s
		}
	}()
	s, err := cr.conn.OpenStream(context.Background())
	require.NoError(t, err)
	_, err = s.Write([]byte("ping"))
	require.NoError(t, err)

	ss := <-accepted
	buf := make([]byte, 4)
	_, err = io.ReadFull(ss, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestUpgrade_StageOrder(t *testing.T) {
	clientRec := &recorder{}
	serverRec := &recorder{}
	client := recordingUpgrader(t, clientRec, "")
	server := recordingUpgrader(t, serverRec, "")

	cr, sr := upgradePair(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	assert.Equal(t, []string{"security", "muxer"}, clientRec.list())
	assert.Equal(t, []string{"security", "muxer"}, serverRec.list())
}

func TestUpgrade_MuxerPreference(t *testing.T) {
	client, _ := newUpgrader(t, yamux.ID, muxer.ID)
	server, _ := newUpgrader(t, muxer.ID, yamux.ID)

	cr, sr := upgradePair(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	// 发起方列表中第一个双方都支持的协议胜出
	assert.Equal(t, yamux.ID, cr.conn.Muxer())
	assert.Equal(t, yamux.ID, sr.conn.Muxer())
}

func TestUpgrade_MuxerFallback(t *testing.T) {
	client, _ := newUpgrader(t, muxer.ID, yamux.ID)
	server, _ := newUpgrader(t, yamux.ID)

	cr, sr := upgradePair(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)
	assert.Equal(t, yamux.ID, cr.conn.Muxer())
}

func TestUpgrade_NoCommonMultiplexer(t *testing.T) {
	client, _ := newUpgrader(t, muxer.ID)
	server, _ := newUpgrader(t, yamux.ID)

	cr, sr := upgradePair(t, client, server, "")
	require.Error(t, cr.err)
	require.Error(t, sr.err)

	assert.ErrorIs(t, cr.err, types.ErrNoCommonMultiplexer)
	assert.ErrorIs(t, sr.err, types.ErrNoCommonMultiplexer)
	assert.NotErrorIs(t, cr.err, types.ErrAuthenticationFailed)

	var ue *types.UpgradeError
	require.True(t, errors.As(cr.err, &ue))
	assert.Equal(t, StageMuxer, ue.Stage)
}

func TestUpgrade_SecurityProtocolMismatch(t *testing.T) {
	client := recordingUpgrader(t, &recorder{}, "")
	server := recordingUpgrader(t, &recorder{}, "/tls/1.0.0")

	cr, sr := upgradePair(t, client, server, "")
	require.Error(t, cr.err)
	require.Error(t, sr.err)

	var ae *types.AuthError
	require.True(t, errors.As(cr.err, &ae))
	assert.Equal(t, types.AuthProtocolMismatch, ae.Reason)
	assert.ErrorIs(t, cr.err, types.ErrAuthenticationFailed)
	assert.ErrorIs(t, sr.err, types.ErrAuthenticationFailed)

	var ue *types.UpgradeError
	require.True(t, errors.As(cr.err, &ue))
	assert.Equal(t, StageSecurity, ue.Stage)
}

func TestUpgrade_PeerIDMismatch(t *testing.T) {
	client, _ := newUpgrader(t)
	server, _ := newUpgrader(t)
	other, err := identity.Generate()
	require.NoError(t, err)

	cr, _ := upgradePair(t, client, server, other.PeerID())
	require.Error(t, cr.err)

	var ae *types.AuthError
	require.True(t, errors.As(cr.err, &ae))
	assert.Equal(t, types.AuthVerificationFailed, ae.Reason)
	assert.ErrorIs(t, cr.err, noise.ErrPeerIDMismatch)
	assert.Equal(t, "auth", types.ErrorKind(cr.err))
}

func TestUpgrade_PeerClosedBeforeNegotiation(t *testing.T) {
	u, _ := newUpgrader(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, dir := range []types.Direction{types.DirOutbound, types.DirInbound} {
		local, remote := tcpPair(t)
		require.NoError(t, remote.Close())

		_, err := u.Upgrade(ctx, local, dir, "")
		require.Error(t, err, dir.String())
		assert.ErrorIs(t, err, types.ErrIO, dir.String())
		assert.NotErrorIs(t, err, types.ErrAuthenticationFailed, dir.String())
		assert.Equal(t, "io", types.ErrorKind(err), dir.String())

		var ue *types.UpgradeError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, StageSecurity, ue.Stage)
	}
}

// hangupSecurity 完成握手后立即断开
type hangupSecurity struct {
	pkgif.SecureTransport
}

func (s *hangupSecurity) SecureInbound(ctx context.Context, conn net.Conn, p types.PeerID) (pkgif.SecureConn, error) {
	sc, err := s.SecureTransport.SecureInbound(ctx, conn, p)
	if err != nil {
		return nil, err
	}
	_ = sc.Close()
	return nil, errors.New("hang up")
}

func TestUpgrade_PeerClosedAfterAuth(t *testing.T) {
	client, _ := newUpgrader(t)

	id, err := identity.Generate()
	require.NoError(t, err)
	sec, err := noise.New(id)
	require.NoError(t, err)
	server, err := New(id, Config{
		SecurityTransports: []pkgif.SecureTransport{&hangupSecurity{SecureTransport: sec}},
		StreamMuxers:       []pkgif.StreamMuxer{muxer.NewTransport()},
	})
	require.NoError(t, err)

	cr, _ := upgradePair(t, client, server, "")
	require.Error(t, cr.err)
	assert.ErrorIs(t, cr.err, types.ErrIO)
	assert.NotErrorIs(t, cr.err, types.ErrNoCommonMultiplexer)
	assert.NotErrorIs(t, cr.err, types.ErrAuthenticationFailed)

	var ue *types.UpgradeError
	require.True(t, errors.As(cr.err, &ue))
	assert.Equal(t, StageMuxer, ue.Stage)
}

func TestUpgrade_Timeout(t *testing.T) {
	client, _ := newUpgrader(t)
	cc, sc := tcpPair(t)

	// 对端不响应
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Upgrade(ctx, cc, types.DirOutbound, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpgradeTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)

	// 原始连接已释放：对端读到 EOF 或连接错误
	require.NoError(t, sc.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 256)
	for {
		_, rerr := sc.Read(buf)
		if rerr != nil {
			assert.False(t, errors.Is(rerr, context.DeadlineExceeded))
			var ne net.Error
			if errors.As(rerr, &ne) {
				assert.False(t, ne.Timeout(), "raw connection was not closed")
			}
			break
		}
	}
}

func TestUpgrade_Canceled(t *testing.T) {
	client, _ := newUpgrader(t)
	cc, _ := tcpPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := client.Upgrade(ctx, cc, types.DirOutbound, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrUpgradeTimeout)
}

// ============================================================================
//                              Fx 模块
// ============================================================================

func TestModule(t *testing.T) {
	var u pkgif.Upgrader
	app := fxtest.New(t,
		identity.Module(),
		Module(),
		fx.Populate(&u),
	)
	app.RequireStart()
	defer app.RequireStop()
	assert.NotNil(t, u)
}

func TestProvideUpgrader_InvalidMuxer(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	cfg := config.NewConfig()
	cfg.Upgrade.Muxers = []string{"/unknown"}
	_, err = ProvideUpgrader(Params{Identity: id, Config: cfg})
	assert.ErrorIs(t, err, ErrUnknownMuxer)
}
