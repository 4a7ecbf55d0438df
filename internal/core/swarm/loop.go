package swarm

import (
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-onionping/internal/core/liveness"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

// ============================================================================
//                              命令与消息
// ============================================================================

type command interface{}

type envelope struct {
	cmd   command
	reply chan error
}

type dialCmd struct {
	addr types.Multiaddr
}

type listenCmd struct {
	listener pkgif.Listener
}

type message interface{}

type dialResult struct {
	addr types.Multiaddr
	conn pkgif.UpgradedConn
	err  error
}

type acceptResult struct {
	lid  string
	conn net.Conn
	at   time.Time
	err  error
}

type inboundResult struct {
	addr types.Multiaddr
	conn pkgif.UpgradedConn
	err  error
}

type connClosed struct {
	id string
}

type pingTick struct {
	id string
}

type pingDeadline struct {
	id  string
	seq uint64
}

type pingResult struct {
	id  string
	seq uint64
	err error
}

// ============================================================================
//                              循环状态
// ============================================================================

type connEntry struct {
	id      string
	conn    pkgif.UpgradedConn
	handler *liveness.Handler
	timer   *clock.Timer
}

func (e *connEntry) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

type listenerEntry struct {
	id       string
	listener pkgif.Listener
}

// ============================================================================
//                              事件循环
// ============================================================================

func (s *Swarm) loop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return
		case env := <-s.cmds:
			err := s.handleCommand(env.cmd)
			s.publish()
			env.reply <- err
		case m := <-s.msgs:
			s.handleMessage(m)
			s.publish()
		}
	}
}

func (s *Swarm) handleCommand(c command) error {
	if s.ctx.Err() != nil {
		if lc, ok := c.(listenCmd); ok {
			_ = lc.listener.Close()
		}
		return ErrSwarmStopped
	}

	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	switch c := c.(type) {
	case dialCmd:
		s.dialing++
		s.spawn(func() { s.dialWorker(c.addr) })
		logger.Debug("开始拨号", "addr", c.addr)

	case listenCmd:
		le := &listenerEntry{id: uuid.NewString(), listener: c.listener}
		s.listeners[le.id] = le
		s.metrics.ListenerOpened()
		s.goTracked(func() { s.acceptLoop(le.id, le.listener) })
		s.emit(types.Event{Type: types.EventListening, Addr: le.listener.Multiaddr()})
		logger.Info("开始监听", "addr", le.listener.Multiaddr())
	}
	return nil
}

func (s *Swarm) handleMessage(m message) {
	switch m := m.(type) {
	case dialResult:
		s.dialing--
		if m.err != nil {
			s.emit(types.Event{Type: types.EventDialFailed, Addr: m.addr, Direction: types.DirOutbound, Err: m.err})
			return
		}
		s.addConn(m.conn)

	case acceptResult:
		if m.err != nil {
			s.listenerClosed(m.lid, m.err)
			return
		}
		s.upgrading++
		s.spawn(func() { s.inboundWorker(m.conn, m.at) })

	case inboundResult:
		s.upgrading--
		if m.err != nil {
			s.emit(types.Event{Type: types.EventIncomingFailed, Addr: m.addr, Direction: types.DirInbound, Err: m.err})
			return
		}
		s.addConn(m.conn)

	case connClosed:
		if e, ok := s.conns[m.id]; ok {
			s.closeConn(e, nil)
		}

	case pingTick:
		if e, ok := s.conns[m.id]; ok {
			s.beginProbe(e)
		}

	case pingDeadline:
		e, ok := s.conns[m.id]
		if !ok {
			return
		}
		if out, ok := e.handler.OnDeadline(m.seq); ok {
			e.timer = nil
			s.handleOutcome(e, out)
		}

	case pingResult:
		e, ok := s.conns[m.id]
		if !ok {
			return
		}
		if out, ok := e.handler.OnPong(m.seq, s.clock.Now(), m.err); ok {
			e.stopTimer()
			s.handleOutcome(e, out)
		}
	}
}

// addConn 登记一条已升级的连接
func (s *Swarm) addConn(c pkgif.UpgradedConn) {
	e := &connEntry{
		id:      uuid.NewString(),
		conn:    c,
		handler: liveness.NewHandler(s.ping),
	}
	s.conns[e.id] = e
	s.metrics.ConnOpened()

	id := e.id
	s.goTracked(func() {
		s.pong.Serve(c, trackedExecutor{s})
		s.send(connClosed{id: id})
	})
	s.schedulePing(e)

	s.emit(types.Event{
		Type:      types.EventConnectionEstablished,
		ConnID:    e.id,
		Peer:      c.RemotePeer(),
		Addr:      c.RemoteMultiaddr(),
		Direction: c.Direction(),
	})
	logger.Info("连接已建立",
		"connID", e.id,
		"remotePeer", log.TruncateID(string(c.RemotePeer()), 12),
		"direction", c.Direction().String())
}

// closeConn 关闭并移除连接，reason 为 nil 表示对端关闭
func (s *Swarm) closeConn(e *connEntry, reason error) {
	delete(s.conns, e.id)
	e.stopTimer()
	_ = e.conn.Close()
	s.metrics.ConnClosed()

	s.emit(types.Event{
		Type:      types.EventConnectionClosed,
		ConnID:    e.id,
		Peer:      e.conn.RemotePeer(),
		Addr:      e.conn.RemoteMultiaddr(),
		Direction: e.conn.Direction(),
		Err:       reason,
	})
}

// listenerClosed Accept 失败后移除监听器
func (s *Swarm) listenerClosed(lid string, err error) {
	le, ok := s.listeners[lid]
	if !ok {
		return
	}
	delete(s.listeners, lid)
	_ = le.listener.Close()
	s.metrics.ListenerClosed()

	s.emit(types.Event{Type: types.EventListenerClosed, Addr: le.listener.Multiaddr(), Err: err})
	logger.Warn("监听器已关闭", "addr", le.listener.Multiaddr(), "error", err)
}

// ============================================================================
//                              探测调度
// ============================================================================

func (s *Swarm) schedulePing(e *connEntry) {
	id := e.id
	e.timer = s.clock.AfterFunc(s.ping.Interval, func() {
		s.send(pingTick{id: id})
	})
}

func (s *Swarm) beginProbe(e *connEntry) {
	seq, ok := e.handler.BeginProbe(s.clock.Now())
	if !ok {
		return
	}

	id, conn := e.id, e.conn
	e.timer = s.clock.AfterFunc(s.ping.Timeout, func() {
		s.send(pingDeadline{id: id, seq: seq})
	})
	s.spawn(func() { s.pingWorker(id, seq, conn) })
}

func (s *Swarm) handleOutcome(e *connEntry, out liveness.Outcome) {
	s.metrics.RecordPing(out.RTT, out.Err)

	if !out.Success() {
		s.emit(types.Event{
			Type:      types.EventPingFailure,
			ConnID:    e.id,
			Peer:      e.conn.RemotePeer(),
			Addr:      e.conn.RemoteMultiaddr(),
			Direction: e.conn.Direction(),
			Err:       out.Err,
		})
		logger.Warn("探测失败，关闭连接", "connID", e.id, "error", out.Err)
		s.closeConn(e, out.Err)
		return
	}

	s.emit(types.Event{
		Type:      types.EventPingSuccess,
		ConnID:    e.id,
		Peer:      e.conn.RemotePeer(),
		Addr:      e.conn.RemoteMultiaddr(),
		Direction: e.conn.Direction(),
		RTT:       out.RTT,
	})
	if e.handler.Active() {
		s.schedulePing(e)
	}
}

// ============================================================================
//                              关闭
// ============================================================================

// shutdown 关闭监听器与连接，由事件循环在退出前调用
func (s *Swarm) shutdown() {
	var errs error
	for id, le := range s.listeners {
		delete(s.listeners, id)
		errs = multierr.Append(errs, le.listener.Close())
		s.metrics.ListenerClosed()
	}
	for id, e := range s.conns {
		delete(s.conns, id)
		e.stopTimer()
		errs = multierr.Append(errs, e.conn.Close())
		s.metrics.ConnClosed()
	}
	s.stopErr = errs
	s.publish()
}
