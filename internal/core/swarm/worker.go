package swarm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-onionping/internal/core/liveness"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// spawn 把有限的工作单元交给执行器，Stop 等待其结束
func (s *Swarm) spawn(f func()) {
	s.work.Add(1)
	s.exec.Exec(func() {
		defer s.work.Done()
		f()
	})
}

// goTracked 在独立 goroutine 上运行阻塞等待型任务，Stop 等待其结束
func (s *Swarm) goTracked(f func()) {
	s.work.Add(1)
	go func() {
		defer s.work.Done()
		f()
	}()
}

// send 把结果送回事件循环，循环已退出时返回 false
func (s *Swarm) send(m message) bool {
	select {
	case s.msgs <- m:
		return true
	case <-s.loopDone:
		return false
	}
}

// trackedExecutor 让入站流处理同样受 Stop 等待
type trackedExecutor struct{ s *Swarm }

func (e trackedExecutor) Exec(f func()) { e.s.spawn(f) }

func (s *Swarm) dialWorker(addr types.Multiaddr) {
	conn, err := s.transport.Dial(s.ctx, addr)
	s.metrics.RecordDial(err)
	if !s.send(dialResult{addr: addr, conn: conn, err: err}) && conn != nil {
		_ = conn.Close()
	}
}

func (s *Swarm) acceptLoop(lid string, l pkgif.Listener) {
	for {
		raw, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				err = nil
			}
			s.send(acceptResult{lid: lid, err: err})
			return
		}
		if !s.send(acceptResult{lid: lid, conn: raw, at: time.Now()}) {
			_ = raw.Close()
			return
		}
	}
}

// inboundWorker 限速后升级入站连接
//
// 时限从接受连接时开始计算，限速等待也计入其中；等待会超出时限的连接直接拒绝。
func (s *Swarm) inboundWorker(raw net.Conn, accepted time.Time) {
	addr, _ := manet.FromNetAddr(raw.RemoteAddr())

	ctx, cancel := context.WithDeadline(s.ctx, accepted.Add(s.transport.Timeout()))
	defer cancel()

	if err := s.throttle(ctx); err != nil {
		_ = raw.Close()
		s.metrics.RecordInbound(err)
		s.send(inboundResult{addr: addr, err: err})
		return
	}

	conn, err := s.transport.UpgradeInbound(ctx, raw)
	s.metrics.RecordInbound(err)
	if !s.send(inboundResult{addr: addr, conn: conn, err: err}) && conn != nil {
		_ = conn.Close()
	}
}

// throttle 按入站速率等待，等待不能越过 ctx 的截止时间
func (s *Swarm) throttle(ctx context.Context) error {
	r := s.limiter.Reserve()
	delay := r.Delay()
	s.metrics.RecordAccept(delay > 0 || !r.OK())
	if !r.OK() {
		return fmt.Errorf("%w: %w", types.ErrUpgradeTimeout, ErrInboundThrottled)
	}
	if delay == 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && time.Now().Add(delay).After(deadline) {
		r.Cancel()
		return fmt.Errorf("%w: %w", types.ErrUpgradeTimeout, ErrInboundThrottled)
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", types.ErrUpgradeTimeout, ErrInboundThrottled)
		}
		return ctx.Err()
	}
}

// pingWorker 执行一次探测 I/O
//
// 截止时间由事件循环的定时器判定，这里的超时只用于释放阻塞的流。
func (s *Swarm) pingWorker(id string, seq uint64, conn pkgif.MuxedConn) {
	ctx, cancel := context.WithTimeout(s.ctx, s.ping.Timeout)
	defer cancel()

	_, err := liveness.Ping(ctx, conn)
	if errors.Is(err, context.DeadlineExceeded) {
		err = liveness.ErrPingTimeout
	}
	s.send(pingResult{id: id, seq: seq, err: err})
}
