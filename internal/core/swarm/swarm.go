package swarm

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-onionping/internal/core/executor"
	"github.com/dep2p/go-onionping/internal/core/liveness"
	"github.com/dep2p/go-onionping/internal/core/metrics"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/swarm")

// Swarm 连接驱动器
type Swarm struct {
	localPeer types.PeerID
	transport pkgif.Transport

	// 依赖（可由选项替换）
	exec        pkgif.Executor
	clock       clock.Clock
	ping        liveness.Config
	pong        *liveness.PongService
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	eventBuffer int

	// 生命周期
	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan envelope
	msgs      chan message
	loopDone  chan struct{}
	work      sync.WaitGroup
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopErr   error

	// 事件循环独占状态
	conns     map[string]*connEntry
	listeners map[string]*listenerEntry
	dialing   int
	upgrading int
	outbox    []types.Event

	// 与 Poll 共享的状态
	mu          sync.Mutex
	queue       []types.Event
	notify      chan struct{}
	active      bool
	idle        bool
	stopped     bool
	exhausted   bool
	peers       map[string]types.PeerID
	listenAddrs map[string]types.Multiaddr
}

// New 创建 Swarm 并启动事件循环
func New(transport pkgif.Transport, localPeer types.PeerID, opts ...Option) (*Swarm, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if localPeer == "" {
		return nil, ErrEmptyPeer
	}

	s := &Swarm{
		localPeer:   localPeer,
		transport:   transport,
		exec:        executor.GoExecutor{},
		clock:       clock.New(),
		ping:        liveness.DefaultConfig(),
		limiter:     rate.NewLimiter(rate.Inf, 0),
		eventBuffer: 64,
		cmds:        make(chan envelope),
		msgs:        make(chan message),
		loopDone:    make(chan struct{}),
		conns:       make(map[string]*connEntry),
		listeners:   make(map[string]*listenerEntry),
		notify:      make(chan struct{}, 1),
		peers:       make(map[string]types.PeerID),
		listenAddrs: make(map[string]types.Multiaddr),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.pong == nil {
		s.pong = liveness.NewPongService()
	}
	s.queue = make([]types.Event, 0, s.eventBuffer)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	logger.Debug("Swarm 已创建", "localPeer", log.TruncateID(string(localPeer), 12))
	return s, nil
}

// Start 启动事件循环，重复调用无效果
func (s *Swarm) Start() error {
	if s.ctx.Err() != nil {
		return ErrSwarmStopped
	}
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.loop()
		logger.Debug("Swarm 事件循环已启动")
	})
	if s.ctx.Err() != nil {
		return ErrSwarmStopped
	}
	return nil
}

// usable 检查 Swarm 能否接受新操作
func (s *Swarm) usable() error {
	if s.ctx.Err() != nil {
		return ErrSwarmStopped
	}
	if !s.started.Load() {
		return ErrSwarmNotStarted
	}
	return nil
}

// LocalPeer 返回本地节点 ID
func (s *Swarm) LocalPeer() types.PeerID {
	return s.localPeer
}

// Dial 发起一次出站连接
//
// 路由错误同步返回；拨号与升级的结果以事件报告。
func (s *Swarm) Dial(addr types.Multiaddr) error {
	if err := s.usable(); err != nil {
		return err
	}
	if err := s.transport.Route(addr); err != nil {
		return err
	}
	return s.submit(dialCmd{addr: addr})
}

// Listen 在地址上监听
//
// 路由错误与绑定错误同步返回；成功时产生 Listening 事件。
func (s *Swarm) Listen(addr types.Multiaddr) error {
	if err := s.usable(); err != nil {
		return err
	}
	l, err := s.transport.Listen(addr)
	if err != nil {
		return err
	}
	if err := s.submit(listenCmd{listener: l}); err != nil {
		_ = l.Close()
		return err
	}
	return nil
}

// submit 把命令交给事件循环并等待确认
func (s *Swarm) submit(c command) error {
	reply := make(chan error, 1)
	select {
	case s.cmds <- envelope{cmd: c, reply: reply}:
	case <-s.loopDone:
		return ErrSwarmStopped
	}
	return <-reply
}

// Poll 非阻塞地取下一个事件
func (s *Swarm) Poll() (types.Event, types.PollStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exhausted {
		return types.Event{}, types.PollExhausted
	}
	if s.stopped {
		s.exhausted = true
		return types.Event{}, types.PollExhausted
	}
	if len(s.queue) > 0 {
		ev := s.queue[0]
		s.queue[0] = types.Event{}
		s.queue = s.queue[1:]
		return ev, types.PollReady
	}
	if s.idle {
		s.exhausted = true
		logger.Debug("事件流已终止")
		return types.Event{}, types.PollExhausted
	}
	return types.Event{}, types.PollPending
}

// NextEvent 阻塞等待下一个事件
//
// 事件流终止时返回 ErrExhausted。只支持一个消费者。
func (s *Swarm) NextEvent(ctx context.Context) (types.Event, error) {
	for {
		ev, st := s.Poll()
		switch st {
		case types.PollReady:
			return ev, nil
		case types.PollExhausted:
			return types.Event{}, ErrExhausted
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return types.Event{}, ctx.Err()
		}
	}
}

// Peers 返回已连接的节点（去重）
func (s *Swarm) Peers() []types.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[types.PeerID]struct{}, len(s.peers))
	out := make([]types.PeerID, 0, len(s.peers))
	for _, p := range s.peers {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NumConns 返回当前连接数
func (s *Swarm) NumConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// ListenAddrs 返回活跃监听器的地址
func (s *Swarm) ListenAddrs() []types.Multiaddr {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Multiaddr, 0, len(s.listenAddrs))
	for _, a := range s.listenAddrs {
		out = append(out, a)
	}
	return out
}

// Stop 停止 Swarm
//
// 不再接受新工作，关闭监听器和连接，停止定时器，并等待 swarm 提交的
// 全部工作结束。未取走的事件被丢弃。重复调用返回第一次的结果。
func (s *Swarm) Stop() error {
	s.stopOnce.Do(func() {
		logger.Info("正在停止 Swarm")

		s.mu.Lock()
		s.stopped = true
		s.queue = nil
		s.signal()
		s.mu.Unlock()

		s.cancel()
		// 事件循环从未启动时直接标记结束
		s.startOnce.Do(func() { close(s.loopDone) })
		<-s.loopDone
		s.work.Wait()

		if s.stopErr != nil {
			logger.Warn("停止 Swarm 时发生错误", "error", s.stopErr)
		}
		logger.Info("Swarm 已停止")
	})
	return s.stopErr
}

// ============================================================================
//                              共享状态
// ============================================================================

// emit 暂存事件，由 publish 与状态快照一起发布
func (s *Swarm) emit(ev types.Event) {
	ev.Time = s.clock.Now()
	logger.Debug("事件", "type", ev.Type.String(), "peer", log.TruncateID(string(ev.Peer), 12), "error", ev.Err)
	s.outbox = append(s.outbox, ev)
}

// publish 把暂存事件和循环状态同步给 Poll/Peers/ListenAddrs
func (s *Swarm) publish() {
	idle := len(s.conns) == 0 && s.dialing == 0 && s.upgrading == 0 && len(s.listeners) == 0

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.queue = append(s.queue, s.outbox...)
	}
	clear(s.outbox)
	s.outbox = s.outbox[:0]

	s.idle = s.active && idle
	clear(s.peers)
	for id, e := range s.conns {
		s.peers[id] = e.conn.RemotePeer()
	}
	clear(s.listenAddrs)
	for id, l := range s.listeners {
		s.listenAddrs[id] = l.listener.Multiaddr()
	}
	s.signal()
}

// signal 唤醒 NextEvent，调用方持有 mu
func (s *Swarm) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
