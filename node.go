package onionping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-onionping/config"
	"github.com/dep2p/go-onionping/internal/core/swarm"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("onionping")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota
	// StateRunning 运行中
	StateRunning
	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// startTimeout Fx App Start/Stop 超时
const startTimeout = 30 * time.Second

// Node onionping 节点
//
// Node 是门面，聚合 fx 装配的内部组件。
type Node struct {
	config *config.Config
	app    *fx.App

	// 由 Fx 注入
	identity pkgif.Identity
	swarm    *swarm.Swarm
	registry *prometheus.Registry

	mu    sync.Mutex
	state NodeState
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点，需要调用 Start 启动
func New(_ context.Context, opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	n := &Node{config: o.config}
	app, err := buildFxApp(o, n)
	if err != nil {
		return nil, err
	}
	n.app = app
	return n, nil
}

// Start 创建并启动节点
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	n, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

// Start 启动 Fx 应用
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrNodeClosed
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := n.app.Start(startCtx); err != nil {
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("start failed: %w", err)
	}

	n.state = StateRunning
	logger.Info("节点已启动", "peerID", n.identity.PeerID().String())
	return nil
}

// Close 停止节点，重复调用返回 nil
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateStopped {
		return nil
	}
	wasRunning := n.state == StateRunning
	n.state = StateStopped
	if !wasRunning {
		return n.swarm.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := n.app.Stop(ctx); err != nil {
		logger.Warn("节点停止时发生错误", "error", err)
		return err
	}
	logger.Info("节点已停止")
	return nil
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Node) running() error {
	switch n.State() {
	case StateIdle:
		return ErrNotStarted
	case StateStopped:
		return ErrNodeClosed
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              网络操作
// ════════════════════════════════════════════════════════════════════════════

// ID 返回本地节点 ID
func (n *Node) ID() types.PeerID {
	return n.identity.PeerID()
}

// Config 返回节点配置
func (n *Node) Config() *config.Config {
	return n.config
}

// Dial 连接到地址，路由错误同步返回
func (n *Node) Dial(addr string) error {
	if err := n.running(); err != nil {
		return err
	}
	m, err := types.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	return n.swarm.Dial(m)
}

// Listen 在地址上监听
func (n *Node) Listen(addr string) error {
	if err := n.running(); err != nil {
		return err
	}
	m, err := types.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	return n.swarm.Listen(m)
}

// Poll 非阻塞地取下一个事件
func (n *Node) Poll() (types.Event, types.PollStatus) {
	return n.swarm.Poll()
}

// NextEvent 阻塞等待下一个事件，事件流终止时返回 ErrExhausted
func (n *Node) NextEvent(ctx context.Context) (types.Event, error) {
	return n.swarm.NextEvent(ctx)
}

// Peers 返回已连接的节点
func (n *Node) Peers() []types.PeerID {
	return n.swarm.Peers()
}

// ListenAddrs 返回监听地址
func (n *Node) ListenAddrs() []string {
	addrs := n.swarm.ListenAddrs()
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}

// Registry 返回指标注册表
func (n *Node) Registry() *prometheus.Registry {
	return n.registry
}
