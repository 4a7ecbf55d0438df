package liveness

import (
	"time"

	"github.com/dep2p/go-onionping/config"
)

// State 探测状态
type State int

const (
	// StateIdle 等待下一次探测
	StateIdle State = iota
	// StateAwaitingPong 已发出探测，等待回复
	StateAwaitingPong
	// StateFailed 探测失败，连接应关闭
	StateFailed
	// StateInert 不再探测
	StateInert
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPong:
		return "awaiting-pong"
	case StateFailed:
		return "failed"
	case StateInert:
		return "inert"
	default:
		return "unknown"
	}
}

// Config 探测参数
type Config struct {
	Interval  time.Duration
	Timeout   time.Duration
	KeepAlive bool
}

// DefaultConfig 默认参数：间隔 15s，超时 20s，保持探测
func DefaultConfig() Config {
	return ConfigFrom(config.DefaultPingConfig())
}

// ConfigFrom 从配置文件结构转换
func ConfigFrom(c config.PingConfig) Config {
	return Config{
		Interval:  c.Interval.Duration(),
		Timeout:   c.Timeout.Duration(),
		KeepAlive: c.KeepAlive,
	}
}

// Outcome 一次探测的结果，Err 为 nil 表示成功
type Outcome struct {
	RTT time.Duration
	Err error
}

// Success 是否成功
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Handler 单条连接的探测状态机
//
// 非并发安全，由事件循环独占。
type Handler struct {
	cfg    Config
	state  State
	seq    uint64
	sentAt time.Time
}

// NewHandler 创建处于 Idle 状态的 Handler
func NewHandler(cfg Config) *Handler {
	return &Handler{cfg: cfg}
}

// Config 返回探测参数
func (h *Handler) Config() Config {
	return h.cfg
}

// State 返回当前状态
func (h *Handler) State() State {
	return h.state
}

// Active 是否还需要调度探测
func (h *Handler) Active() bool {
	return h.state == StateIdle || h.state == StateAwaitingPong
}

// BeginProbe 开始一次探测
//
// 仅在 Idle 状态有效，返回的 seq 用于匹配随后的 OnPong/OnDeadline。
func (h *Handler) BeginProbe(now time.Time) (uint64, bool) {
	if h.state != StateIdle {
		return 0, false
	}
	h.seq++
	h.sentAt = now
	h.state = StateAwaitingPong
	return h.seq, true
}

// OnPong 收到探测的 I/O 结果
//
// seq 不匹配或不在等待状态时忽略（返回 false）。
func (h *Handler) OnPong(seq uint64, now time.Time, err error) (Outcome, bool) {
	if h.state != StateAwaitingPong || seq != h.seq {
		return Outcome{}, false
	}
	if err != nil {
		h.state = StateFailed
		return Outcome{Err: err}, true
	}

	rtt := now.Sub(h.sentAt)
	if h.cfg.KeepAlive {
		h.state = StateIdle
	} else {
		h.state = StateInert
	}
	return Outcome{RTT: rtt}, true
}

// OnDeadline 探测截止时间到达
func (h *Handler) OnDeadline(seq uint64) (Outcome, bool) {
	if h.state != StateAwaitingPong || seq != h.seq {
		return Outcome{}, false
	}
	h.state = StateFailed
	return Outcome{Err: ErrPingTimeout}, true
}
