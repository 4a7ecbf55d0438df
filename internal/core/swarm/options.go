package swarm

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-onionping/internal/core/liveness"
	"github.com/dep2p/go-onionping/internal/core/metrics"
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
)

// Option Swarm 选项函数
type Option func(*Swarm) error

// WithExecutor 设置执行器，默认每个工作单元一个 goroutine
func WithExecutor(e pkgif.Executor) Option {
	return func(s *Swarm) error {
		if e == nil {
			return ErrNilExecutor
		}
		s.exec = e
		return nil
	}
}

// WithPing 设置探测参数
func WithPing(cfg liveness.Config) Option {
	return func(s *Swarm) error {
		if cfg.Interval <= 0 || cfg.Timeout <= 0 {
			return fmt.Errorf("%w: ping interval and timeout must be positive", ErrInvalidConfig)
		}
		s.ping = cfg
		return nil
	}
}

// WithPongService 设置入站探测应答服务
func WithPongService(p *liveness.PongService) Option {
	return func(s *Swarm) error {
		if p != nil {
			s.pong = p
		}
		return nil
	}
}

// WithMetrics 设置指标，nil 表示不采集
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Swarm) error {
		s.metrics = m
		return nil
	}
}

// WithClock 设置探测定时器使用的时钟
func WithClock(c clock.Clock) Option {
	return func(s *Swarm) error {
		if c == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidConfig)
		}
		s.clock = c
		return nil
	}
}

// WithInboundRate 限制每秒开始升级的入站连接数，r <= 0 表示不限
func WithInboundRate(r float64, burst int) Option {
	return func(s *Swarm) error {
		if r <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return nil
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
		return nil
	}
}

// WithEventBuffer 设置事件队列初始容量
func WithEventBuffer(n int) Option {
	return func(s *Swarm) error {
		if n < 0 {
			return fmt.Errorf("%w: negative event buffer", ErrInvalidConfig)
		}
		s.eventBuffer = n
		return nil
	}
}
