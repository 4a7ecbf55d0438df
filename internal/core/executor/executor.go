package executor

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
)

var logger = log.Logger("core/executor")

// ============================================================================
//                              GoExecutor
// ============================================================================

// GoExecutor 为每个工作单元启动一个 goroutine
type GoExecutor struct{}

var _ pkgif.Executor = GoExecutor{}

// Exec 实现 pkgif.Executor
func (GoExecutor) Exec(f func()) {
	go f()
}

// ============================================================================
//                              PoolExecutor
// ============================================================================

// PoolExecutor 有并发上限的执行器
//
// Exec 不阻塞调用方：超出上限的工作单元排队等待空闲槽位。
type PoolExecutor struct {
	g       errgroup.Group
	submits sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	pending atomic.Int64
	workers int
}

var _ pkgif.Executor = (*PoolExecutor)(nil)

// NewPoolExecutor 创建并发上限为 workers 的执行器
func NewPoolExecutor(workers int) (*PoolExecutor, error) {
	if workers <= 0 {
		return nil, ErrInvalidWorkers
	}
	p := &PoolExecutor{workers: workers}
	p.g.SetLimit(workers)
	return p, nil
}

// Workers 返回并发上限
func (p *PoolExecutor) Workers() int {
	return p.workers
}

// Pending 返回已提交但尚未完成的工作单元数
func (p *PoolExecutor) Pending() int64 {
	return p.pending.Load()
}

// Exec 实现 pkgif.Executor
//
// Close 之后提交的工作单元退化为直接启动 goroutine。
func (p *PoolExecutor) Exec(f func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		go f()
		return
	}
	p.pending.Add(1)
	run := func() error {
		defer p.pending.Add(-1)
		f()
		return nil
	}
	if p.g.TryGo(run) {
		return
	}
	p.submits.Add(1)
	go func() {
		defer p.submits.Done()
		p.g.Go(run)
	}()
}

// Close 停止接收新工作并等待已提交的工作完成
func (p *PoolExecutor) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.submits.Wait()
	err := p.g.Wait()
	logger.Debug("执行器已关闭", "workers", p.workers)
	return err
}
