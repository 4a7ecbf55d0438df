package liveness

import (
	"errors"
	"io"
	"sync/atomic"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// PongService 应答入站探测流
type PongService struct {
	mux    *mss.MultistreamMuxer[types.ProtocolID]
	served atomic.Int64
}

// NewPongService 创建应答服务
func NewPongService() *PongService {
	p := &PongService{mux: mss.NewMultistreamMuxer[types.ProtocolID]()}
	p.mux.AddHandler(ID, p.handlePing)
	return p
}

// Protocols 返回支持的协议
func (p *PongService) Protocols() []types.ProtocolID {
	return p.mux.Protocols()
}

// Served 返回已回显的探测次数
func (p *PongService) Served() int64 {
	return p.served.Load()
}

// Serve 接受连接上的入站流直到连接关闭
//
// 每条流交给 exec 处理，exec 为 nil 时直接启动 goroutine。
func (p *PongService) Serve(conn pkgif.MuxedConn, exec pkgif.Executor) {
	for {
		s, err := conn.AcceptStream()
		if err != nil {
			return
		}
		if exec == nil {
			go p.HandleStream(s)
			continue
		}
		exec.Exec(func() { _ = p.HandleStream(s) })
	}
}

// HandleStream 协商协议并处理一条入站流
func (p *PongService) HandleStream(s pkgif.MuxedStream) error {
	proto, handler, err := p.mux.Negotiate(s)
	if err != nil {
		_ = s.Reset()
		return err
	}
	return handler(proto, s)
}

// handlePing 回显探测数据直到对端关闭写端
func (p *PongService) handlePing(_ types.ProtocolID, rwc io.ReadWriteCloser) error {
	defer rwc.Close()

	buf := make([]byte, PayloadSize)
	for {
		if _, err := io.ReadFull(rwc, buf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			logger.Debug("读取探测数据失败", "error", err)
			return err
		}
		if _, err := rwc.Write(buf); err != nil {
			logger.Debug("回复探测失败", "error", err)
			return err
		}
		p.served.Add(1)
	}
}
