package liveness

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"time"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/lib/log"
	"github.com/dep2p/go-onionping/pkg/types"
)

var logger = log.Logger("core/liveness")

const (
	// ID ping 协议标识
	ID types.ProtocolID = "/ipfs/ping/1.0.0"

	// PayloadSize 探测数据长度
	PayloadSize = 32
)

// Ping 在连接上执行一次探测
//
// 打开新流、协商协议、发送随机数据并等待回显。ctx 的截止时间
// 同时作为流的读写截止时间，ctx 取消时重置流。
func Ping(ctx context.Context, conn pkgif.MuxedConn) (time.Duration, error) {
	if conn == nil {
		return 0, ErrNilConn
	}

	stream, err := conn.OpenStream(ctx)
	if err != nil {
		return 0, fmt.Errorf("open ping stream: %w", err)
	}
	defer stream.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = stream.Reset() })
	defer stop()

	if err := mss.SelectProtoOrFail(ID, stream); err != nil {
		return 0, fmt.Errorf("negotiate %s: %w", ID, err)
	}

	payload := make([]byte, PayloadSize)
	if _, err := crand.Read(payload); err != nil {
		return 0, err
	}

	start := time.Now()
	if _, err := stream.Write(payload); err != nil {
		return 0, types.IOError(err)
	}

	resp := make([]byte, PayloadSize)
	if _, err := io.ReadFull(stream, resp); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, types.IOError(err)
	}
	rtt := time.Since(start)

	if !bytes.Equal(payload, resp) {
		return 0, ErrPayloadMismatch
	}
	return rtt, nil
}
