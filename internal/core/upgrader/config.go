package upgrader

import (
	pkgif "github.com/dep2p/go-onionping/pkg/interfaces"
	"github.com/dep2p/go-onionping/pkg/types"
)

// Config 两段协商的候选协议
//
// 列表顺序即偏好顺序：出站方依次提议，入站方按本地顺序匹配。
type Config struct {
	SecurityTransports []pkgif.SecureTransport
	StreamMuxers       []pkgif.StreamMuxer
}

// normalize 校验候选列表，同一协议 ID 只保留首次出现的实现
func (c Config) normalize() (Config, error) {
	if len(c.SecurityTransports) == 0 {
		return c, ErrNoSecurityTransport
	}
	if len(c.StreamMuxers) == 0 {
		return c, ErrNoStreamMuxer
	}

	seenSec := make(map[types.ProtocolID]struct{}, len(c.SecurityTransports))
	var sec []pkgif.SecureTransport
	for _, st := range c.SecurityTransports {
		if _, dup := seenSec[st.ID()]; dup {
			continue
		}
		seenSec[st.ID()] = struct{}{}
		sec = append(sec, st)
	}

	seenMux := make(map[string]struct{}, len(c.StreamMuxers))
	var mux []pkgif.StreamMuxer
	for _, sm := range c.StreamMuxers {
		if _, dup := seenMux[sm.ID()]; dup {
			continue
		}
		seenMux[sm.ID()] = struct{}{}
		mux = append(mux, sm)
	}
	return Config{SecurityTransports: sec, StreamMuxers: mux}, nil
}
