package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              EventType
// ============================================================================

// EventType 事件类型
type EventType int

const (
	// EventListening 监听器开始监听
	EventListening EventType = iota + 1
	// EventListenerClosed 监听器关闭
	EventListenerClosed
	// EventConnectionEstablished 连接建立（已认证、已复用）
	EventConnectionEstablished
	// EventConnectionClosed 连接关闭
	EventConnectionClosed
	// EventDialFailed 出站建连失败
	EventDialFailed
	// EventIncomingFailed 入站建连失败
	EventIncomingFailed
	// EventPingSuccess 一次探测成功，携带 RTT
	EventPingSuccess
	// EventPingFailure 探测失败（超时或协议错误）
	EventPingFailure
)

// String 返回事件类型名
func (t EventType) String() string {
	switch t {
	case EventListening:
		return "Listening"
	case EventListenerClosed:
		return "ListenerClosed"
	case EventConnectionEstablished:
		return "ConnectionEstablished"
	case EventConnectionClosed:
		return "ConnectionClosed"
	case EventDialFailed:
		return "DialFailed"
	case EventIncomingFailed:
		return "IncomingFailed"
	case EventPingSuccess:
		return "PingSuccess"
	case EventPingFailure:
		return "PingFailure"
	default:
		return "Unknown"
	}
}

// ============================================================================
//                              Event
// ============================================================================

// Event 驱动器产生的不可变事件
//
// Ping 事件的 Outcome 由 Type 表示：PingSuccess 携带 RTT，
// PingFailure 携带 Err。
type Event struct {
	Type      EventType
	ConnID    string
	Peer      PeerID
	Addr      Multiaddr
	Direction Direction
	RTT       time.Duration
	Err       error
	Time      time.Time
}

// IsSuccess 是否为探测成功事件
func (e Event) IsSuccess() bool {
	return e.Type == EventPingSuccess
}

// String 返回单行描述
func (e Event) String() string {
	switch e.Type {
	case EventPingSuccess:
		return fmt.Sprintf("%s peer=%s rtt=%s", e.Type, e.Peer, e.RTT)
	case EventPingFailure, EventDialFailed, EventIncomingFailed:
		return fmt.Sprintf("%s peer=%s addr=%v err=%v", e.Type, e.Peer, e.Addr, e.Err)
	case EventListening, EventListenerClosed:
		return fmt.Sprintf("%s addr=%v", e.Type, e.Addr)
	default:
		return fmt.Sprintf("%s peer=%s addr=%v dir=%s", e.Type, e.Peer, e.Addr, e.Direction)
	}
}

// ============================================================================
//                              PollStatus
// ============================================================================

// PollStatus Poll 的结果状态
type PollStatus int

const (
	// PollPending 暂无事件，调用方稍后再试
	PollPending PollStatus = iota
	// PollReady 返回了一个事件
	PollReady
	// PollExhausted 驱动器已终止，此后永远返回 Exhausted
	PollExhausted
)

// String 返回状态名
func (s PollStatus) String() string {
	switch s {
	case PollPending:
		return "Pending"
	case PollReady:
		return "Ready"
	case PollExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}
