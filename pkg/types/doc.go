// Package types 定义 onionping 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - peerid.go     - PeerID（Base58 多哈希）
//   - multiaddr.go  - Multiaddr 辅助函数（onion / dns / p2p 识别）
//   - enums.go      - Direction, ProtocolID
//   - events.go     - Event, EventType, PollStatus
//   - errors.go     - 错误分类（UnroutableAddress ... IO）
package types
