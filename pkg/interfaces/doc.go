// Package interfaces 定义 onionping 公共接口
//
// 各层只依赖这里的接口，具体实现位于 internal/core 下：
//
//	Transport ─┬─ Router (onion)
//	           ├─ 基础拨号/监听 (tcp + SOCKS5)
//	           ├─ 名称解析 (dns)
//	           └─ Upgrader ── SecureTransport (noise) ── StreamMuxer (yamux)
//	Swarm ── Executor / Liveness
package interfaces
