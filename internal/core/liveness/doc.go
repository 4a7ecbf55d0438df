// Package liveness 实现连接存活探测（ping）
//
// 每条连接一个 Handler，纯状态机，不做 I/O、不持有定时器：
//
//	Idle ──BeginProbe──▶ AwaitingPong ──OnPong(ok)──▶ Idle（KeepAlive）/ Inert
//	                          │
//	                          └──OnPong(err) / OnDeadline──▶ Failed
//
// Failed 表示连接应被关闭；Inert 表示不再探测但连接保持。
// 定时与 I/O 由调用方（swarm 事件循环 + 执行器）驱动，Ping 执行一次
// 探测的网络交互，PongService 应答入站探测流。
//
// 协议：/ipfs/ping/1.0.0，发送 32 字节随机数据，对端原样回显。
package liveness
