// Package transport 组合完整的建连流程
//
// 层次（由外到内）：
//
//	Router (onion)  →  名称解析 (dns)  →  基础拨号/监听 (tcp + SOCKS5)
//	                →  Upgrader (noise → yamux)
//
// Route 同步完成：不可路由的 onion 地址在打开任何 socket 之前返回
// types.ErrUnroutableAddress。拨号、解析、认证和多路复用整体受一个超时约束，
// 超时后原始连接被关闭并返回 types.ErrUpgradeTimeout。
package transport
