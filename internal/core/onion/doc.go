// Package onion 实现 onion 地址到本地端点的路由
//
// 在任何拨号/监听之前查询：
//
//	/onion3/<id>:<vport>  + 路由表条目 P  →  Endpoint{127.0.0.1:P, Proxied, Target=<id>.onion:<vport>}
//	/onion3/<id>:<vport>  无条目          →  ErrUnroutableAddress
//	其他地址                              →  原样返回（未解析的 Endpoint）
//
// 路由表在启动时由配置构建一次，此后只读。
package onion
