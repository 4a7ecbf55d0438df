// Package tcp 提供基础 TCP 拨号器和监听器
//
// 只处理已经确定 host:port 的端点（见 onion.Endpoint）：
//   - 普通端点直接 TCP 拨号
//   - Proxied 端点先连接本地 Tor SOCKS5 代理，再请求 Endpoint.Target
//   - 监听 Proxied 端点时绑定本地转发端口（隐藏服务的转发目标）
//
// 所有拨号/接受的连接都按配置设置 TCP_NODELAY。
// 代理握手失败返回 ErrProxyHandshakeFailed，其余失败归为 ErrIO。
package tcp
