// Package upgrader 实现连接升级器
//
// 将原始网络连接升级为已认证、多路复用的连接，阶段顺序固定：
//
//  1. 安全协议协商（multistream-select，/noise）
//  2. Noise XX 握手，得到远端 PeerID
//  3. 多路复用器协商（multistream-select，按配置顺序，先匹配者胜出）
//  4. 多路复用会话（go-yamux 或 hashicorp/yamux）
//
// 任一阶段失败都会关闭原始连接，错误按阶段分类：
//
//	协商失败      → types.AuthError{Reason: AuthProtocolMismatch}
//	握手失败      → types.AuthError{Reason: AuthVerificationFailed}
//	多路复用失败  → types.ErrNoCommonMultiplexer
//	超时          → types.ErrUpgradeTimeout
//
// 调用方的 ctx 截止时间同时设置为连接 deadline，ctx 结束时连接被关闭，
// 因此阻塞在任一阶段的读写都会立即返回。
//
// # 使用示例
//
//	u, err := upgrader.New(id, upgrader.Config{
//	    SecurityTransports: []pkgif.SecureTransport{noiseTransport},
//	    StreamMuxers:       []pkgif.StreamMuxer{muxer.NewTransport()},
//	})
//	uc, err := u.Upgrade(ctx, rawConn, types.DirOutbound, "")
package upgrader
