// Package muxer 提供基于 go-yamux 的流多路复用
//
// 协议标识 /yamux/1.0.0，是升级流程中默认首选的多路复用器。
// 备选实现（hashicorp/yamux）位于子包 yamux。
//
// 使用示例：
//
//	t := muxer.NewTransport()
//	mc, err := t.NewConn(secureConn, isServer)
//	s, err := mc.OpenStream(ctx)
package muxer
