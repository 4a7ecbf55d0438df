// Package testutil 提供测试辅助：本地 SOCKS5 代理（Tor 替身）、空闲端口。
//
// 仅供各包的 _test.go 使用。
package testutil
