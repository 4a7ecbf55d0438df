// Package metrics 提供 onionping 的 Prometheus 指标
//
// 指标注册在调用方提供的 Registry 上；所有记录方法对 nil *Metrics 安全，
// 未启用指标时 swarm 直接持有 nil。
package metrics
