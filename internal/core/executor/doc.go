// Package executor 提供 swarm 使用的任务执行器
//
// 执行器只负责"并发跑起来"，不返回结果：工作单元的结果通过
// 调用方自己的通道送回。
//
//	GoExecutor    每个工作单元一个 goroutine
//	PoolExecutor  并发上限由 errgroup.SetLimit 约束，Close 等待已提交的工作
package executor
