// Package swarm 实现连接驱动器
//
// Swarm 把组合传输、存活探测和执行器组装成一个事件流：
//
//	Dial/Listen ──▶ 事件循环 ──Exec──▶ 拨号 / 入站升级 / 探测 I/O
//	                  ▲                         │
//	                  └──────── 结果消息 ◀───────┘
//	                  │
//	                  ▼
//	            Poll / NextEvent
//
// 单个事件循环 goroutine 独占连接集合与每条连接的探测状态机；执行器上的
// 工作单元只通过消息把结果送回循环。阻塞等待型的监视任务（Accept 循环、
// 入站流接受循环）在 swarm 自己跟踪的 goroutine 上运行，不占用执行器槽位。
//
// # 路由错误
//
// Dial/Listen 的路由错误（ErrUnroutableAddress）同步返回，不打开任何
// socket；其余拨号与升级错误以 DialFailed / IncomingFailed 事件报告。
//
// # 终止
//
// 至少发起过一次 Dial/Listen 且不再有连接、进行中的拨号/升级或监听器时，
// Poll 返回 PollExhausted；Stop 之后同样如此。一旦返回 PollExhausted，
// 之后的每次 Poll 都返回 PollExhausted。
package swarm
