package interfaces

// Executor 任务执行器
//
// 只有一个操作：并发执行一个工作单元，调用方不观察其结果。
// 工作单元的结果只能通过事件或关闭连接体现。
type Executor interface {
	Exec(f func())
}
