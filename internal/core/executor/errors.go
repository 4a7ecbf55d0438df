package executor

import "errors"

var (
	// ErrInvalidWorkers 工作者数量必须为正
	ErrInvalidWorkers = errors.New("executor workers must be positive")
)
