package onion

import "errors"

var (
	// ErrInvalidRoute 路由表条目无效
	ErrInvalidRoute = errors.New("invalid onion route")

	// ErrDuplicateRoute 同一地址出现多个条目
	ErrDuplicateRoute = errors.New("duplicate onion route")
)
