package dns

import "errors"

var (
	// ErrNoAddresses 解析结果为空
	ErrNoAddresses = errors.New("no addresses")

	// ErrUnsupportedAddress 地址不是 TCP 地址
	ErrUnsupportedAddress = errors.New("unsupported address")
)
